package storage

import (
	"context"
	"errors"
	"time"

	"petfeed/internal/meal"
)

var ErrClosed = errors.New("store closed")

// Config configures storage.
//
// Driver values:
//   - "file": whole-snapshot JSON file (the local fallback store)
//   - "sqlite": SQLite database file
//
// An empty Driver defaults to "file".
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Store is the record store consumed by the lifecycle manager and the poller.
//
// ListMeals returns records ordered by (date asc, time asc). Mutations return
// meal.ErrNotFound for unknown ids. InsertMeal assigns the id and provenance
// stamps when the caller leaves them empty.
//
// The dedup keyspace is separate from meal records: the poller uses it to
// remember which (meal, minute) pairs have already been alerted.
type Store interface {
	ListMeals(ctx context.Context) ([]meal.Meal, error)
	InsertMeal(ctx context.Context, m meal.Meal) (meal.Meal, error)
	UpdateMeal(ctx context.Context, id string, p meal.Patch) (meal.Meal, error)
	DeleteMeal(ctx context.Context, id string) error

	PutDedup(ctx context.Context, key string, until time.Time) error
	GetDedup(ctx context.Context, key string) (until time.Time, ok bool, err error)

	Close() error
}
