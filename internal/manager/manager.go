// Package manager owns the working snapshot of meal records and orchestrates
// every mutation against the store. Reads hand out copies; the classifier and
// selector stay pure.
package manager

import (
	"context"
	"errors"
	"sync"
	"time"

	"petfeed/internal/eventbus"
	"petfeed/internal/meal"
	"petfeed/internal/notify"
	"petfeed/internal/storage"
	logx "petfeed/pkg/logx"
)

type Manager struct {
	store    storage.Store
	notifier notify.Notifier
	bus      eventbus.Bus
	log      logx.Logger

	mu    sync.RWMutex
	meals []meal.Meal
}

func New(store storage.Store, notifier notify.Notifier, bus eventbus.Bus, log logx.Logger) *Manager {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Manager{store: store, notifier: notifier, bus: bus, log: log}
}

// Meals returns a copy of the working snapshot.
func (m *Manager) Meals() []meal.Meal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]meal.Meal, len(m.meals))
	copy(out, m.meals)
	return out
}

// Views classifies the current snapshot relative to now.
func (m *Manager) Views(now time.Time) meal.Views {
	return meal.Classify(m.Meals(), now)
}

// Upcoming selects the next-due meal from the current snapshot.
func (m *Manager) Upcoming(now time.Time) (meal.Meal, bool) {
	return meal.NextDue(m.Meals(), now)
}

// Refresh refetches the full snapshot from the store, ordered (date, time)
// ascending. On store failure the last-known-good snapshot stays in place.
func (m *Manager) Refresh(ctx context.Context) error {
	ms, err := m.store.ListMeals(ctx)
	if err != nil {
		m.log.Warn("snapshot refresh failed; keeping last known good", logx.Err(err))
		return &meal.StoreError{Op: "list", Err: err}
	}
	m.mu.Lock()
	m.meals = ms
	m.mu.Unlock()
	m.publish(eventbus.TypeSnapshot, len(ms))
	return nil
}

// Create validates and inserts a new meal. Validation failures reject the call
// before any store I/O. On success the snapshot reflects the new record and a
// confirmation notification is emitted.
func (m *Manager) Create(ctx context.Context, name, date, clock, notes string) (meal.Meal, error) {
	if err := meal.ValidateNew(name, date, clock); err != nil {
		return meal.Meal{}, err
	}

	created, err := m.store.InsertMeal(ctx, meal.Meal{
		Name:  name,
		Date:  date,
		Time:  clock,
		Notes: notes,
	})
	if err != nil {
		serr := &meal.StoreError{Op: "insert", Err: err}
		m.toast(ctx, "Meal not scheduled", serr.Error())
		return meal.Meal{}, serr
	}

	m.refreshAfterMutation(ctx, func(ms []meal.Meal) []meal.Meal {
		return append(ms, created)
	})
	m.publishMeal(eventbus.TypeCreated, created)
	m.toast(ctx, "Meal scheduled", created.Name+" has been scheduled for "+created.Time)
	m.log.Info("meal created", logx.String("id", created.ID), logx.String("date", created.Date), logx.String("time", created.Time))
	return created, nil
}

// Update merges a partial patch into the record. Unknown ids return
// meal.ErrNotFound.
func (m *Manager) Update(ctx context.Context, id string, p meal.Patch) (meal.Meal, error) {
	if err := meal.ValidatePatch(p); err != nil {
		return meal.Meal{}, err
	}
	updated, err := m.store.UpdateMeal(ctx, id, p)
	if err != nil {
		if errors.Is(err, meal.ErrNotFound) {
			return meal.Meal{}, meal.ErrNotFound
		}
		return meal.Meal{}, &meal.StoreError{Op: "update", Err: err}
	}
	m.refreshAfterMutation(ctx, func(ms []meal.Meal) []meal.Meal {
		return replace(ms, updated)
	})
	m.log.Info("meal updated", logx.String("id", id))
	return updated, nil
}

// Complete marks the meal fed. Completing an already-completed meal is a
// no-op: no store write, no notification, nil error.
func (m *Manager) Complete(ctx context.Context, id string) error {
	if cur, ok := m.find(id); ok && cur.Completed {
		return nil
	}

	done := true
	updated, err := m.store.UpdateMeal(ctx, id, meal.Patch{Completed: &done})
	if err != nil {
		if errors.Is(err, meal.ErrNotFound) {
			return meal.ErrNotFound
		}
		return &meal.StoreError{Op: "update", Err: err}
	}

	m.refreshAfterMutation(ctx, func(ms []meal.Meal) []meal.Meal {
		return replace(ms, updated)
	})
	m.publishMeal(eventbus.TypeCompleted, updated)
	m.toast(ctx, "Meal completed", "Great job feeding your pet!")
	m.log.Info("meal completed", logx.String("id", id))
	return nil
}

// Delete removes the record. Unknown ids return meal.ErrNotFound and leave the
// snapshot unchanged.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.store.DeleteMeal(ctx, id); err != nil {
		if errors.Is(err, meal.ErrNotFound) {
			return meal.ErrNotFound
		}
		return &meal.StoreError{Op: "delete", Err: err}
	}

	m.refreshAfterMutation(ctx, func(ms []meal.Meal) []meal.Meal {
		out := ms[:0]
		for _, x := range ms {
			if x.ID != id {
				out = append(out, x)
			}
		}
		return out
	})
	m.publish(eventbus.TypeDeleted, id)
	m.toast(ctx, "Meal deleted", "The meal has been removed from the schedule")
	m.log.Info("meal deleted", logx.String("id", id))
	return nil
}

func (m *Manager) find(id string) (meal.Meal, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, x := range m.meals {
		if x.ID == id {
			return x, true
		}
	}
	return meal.Meal{}, false
}

// refreshAfterMutation refetches the snapshot so the caller's next read sees
// its own write. If the refetch fails, the confirmed change is applied to the
// local copy instead of leaving the snapshot stale.
func (m *Manager) refreshAfterMutation(ctx context.Context, apply func([]meal.Meal) []meal.Meal) {
	ms, err := m.store.ListMeals(ctx)
	if err != nil {
		m.log.Warn("post-mutation refetch failed; patching snapshot locally", logx.Err(err))
		m.mu.Lock()
		m.meals = apply(append([]meal.Meal(nil), m.meals...))
		m.mu.Unlock()
	} else {
		m.mu.Lock()
		m.meals = ms
		m.mu.Unlock()
	}
	m.publish(eventbus.TypeSnapshot, len(m.Meals()))
}

func replace(ms []meal.Meal, upd meal.Meal) []meal.Meal {
	for i := range ms {
		if ms[i].ID == upd.ID {
			ms[i] = upd
		}
	}
	return ms
}

func (m *Manager) toast(ctx context.Context, title, message string) {
	if m.notifier == nil {
		return
	}
	err := m.notifier.Notify(ctx, notify.Notification{
		Title:    title,
		Message:  message,
		Duration: 5 * time.Second,
	})
	if err != nil {
		m.log.Warn("confirmation notification failed", logx.String("title", title), logx.Err(err))
	}
}

func (m *Manager) publish(typ string, data any) {
	if m.bus != nil {
		m.bus.Publish(eventbus.Event{Type: typ, Data: data})
	}
}

func (m *Manager) publishMeal(typ string, x meal.Meal) {
	m.publish(typ, x)
}
