package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"petfeed/internal/meal"
	logx "petfeed/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger

	opCount    atomic.Uint64
	pruneEvery uint64
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log, pruneEvery: 500}

	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const mealColumns = `id, name, date, time, completed, notes, created_at, updated_at`

func (s *sqliteStore) ListMeals(ctx context.Context) ([]meal.Meal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+mealColumns+` FROM meals ORDER BY date ASC, time ASC, created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []meal.Meal
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *sqliteStore) InsertMeal(ctx context.Context, m meal.Meal) (meal.Meal, error) {
	if strings.TrimSpace(m.ID) == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meals(`+mealColumns+`) VALUES(?,?,?,?,?,?,?,?)`,
		m.ID, m.Name, m.Date, m.Time, boolInt(m.Completed), nullStr(m.Notes),
		m.CreatedAt.Format(time.RFC3339Nano), m.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return meal.Meal{}, err
	}
	return m, nil
}

func (s *sqliteStore) UpdateMeal(ctx context.Context, id string, p meal.Patch) (meal.Meal, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return meal.Meal{}, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+mealColumns+` FROM meals WHERE id = ?`, id)
	cur, err := scanMeal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return meal.Meal{}, meal.ErrNotFound
	}
	if err != nil {
		return meal.Meal{}, err
	}

	updated := p.Apply(cur)
	updated.UpdatedAt = time.Now()

	_, err = tx.ExecContext(ctx,
		`UPDATE meals SET name=?, date=?, time=?, completed=?, notes=?, updated_at=? WHERE id=?`,
		updated.Name, updated.Date, updated.Time, boolInt(updated.Completed),
		nullStr(updated.Notes), updated.UpdatedAt.Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return meal.Meal{}, err
	}
	if err := tx.Commit(); err != nil {
		return meal.Meal{}, err
	}
	return updated, nil
}

func (s *sqliteStore) DeleteMeal(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM meals WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return meal.ErrNotFound
	}
	return nil
}

func (s *sqliteStore) PutDedup(ctx context.Context, key string, until time.Time) error {
	if key == "" {
		return nil
	}
	ms := until.UnixMilli()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO dedup(key, until) VALUES(?,?)
		 ON CONFLICT(key) DO UPDATE SET until=excluded.until`,
		key, ms,
	)
	if err == nil && s.opCount.Add(1)%s.pruneEvery == 0 {
		pctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		_ = s.pruneExpired(pctx)
		cancel()
	}
	return err
}

func (s *sqliteStore) GetDedup(ctx context.Context, key string) (time.Time, bool, error) {
	if key == "" {
		return time.Time{}, false, nil
	}
	var ms int64
	err := s.db.QueryRowContext(ctx, `SELECT until FROM dedup WHERE key = ?`, key).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.UnixMilli(ms), true, nil
}

func (s *sqliteStore) pruneExpired(ctx context.Context) error {
	now := time.Now().UnixMilli()
	_, err := s.db.ExecContext(ctx, `DELETE FROM dedup WHERE until < ?`, now)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeal(r rowScanner) (meal.Meal, error) {
	var (
		m         meal.Meal
		completed int
		notes     sql.NullString
		createdAt string
		updatedAt string
	)
	err := r.Scan(&m.ID, &m.Name, &m.Date, &m.Time, &completed, &notes, &createdAt, &updatedAt)
	if err != nil {
		return meal.Meal{}, err
	}
	m.Completed = completed != 0
	m.Notes = notes.String
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		m.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		m.UpdatedAt = t
	}
	return m, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
