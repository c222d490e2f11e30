package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"petfeed/internal/meal"
	logx "petfeed/pkg/logx"
)

// fileStore is the local fallback backend: the whole meal snapshot lives in a
// single JSON file, read once at open and rewritten atomically on every
// mutation (tmp + rename). Dedup state gets its own sidecar file.
//
// Files:
//   - <prefix>.json        (meal snapshot)
//   - <prefix>.dedup.json  (alert dedup keys, unix-milli expiry)
type fileStore struct {
	log logx.Logger

	mu sync.Mutex

	snapshotPath string
	dedupPath    string

	meals  []meal.Meal
	dedup  map[string]int64 // key -> unix milli expiry
	closed bool
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}

	dir := filepath.Dir(path)
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	prefix := filepath.Join(dir, base)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	s := &fileStore{
		log:          log,
		snapshotPath: prefix + ".json",
		dedupPath:    prefix + ".dedup.json",
		dedup:        map[string]int64{},
	}

	if err := s.loadSnapshot(); err != nil {
		return nil, err
	}
	// Dedup state is best-effort; a corrupt sidecar only risks one extra alert.
	if err := s.loadDedup(); err != nil {
		log.Debug("dedup sidecar unreadable; starting empty", logx.Err(err))
	}
	pruneExpiredDedup(s.dedup)
	return s, nil
}

func (s *fileStore) loadSnapshot() error {
	b, err := os.ReadFile(s.snapshotPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var ms []meal.Meal
	if err := json.Unmarshal(b, &ms); err != nil {
		return err
	}
	s.meals = ms
	return nil
}

func (s *fileStore) loadDedup() error {
	b, err := os.ReadFile(s.dedupPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return json.Unmarshal(b, &s.dedup)
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fileStore) ListMeals(ctx context.Context) ([]meal.Meal, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]meal.Meal, len(s.meals))
	copy(out, s.meals)
	sortMeals(out)
	return out, nil
}

func (s *fileStore) InsertMeal(ctx context.Context, m meal.Meal) (meal.Meal, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return meal.Meal{}, ErrClosed
	}
	if strings.TrimSpace(m.ID) == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	next := append(append([]meal.Meal(nil), s.meals...), m)
	if err := s.writeSnapshotLocked(next); err != nil {
		return meal.Meal{}, err
	}
	s.meals = next
	return m, nil
}

func (s *fileStore) UpdateMeal(ctx context.Context, id string, p meal.Patch) (meal.Meal, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return meal.Meal{}, ErrClosed
	}
	idx := -1
	for i := range s.meals {
		if s.meals[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return meal.Meal{}, meal.ErrNotFound
	}

	updated := p.Apply(s.meals[idx])
	updated.UpdatedAt = time.Now()

	next := append([]meal.Meal(nil), s.meals...)
	next[idx] = updated
	if err := s.writeSnapshotLocked(next); err != nil {
		return meal.Meal{}, err
	}
	s.meals = next
	return updated, nil
}

func (s *fileStore) DeleteMeal(ctx context.Context, id string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	next := make([]meal.Meal, 0, len(s.meals))
	found := false
	for _, m := range s.meals {
		if m.ID == id {
			found = true
			continue
		}
		next = append(next, m)
	}
	if !found {
		return meal.ErrNotFound
	}
	if err := s.writeSnapshotLocked(next); err != nil {
		return err
	}
	s.meals = next
	return nil
}

func (s *fileStore) PutDedup(ctx context.Context, key string, until time.Time) error {
	_ = ctx
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.dedup[key] = until.UnixMilli()
	pruneExpiredDedup(s.dedup)
	return writeJSONAtomic(s.dedupPath, s.dedup)
}

func (s *fileStore) GetDedup(ctx context.Context, key string) (time.Time, bool, error) {
	_ = ctx
	key = strings.TrimSpace(key)
	if key == "" {
		return time.Time{}, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return time.Time{}, false, ErrClosed
	}
	ms, ok := s.dedup[key]
	if !ok {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms), true, nil
}

func (s *fileStore) writeSnapshotLocked(ms []meal.Meal) error {
	sortMeals(ms)
	return writeJSONAtomic(s.snapshotPath, ms)
}

func writeJSONAtomic(path string, v any) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func pruneExpiredDedup(m map[string]int64) {
	now := time.Now().UnixMilli()
	for k, v := range m {
		if v < now {
			delete(m, k)
		}
	}
}

// sortMeals orders by (date asc, time asc); ties keep insertion order.
func sortMeals(ms []meal.Meal) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].Date != ms[j].Date {
			return ms[i].Date < ms[j].Date
		}
		return ms[i].Time < ms[j].Time
	})
}
