package manager

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"petfeed/internal/eventbus"
	"petfeed/internal/meal"
	"petfeed/internal/notify"
	logx "petfeed/pkg/logx"
)

// fakeStore is an in-memory Store with call counting and injectable failures.
type fakeStore struct {
	mu    sync.Mutex
	meals []meal.Meal
	seq   int

	inserts int
	updates int
	deletes int
	lists   int

	failList   error
	failInsert error
}

func (f *fakeStore) ListMeals(ctx context.Context) ([]meal.Meal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.failList != nil {
		return nil, f.failList
	}
	out := make([]meal.Meal, len(f.meals))
	copy(out, f.meals)
	return out, nil
}

func (f *fakeStore) InsertMeal(ctx context.Context, m meal.Meal) (meal.Meal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.failInsert != nil {
		return meal.Meal{}, f.failInsert
	}
	f.seq++
	m.ID = string(rune('a' + f.seq - 1))
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	f.meals = append(f.meals, m)
	return m, nil
}

func (f *fakeStore) UpdateMeal(ctx context.Context, id string, p meal.Patch) (meal.Meal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	for i := range f.meals {
		if f.meals[i].ID == id {
			f.meals[i] = p.Apply(f.meals[i])
			f.meals[i].UpdatedAt = time.Now()
			return f.meals[i], nil
		}
	}
	return meal.Meal{}, meal.ErrNotFound
}

func (f *fakeStore) DeleteMeal(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	for i := range f.meals {
		if f.meals[i].ID == id {
			f.meals = append(f.meals[:i], f.meals[i+1:]...)
			return nil
		}
	}
	return meal.ErrNotFound
}

func (f *fakeStore) PutDedup(ctx context.Context, key string, until time.Time) error { return nil }
func (f *fakeStore) GetDedup(ctx context.Context, key string) (time.Time, bool, error) {
	return time.Time{}, false, nil
}
func (f *fakeStore) Close() error { return nil }

type fakeNotifier struct {
	mu   sync.Mutex
	seen []notify.Notification
	fail error
}

func (f *fakeNotifier) Notify(ctx context.Context, n notify.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.seen = append(f.seen, n)
	return nil
}

func (f *fakeNotifier) titles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.seen))
	for i, n := range f.seen {
		out[i] = n.Title
	}
	return out
}

func newTestManager(st *fakeStore) (*Manager, *fakeNotifier) {
	fn := &fakeNotifier{}
	return New(st, fn, eventbus.New(), logx.Nop()), fn
}

func TestCreateValidatesBeforeStore(t *testing.T) {
	t.Parallel()
	st := &fakeStore{}
	mgr, fn := newTestManager(st)

	_, err := mgr.Create(context.Background(), "", "2024-01-10", "08:00", "")
	var verr *meal.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if st.inserts != 0 {
		t.Fatalf("store was called %d times before validation", st.inserts)
	}
	if len(fn.titles()) != 0 {
		t.Fatal("no notification expected on validation failure")
	}
}

func TestCreateRefreshesSnapshotAndNotifies(t *testing.T) {
	t.Parallel()
	st := &fakeStore{}
	mgr, fn := newTestManager(st)

	created, err := mgr.Create(context.Background(), "Dinner", "2024-01-10", "18:00", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Completed {
		t.Fatal("new meal must start uncompleted")
	}

	ms := mgr.Meals()
	if len(ms) != 1 || ms[0].ID != created.ID {
		t.Fatalf("snapshot = %+v, want the created meal", ms)
	}
	titles := fn.titles()
	if len(titles) != 1 || titles[0] != "Meal scheduled" {
		t.Fatalf("notifications = %v", titles)
	}
}

func TestCreateStoreFailureLeavesSnapshot(t *testing.T) {
	t.Parallel()
	st := &fakeStore{failInsert: errors.New("backend down")}
	mgr, fn := newTestManager(st)

	_, err := mgr.Create(context.Background(), "Dinner", "2024-01-10", "18:00", "")
	var serr *meal.StoreError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StoreError, got %v", err)
	}
	if len(mgr.Meals()) != 0 {
		t.Fatal("snapshot changed on failed create")
	}
	titles := fn.titles()
	if len(titles) != 1 || titles[0] != "Meal not scheduled" {
		t.Fatalf("expected failure notification, got %v", titles)
	}
}

func TestCompleteIsIdempotent(t *testing.T) {
	t.Parallel()
	st := &fakeStore{}
	mgr, fn := newTestManager(st)
	ctx := context.Background()

	created, err := mgr.Create(ctx, "Dinner", "2024-01-10", "18:00", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := mgr.Complete(ctx, created.ID); err != nil {
		t.Fatalf("first complete: %v", err)
	}
	updatesAfterFirst := st.updates

	if err := mgr.Complete(ctx, created.ID); err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if st.updates != updatesAfterFirst {
		t.Fatal("second complete hit the store")
	}
	if got := mgr.Meals()[0]; !got.Completed {
		t.Fatal("meal not completed")
	}

	var completions int
	for _, title := range fn.titles() {
		if title == "Meal completed" {
			completions++
		}
	}
	if completions != 1 {
		t.Fatalf("expected exactly one completion notification, got %d", completions)
	}
}

func TestCompleteUnknownID(t *testing.T) {
	t.Parallel()
	st := &fakeStore{}
	mgr, _ := newTestManager(st)
	if err := mgr.Complete(context.Background(), "ghost"); !errors.Is(err, meal.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteUnknownIDLeavesSnapshot(t *testing.T) {
	t.Parallel()
	st := &fakeStore{}
	mgr, _ := newTestManager(st)
	ctx := context.Background()

	if _, err := mgr.Create(ctx, "Dinner", "2024-01-10", "18:00", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	before := mgr.Meals()

	if err := mgr.Delete(ctx, "ghost"); !errors.Is(err, meal.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	after := mgr.Meals()
	if len(after) != len(before) || after[0].ID != before[0].ID {
		t.Fatal("snapshot changed on failed delete")
	}
}

func TestRefreshFailureKeepsLastKnownGood(t *testing.T) {
	t.Parallel()
	st := &fakeStore{}
	mgr, _ := newTestManager(st)
	ctx := context.Background()

	if _, err := mgr.Create(ctx, "Dinner", "2024-01-10", "18:00", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(mgr.Meals()) != 1 {
		t.Fatal("snapshot not loaded")
	}

	st.mu.Lock()
	st.failList = errors.New("transport error")
	st.mu.Unlock()

	if err := mgr.Refresh(ctx); err == nil {
		t.Fatal("expected refresh error")
	}
	if len(mgr.Meals()) != 1 {
		t.Fatal("failed refresh cleared the snapshot")
	}
}

func TestViewsAndUpcomingReadFromSnapshot(t *testing.T) {
	t.Parallel()
	st := &fakeStore{}
	mgr, _ := newTestManager(st)
	ctx := context.Background()

	now, err := time.ParseInLocation("2006-01-02T15:04", "2024-01-10T10:00", time.Local)
	if err != nil {
		t.Fatalf("parse now: %v", err)
	}

	if _, err := mgr.Create(ctx, "Breakfast", "2024-01-10", "08:00", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := mgr.Create(ctx, "Dinner", "2024-01-10", "18:00", ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	v := mgr.Views(now)
	if len(v.Today) != 2 || len(v.Scheduled) != 1 {
		t.Fatalf("views: today=%d scheduled=%d", len(v.Today), len(v.Scheduled))
	}
	next, ok := mgr.Upcoming(now)
	if !ok || next.Name != "Dinner" {
		t.Fatalf("upcoming = %+v ok=%v", next, ok)
	}
}
