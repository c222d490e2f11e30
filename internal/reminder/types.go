package reminder

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"petfeed/internal/eventbus"
	"petfeed/internal/meal"
	"petfeed/internal/notify"
	"petfeed/internal/runtime/supervisor"
	"petfeed/internal/storage"
	logx "petfeed/pkg/logx"
)

// Config controls the reminder poller.
type Config struct {
	Enabled bool

	// RecomputeInterval re-runs the next-due selection. Default 60s.
	RecomputeInterval time.Duration

	// AlertInterval scans the snapshot for due meals. Default 20s. The scan is
	// finer than the minute granularity of meal times, so dedup (below) is what
	// keeps a due meal from alerting three times in its minute.
	AlertInterval time.Duration

	// DedupWindow suppresses repeat alerts per (meal, date, time). Default 2m,
	// comfortably past the end of the due minute.
	DedupWindow time.Duration
}

func (c Config) withDefaults() Config {
	if c.RecomputeInterval <= 0 {
		c.RecomputeInterval = 60 * time.Second
	}
	if c.AlertInterval <= 0 {
		c.AlertInterval = 20 * time.Second
	}
	if c.DedupWindow <= 0 {
		c.DedupWindow = 2 * time.Minute
	}
	return c
}

// SnapshotSource is the read side of the lifecycle manager.
type SnapshotSource interface {
	Meals() []meal.Meal
}

// Service watches the snapshot and fires due-meal alerts. Two independent
// cadences share it: a recompute tick updating the observable upcoming meal,
// and an alert tick scanning for records due this minute. Both stop
// deterministically with the service.
type Service struct {
	mu  sync.Mutex
	cfg Config

	log      logx.Logger
	src      SnapshotSource
	notifier notify.Notifier
	sound    notify.SoundPlayer
	bus      eventbus.Bus
	store    storage.Store // dedup keyspace only; may be nil

	now func() time.Time // injectable clock

	sup      *supervisor.Supervisor
	c        *cron.Cron
	running  bool
	stopDone chan struct{} // non-nil while a Stop() is in progress

	// upcoming is the last recomputed next-due meal.
	upMu     sync.Mutex
	upcoming *meal.Meal

	// In-memory alert dedup: key -> suppress until.
	dmu   sync.Mutex
	dedup map[string]time.Time
}
