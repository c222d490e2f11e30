// Package app wires configuration, logging, storage, the lifecycle manager,
// and the reminder poller into one process with a deterministic Start/Stop.
package app

import (
	"context"
	"time"

	"petfeed/internal/config"
	"petfeed/internal/eventbus"
	"petfeed/internal/manager"
	"petfeed/internal/notify"
	"petfeed/internal/reminder"
	"petfeed/internal/runtime/supervisor"
	"petfeed/internal/storage"
	logx "petfeed/pkg/logx"
)

type App struct {
	cfgm *config.Manager

	logs *logx.Service
	log  logx.Logger

	bus   eventbus.Bus
	store storage.Store

	console *notify.Console
	sound   notify.SoundPlayer

	mgr *manager.Manager
	rem *reminder.Service

	sup *supervisor.Supervisor
}

// New loads config and constructs every component. Nothing runs yet.
func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))
	cfgm.SetLogger(logSvc.Logger().With(logx.String("comp", "config")))

	bus := eventbus.New()

	sc, err := mapStorageConfig(cfg)
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(sc, logSvc.Logger().With(logx.String("comp", "storage")))
	if err != nil {
		return nil, err
	}
	log.Info("storage opened", logx.String("driver", sc.Driver), logx.String("path", sc.Path))

	console := notify.NewConsole(cfg.Notify.RatePerSec, logSvc.Logger().With(logx.String("comp", "notify")))

	var sound notify.SoundPlayer = notify.NopPlayer{}
	if cfg.Notify.Sound.Enabled {
		sound = notify.NewCommandPlayer(cfg.Notify.Sound.Player, cfg.Notify.Sound.Path,
			logSvc.Logger().With(logx.String("comp", "sound")))
	}

	mgr := manager.New(store, console, bus, logSvc.Logger().With(logx.String("comp", "manager")))

	rc, err := mapReminderConfig(cfg)
	if err != nil {
		return nil, err
	}
	rem := reminder.New(rc, mgr, console, sound, bus, store,
		logSvc.Logger().With(logx.String("comp", "reminder")))

	return &App{
		cfgm:    cfgm,
		logs:    logSvc,
		log:     log,
		bus:     bus,
		store:   store,
		console: console,
		sound:   sound,
		mgr:     mgr,
		rem:     rem,
	}, nil
}

func (a *App) Manager() *manager.Manager   { return a.mgr }
func (a *App) Reminder() *reminder.Service { return a.rem }
func (a *App) Config() *config.Config      { return a.cfgm.Get() }
func (a *App) Logger() logx.Logger         { return a.logs.Logger() }

// Start loads the initial snapshot and launches the poller plus the config
// watcher. A failing initial refresh is logged, not fatal: the empty snapshot
// stands in until the store recovers.
func (a *App) Start(ctx context.Context) error {
	if err := a.mgr.Refresh(ctx); err != nil {
		a.log.Warn("initial snapshot load failed", logx.Err(err))
	}

	if a.rem.Enabled() {
		a.rem.Start(ctx)
	} else {
		a.log.Info("reminder poller disabled by config")
	}

	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log))
	a.sup.Go("config-watch", a.cfgm.Watch)
	a.sup.Go0("config-apply", a.applyLoop)

	a.log.Info("petfeed started")
	return nil
}

// applyLoop applies hot-reloaded config to the running services.
func (a *App) applyLoop(ctx context.Context) {
	sub := a.cfgm.Subscribe(4)
	defer a.cfgm.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-sub:
			if !ok || cfg == nil {
				return
			}
			a.applyConfig(ctx, cfg)
		}
	}
}

func (a *App) applyConfig(ctx context.Context, cfg *config.Config) {
	a.logs.Apply(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})

	rc, err := mapReminderConfig(cfg)
	if err != nil {
		a.log.Warn("reloaded reminder config invalid; keeping previous", logx.Err(err))
		return
	}
	a.rem.Apply(rc)
	if rc.Enabled {
		// Start is idempotent when the poller is already running.
		a.rem.Start(ctx)
	} else {
		a.rem.Stop(ctx)
	}
	a.log.Info("config applied")
}

// Stop tears everything down: poller first (no more alerts), then background
// loops, then the store and log sinks.
func (a *App) Stop(ctx context.Context) error {
	a.rem.Stop(ctx)

	if a.sup != nil {
		stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_ = a.sup.Stop(stopCtx)
		cancel()
	}

	if err := a.store.Close(); err != nil {
		a.log.Warn("store close failed", logx.Err(err))
	}
	a.log.Info("petfeed stopped")
	return a.logs.Close()
}

// Close releases the store and log sinks without the full Stop sequence.
// One-shot CLI commands use it when no background services ever started.
func (a *App) Close() error {
	if err := a.store.Close(); err != nil {
		a.log.Warn("store close failed", logx.Err(err))
	}
	return a.logs.Close()
}

func mapStorageConfig(cfg *config.Config) (storage.Config, error) {
	busy, err := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
	if err != nil {
		return storage.Config{}, err
	}
	return storage.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: busy,
	}, nil
}

func mapReminderConfig(cfg *config.Config) (reminder.Config, error) {
	recompute, err := config.ParseDurationOrDefault("reminder.recompute_interval", cfg.Reminder.RecomputeInterval, 60*time.Second)
	if err != nil {
		return reminder.Config{}, err
	}
	alert, err := config.ParseDurationOrDefault("reminder.alert_interval", cfg.Reminder.AlertInterval, 20*time.Second)
	if err != nil {
		return reminder.Config{}, err
	}
	dedup, err := config.ParseDurationOrDefault("reminder.dedup_window", cfg.Reminder.DedupWindow, 2*time.Minute)
	if err != nil {
		return reminder.Config{}, err
	}
	enabled := true
	if cfg.Reminder.Enabled != nil {
		enabled = *cfg.Reminder.Enabled
	}
	return reminder.Config{
		Enabled:           enabled,
		RecomputeInterval: recompute,
		AlertInterval:     alert,
		DedupWindow:       dedup,
	}, nil
}
