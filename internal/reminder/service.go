// Package reminder turns the passive meal snapshot into timely alerts: it
// keeps an "upcoming meal" value fresh and fires exactly one alert per
// (meal, due-minute) pair, without user interaction.
package reminder

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"petfeed/internal/eventbus"
	"petfeed/internal/notify"
	"petfeed/internal/runtime/supervisor"
	"petfeed/internal/storage"
	logx "petfeed/pkg/logx"
)

func New(cfg Config, src SnapshotSource, notifier notify.Notifier, sound notify.SoundPlayer, bus eventbus.Bus, store storage.Store, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	if sound == nil {
		sound = notify.NopPlayer{}
	}
	return &Service{
		cfg:      cfg.withDefaults(),
		log:      log,
		src:      src,
		notifier: notifier,
		sound:    sound,
		bus:      bus,
		store:    store,
		now:      time.Now,
		dedup:    map[string]time.Time{},
	}
}

// Apply swaps intervals at runtime. Tick loops pick the new values up on
// their next arm, so no restart is needed.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	s.cfg = cfg.withDefaults()
	s.mu.Unlock()
}

func (s *Service) config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Enabled reports the current config flag.
func (s *Service) Enabled() bool { return s.config().Enabled }

// Start launches the tick loops. Idempotent; if a Stop() is in progress it
// waits for that stop to finish first.
func (s *Service) Start(ctx context.Context) {
	for {
		s.mu.Lock()
		if !s.running && s.stopDone == nil {
			break
		}
		if s.running {
			s.mu.Unlock()
			return
		}
		done := s.stopDone
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return
		}
	}
	// still holding s.mu
	s.running = true
	s.sup = supervisor.New(ctx, supervisor.WithLogger(s.log))
	sup := s.sup
	s.mu.Unlock()

	// Seed the upcoming value so callers don't wait a full recompute interval.
	s.recompute()

	sup.Go0("reminder-recompute", s.recomputeLoop)
	sup.Go0("reminder-alert", s.alertLoop)

	// Midnight rollover: the today/scheduled/history partition changes with the
	// calendar date, not with any record mutation.
	c := cron.New(cron.WithLocation(time.Local))
	_, err := c.AddFunc("0 0 * * *", func() {
		s.log.Debug("midnight rollover; recomputing views")
		s.recompute()
	})
	if err != nil {
		s.log.Error("rollover schedule rejected", logx.Err(err))
	}
	c.Start()
	s.mu.Lock()
	s.c = c
	s.mu.Unlock()

	cfg := s.config()
	s.log.Info("reminder started",
		logx.Duration("recompute_interval", cfg.RecomputeInterval),
		logx.Duration("alert_interval", cfg.AlertInterval),
		logx.Duration("dedup_window", cfg.DedupWindow),
	)
}

// Stop cancels both tick loops and the rollover schedule, then waits for
// in-flight ticks up to ctx's deadline. No recurring work survives it.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		if done := s.stopDone; done != nil {
			s.mu.Unlock()
			select {
			case <-done:
			case <-ctx.Done():
			}
			return
		}
		s.mu.Unlock()
		return
	}
	s.running = false
	done := make(chan struct{})
	s.stopDone = done
	sup := s.sup
	c := s.c
	s.sup = nil
	s.c = nil
	s.mu.Unlock()

	start := time.Now()
	if c != nil {
		<-c.Stop().Done()
	}
	sup.Cancel()

	go func() {
		sup.Wait()
		s.mu.Lock()
		s.stopDone = nil
		s.mu.Unlock()
		close(done)
		s.log.Info("reminder stopped", logx.Duration("took", time.Since(start)))
	}()

	select {
	case <-done:
	case <-ctx.Done():
		// stop continues in background
	}
}

func (s *Service) recomputeLoop(ctx context.Context) {
	var events <-chan eventbus.Event
	unsub := func() {}
	if s.bus != nil {
		events, unsub = s.bus.Subscribe(16)
	}
	defer unsub()

	t := time.NewTimer(s.config().RecomputeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			// Mutations change the candidate set immediately.
			if ev.Type == eventbus.TypeSnapshot {
				s.recompute()
			}
		case <-t.C:
			s.recompute()
			t.Reset(s.config().RecomputeInterval)
		}
	}
}

func (s *Service) alertLoop(ctx context.Context) {
	t := time.NewTimer(s.config().AlertInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.alertScan(ctx)
			t.Reset(s.config().AlertInterval)
		}
	}
}
