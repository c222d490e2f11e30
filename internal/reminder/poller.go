package reminder

import (
	"context"
	"runtime/debug"
	"time"

	"petfeed/internal/eventbus"
	"petfeed/internal/meal"
	"petfeed/internal/notify"
	logx "petfeed/pkg/logx"
)

// Upcoming returns the last recomputed next-due meal.
func (s *Service) Upcoming() (meal.Meal, bool) {
	s.upMu.Lock()
	defer s.upMu.Unlock()
	if s.upcoming == nil {
		return meal.Meal{}, false
	}
	return *s.upcoming, true
}

// recompute re-runs the next-due selection over the current snapshot.
func (s *Service) recompute() {
	defer s.recoverTick("recompute")

	now := s.now()
	next, ok := meal.NextDue(s.src.Meals(), now)

	s.upMu.Lock()
	changed := false
	if !ok {
		changed = s.upcoming != nil
		s.upcoming = nil
	} else if s.upcoming == nil || s.upcoming.ID != next.ID || s.upcoming.Time != next.Time {
		changed = true
		cp := next
		s.upcoming = &cp
	}
	s.upMu.Unlock()

	if changed {
		if ok {
			s.log.Debug("upcoming meal changed", logx.String("id", next.ID), logx.String("name", next.Name), logx.String("time", next.Time))
		} else {
			s.log.Debug("no upcoming meal for today")
		}
	}
}

// alertScan fires one alert per meal that is due this minute. The scan runs
// every AlertInterval (finer than a minute), so dedup keys keep a meal from
// alerting more than once inside its matching minute.
func (s *Service) alertScan(ctx context.Context) {
	defer s.recoverTick("alert scan")

	now := s.now()
	cfg := s.config()
	for _, m := range s.src.Meals() {
		if !m.DueAt(now) {
			continue
		}
		key := dedupKey(m)
		if s.alreadyAlerted(ctx, key, now) {
			continue
		}
		s.markAlerted(ctx, key, now.Add(cfg.DedupWindow))
		s.emit(ctx, m)
	}
}

// emit delivers one alert. Collaborator failures are logged and swallowed;
// there is no synchronous caller to report to and the poller must keep going.
func (s *Service) emit(ctx context.Context, m meal.Meal) {
	s.log.Info("meal due", logx.String("id", m.ID), logx.String("name", m.Name), logx.String("time", m.Time))

	if s.bus != nil {
		s.bus.Publish(eventbus.Event{Type: eventbus.TypeDue, Data: m})
	}

	if s.notifier != nil {
		err := s.notifier.Notify(ctx, notify.Notification{
			Title:    "Time to feed: " + m.Name,
			Message:  "Your pet's meal time is now!",
			Duration: 10 * time.Second,
		})
		if err != nil {
			s.log.Warn("due alert notification failed", logx.String("id", m.ID), logx.Err(err))
		}
	}

	if err := s.sound.Play(ctx); err != nil {
		s.log.Warn("alarm sound failed", logx.String("id", m.ID), logx.Err(err))
	}
}

func dedupKey(m meal.Meal) string {
	return "alert|" + m.ID + "|" + m.Date + "|" + m.Time
}

func (s *Service) alreadyAlerted(ctx context.Context, key string, now time.Time) bool {
	s.dmu.Lock()
	until, ok := s.dedup[key]
	if ok && now.Before(until) {
		s.dmu.Unlock()
		return true
	}
	if ok {
		delete(s.dedup, key)
	}
	s.dmu.Unlock()

	// Persistent dedup covers restarts inside the due minute. Best-effort; a
	// store error only risks one duplicate alert.
	if s.store != nil {
		if until, found, err := s.store.GetDedup(ctx, key); err == nil && found && now.Before(until) {
			return true
		}
	}
	return false
}

func (s *Service) markAlerted(ctx context.Context, key string, until time.Time) {
	s.dmu.Lock()
	s.dedup[key] = until
	// Light prune so the map doesn't grow with meal history.
	now := s.now()
	for k, u := range s.dedup {
		if now.After(u) {
			delete(s.dedup, k)
		}
	}
	s.dmu.Unlock()

	if s.store != nil {
		if err := s.store.PutDedup(ctx, key, until); err != nil {
			s.log.Debug("persisting alert dedup failed", logx.Err(err))
		}
	}
}

// recoverTick keeps a panicking collaborator from killing the tick loops.
func (s *Service) recoverTick(what string) {
	if r := recover(); r != nil {
		s.log.Error("panic during "+what, logx.Any("panic", r), logx.String("stack", string(debug.Stack())))
	}
}
