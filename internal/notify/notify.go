// Package notify is the user-facing alert surface: toast-style notifications
// plus an optional alarm sound. The reminder poller and the lifecycle manager
// are its only callers; both treat delivery failures as log-and-continue.
package notify

import (
	"context"
	"sync"
	"time"
)

// Action is an optional affordance attached to a notification
// (e.g. "Mark fed" on a due alert).
type Action struct {
	Label  string
	Invoke func(ctx context.Context) error
}

type Notification struct {
	Title    string
	Message  string
	Duration time.Duration // how long the notification should stay visible
	Action   *Action
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// SoundPlayer plays the due-meal alarm cue.
type SoundPlayer interface {
	Play(ctx context.Context) error
}

// History is a bounded in-memory record of emitted notifications,
// kept for status output and tests.
type History struct {
	mu    sync.Mutex
	items []Notification
	max   int
}

func NewHistory(max int) *History {
	if max <= 0 {
		max = 300
	}
	return &History{max: max}
}

func (h *History) Append(n Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append(h.items, n)
	if len(h.items) > h.max {
		h.items = h.items[len(h.items)-h.max:]
	}
}

func (h *History) Items() []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Notification, len(h.items))
	copy(out, h.items)
	return out
}
