package notify

import (
	"context"
	"strings"
	"testing"

	logx "petfeed/pkg/logx"
)

func TestConsoleRendersNotification(t *testing.T) {
	t.Parallel()
	c := NewConsole(5, logx.Nop())
	var buf strings.Builder
	c.SetOutput(&buf)

	err := c.Notify(context.Background(), Notification{
		Title:   "Time to feed: Breakfast",
		Message: "Your pet's meal time is now!",
		Action:  &Action{Label: "Mark fed"},
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Time to feed: Breakfast", "Your pet's meal time is now!", "[Mark fed]"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
	if got := len(c.History().Items()); got != 1 {
		t.Errorf("history = %d items", got)
	}
}

func TestConsoleRateLimitDropsExcess(t *testing.T) {
	t.Parallel()
	c := NewConsole(2, logx.Nop())
	var buf strings.Builder
	c.SetOutput(&buf)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if err := c.Notify(ctx, Notification{Title: "flood"}); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}
	// Burst is 2, so only the first two land; drops are silent to the caller.
	if got := strings.Count(buf.String(), "flood"); got != 2 {
		t.Errorf("rendered %d notifications, want 2", got)
	}
	if got := len(c.History().Items()); got != 2 {
		t.Errorf("history = %d items, want 2", got)
	}
}

func TestHistoryBounded(t *testing.T) {
	t.Parallel()
	h := NewHistory(3)
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		h.Append(Notification{Title: title})
	}
	items := h.Items()
	if len(items) != 3 {
		t.Fatalf("history = %d items, want 3", len(items))
	}
	if items[0].Title != "c" || items[2].Title != "e" {
		t.Fatalf("history window = %v", items)
	}
}
