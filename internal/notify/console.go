package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	logx "petfeed/pkg/logx"
)

// Console renders notifications to a terminal writer. It is rate-limited so a
// misbehaving poller cannot flood the session; excess notifications are
// dropped with a log line rather than queued.
type Console struct {
	log     logx.Logger
	history *History

	mu      sync.Mutex
	out     io.Writer
	limiter *rate.Limiter
}

func NewConsole(ratePerSec int, log logx.Logger) *Console {
	if ratePerSec <= 0 {
		ratePerSec = 5
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Console{
		log:     log,
		history: NewHistory(0),
		out:     os.Stdout,
		// Burst equals the per-second rate so short spikes aren't penalized.
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
	}
}

// SetOutput redirects rendering (tests).
func (c *Console) SetOutput(w io.Writer) {
	c.mu.Lock()
	c.out = w
	c.mu.Unlock()
}

func (c *Console) History() *History { return c.history }

func (c *Console) Notify(ctx context.Context, n Notification) error {
	_ = ctx
	if !c.limiter.Allow() {
		c.log.Warn("notification dropped (rate limited)", logx.String("title", n.Title))
		return nil
	}

	var b strings.Builder
	b.WriteString("🔔 ")
	b.WriteString(n.Title)
	if n.Message != "" {
		b.WriteString(" - ")
		b.WriteString(n.Message)
	}
	if n.Action != nil && n.Action.Label != "" {
		fmt.Fprintf(&b, " [%s]", n.Action.Label)
	}

	c.mu.Lock()
	_, err := fmt.Fprintln(c.out, b.String())
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.history.Append(n)
	return nil
}
