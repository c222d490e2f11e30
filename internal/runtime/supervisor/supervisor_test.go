package supervisor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestStopWaitsForGoroutines(t *testing.T) {
	t.Parallel()
	s := New(context.Background())
	exited := make(chan struct{})
	s.Go0("loop", func(ctx context.Context) {
		<-ctx.Done()
		close(exited)
	})

	if err := s.StopTimeout(2 * time.Second); err != nil {
		t.Fatalf("stop: %v", err)
	}
	select {
	case <-exited:
	default:
		t.Fatal("Stop returned before the goroutine exited")
	}
}

func TestStopDeadline(t *testing.T) {
	t.Parallel()
	s := New(context.Background())
	release := make(chan struct{})
	s.Go0("stuck", func(ctx context.Context) { <-release })

	if err := s.StopTimeout(50 * time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	close(release)
	s.Wait()
}

func TestPanicRecoveredAsError(t *testing.T) {
	t.Parallel()
	s := New(context.Background())
	s.Go0("boom", func(ctx context.Context) { panic("kaboom") })
	s.Wait()

	err := s.Err()
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("Err() = %v", err)
	}
}

func TestFirstErrorWinsAndContextCanceled(t *testing.T) {
	t.Parallel()
	s := New(context.Background(), WithCancelOnError(true))
	first := errors.New("first failure")
	s.Go("fails", func(ctx context.Context) error { return first })
	s.Wait()

	if err := s.Err(); !errors.Is(err, first) {
		t.Fatalf("Err() = %v", err)
	}
	select {
	case <-s.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("context not canceled on error")
	}

	// context.Canceled returns from stopping loops are not recorded as failures.
	s2 := New(context.Background())
	s2.Go("canceled", func(ctx context.Context) error { return context.Canceled })
	s2.Wait()
	if err := s2.Err(); err != nil {
		t.Fatalf("canceled recorded as error: %v", err)
	}
}
