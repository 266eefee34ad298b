package service

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
)

type purgerFunc func(ctx context.Context, now time.Time) (int64, error)

func (f purgerFunc) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	return f(ctx, now)
}

func TestSweepPassesCurrentTime(t *testing.T) {
	fixed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	var got time.Time
	s := NewSweeper(purgerFunc(func(ctx context.Context, now time.Time) (int64, error) {
		got = now
		return 3, nil
	}), time.Second)
	s.nowFunc = func() time.Time { return fixed }

	s.Sweep(context.Background())

	if !got.Equal(fixed) {
		t.Errorf("purge cutoff: got %v, want %v", got, fixed)
	}
}

func TestSweepSurvivesStoreErrors(t *testing.T) {
	calls := 0
	s := NewSweeper(purgerFunc(func(ctx context.Context, now time.Time) (int64, error) {
		calls++
		return 0, errors.New("store unavailable")
	}), time.Second)

	// An error must not panic or stop subsequent sweeps.
	s.Sweep(context.Background())
	s.Sweep(context.Background())

	if calls != 2 {
		t.Errorf("purge calls: got %d, want 2", calls)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	swept := make(chan struct{}, 8)
	s := NewSweeper(purgerFunc(func(ctx context.Context, now time.Time) (int64, error) {
		swept <- struct{}{}
		return 0, nil
	}), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case <-swept:
	case <-time.After(time.Second):
		t.Fatal("sweeper never ticked")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on cancel")
	}
}

func TestNewSweeperDefaultsInterval(t *testing.T) {
	s := NewSweeper(purgerFunc(func(ctx context.Context, now time.Time) (int64, error) {
		return 0, nil
	}), 0)
	if s.interval != 30*time.Second {
		t.Errorf("default interval: got %v, want 30s", s.interval)
	}
}
