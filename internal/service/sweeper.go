package service

import (
	"context"
	"log/slog"
	"time"
)

// DeletionPurger is the slice of the deletion-record store the sweeper
// needs.
type DeletionPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper periodically purges deletion records whose undo window has
// passed. Best-effort hygiene: restoration's own expiry check is the
// correctness guarantee, so a missed sweep never permits a late undo.
type Sweeper struct {
	deletions DeletionPurger
	interval  time.Duration

	nowFunc func() time.Time
}

func NewSweeper(deletions DeletionPurger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Sweeper{
		deletions: deletions,
		interval:  interval,
	}
}

func (s *Sweeper) now() time.Time {
	if s.nowFunc != nil {
		return s.nowFunc()
	}
	return time.Now().UTC()
}

// Run blocks, sweeping every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep purges expired records once.
func (s *Sweeper) Sweep(ctx context.Context) {
	purged, err := s.deletions.PurgeExpired(ctx, s.now())
	if err != nil {
		slog.ErrorContext(ctx, "expiry sweep failed",
			slog.String("error", err.Error()),
			slog.String("module", "sweeper"),
		)
		return
	}
	if purged > 0 {
		slog.InfoContext(ctx, "purged expired deletion records",
			slog.Int64("count", purged),
			slog.String("module", "sweeper"),
		)
	}
}
