package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/academy-auth/internal/auth"
)

// Sweeper is the part of a revocation registry the sweeper drives.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

var _ Sweeper = (auth.RevocationRegistry)(nil)

// StartRevocationSweeper periodically drops revocation entries whose tokens have expired.
// It stops when ctx is cancelled; the returned channel closes once it has.
// A non-positive interval disables the sweeper.
func StartRevocationSweeper(ctx context.Context, registry Sweeper, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if registry == nil || interval <= 0 {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweepOnce(ctx, registry, logger)
			}
		}
	}()
	return done
}

func sweepOnce(ctx context.Context, registry Sweeper, logger *zap.Logger) {
	removed, err := registry.Sweep(ctx, time.Now())
	if err != nil {
		logger.Warn("revocation sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		logger.Debug("revocation sweep", zap.Int("removed", removed))
	}
}
