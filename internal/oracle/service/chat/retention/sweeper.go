package retention

import (
	"context"
	"errors"
	"time"

	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/repo"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/pkg/errno"
	"github.com/kiosk404/oracle/pkg/logger"
	"github.com/kiosk404/oracle/pkg/utils/safego"
)

const logModule = "retention"

// RemoveFunc deletes one thread. It returns errno.ErrThreadBusy for a thread with a
// running turn.
type RemoveFunc func(ctx context.Context, threadID string) error

// Sweeper applies a Policy to a store on an interval.
type Sweeper struct {
	store    repo.ConversationRepository
	policy   Policy
	interval time.Duration
	remove   RemoveFunc
	now      func() time.Time
}

// NewSweeper creates a sweeper that deletes through remove, which must hold the thread's
// turn lock while deleting. A nil remove deletes from store directly.
func NewSweeper(store repo.ConversationRepository, policy Policy, interval time.Duration, remove RemoveFunc) *Sweeper {
	if remove == nil {
		remove = store.Delete
	}
	return &Sweeper{
		store:    store,
		policy:   policy,
		interval: interval,
		remove:   remove,
		now:      time.Now,
	}
}

// SweepOnce deletes every thread the policy selects and returns how many were removed.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	metas, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, id := range s.policy.Select(s.now(), metas) {
		if err := s.remove(ctx, id); err != nil {
			switch {
			case errors.Is(err, errno.ErrThreadBusy):
				logger.DebugX(logModule, "thread %s is busy, skipped", id)
				continue
			case errors.Is(err, errno.ErrConversationNotFound):
				continue
			}
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Start runs SweepOnce every interval until ctx is done. A non-positive interval disables it.
func (s *Sweeper) Start(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	logger.InfoX(logModule, "sweeping conversations every %s", s.interval)

	safego.Go(ctx, func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.SweepOnce(ctx)
				if err != nil {
					logger.WarnX(logModule, "sweep failed: %v", err)
					continue
				}
				if n > 0 {
					logger.InfoX(logModule, "removed %d conversations", n)
				}
			}
		}
	})
}
