package jobs

import (
	"context"
	"time"

	"campusboard/internal/logging"
	"campusboard/internal/models"
)

// PendingCounter counts items that entered PENDING before cutoff.
type PendingCounter interface {
	CountPendingSince(ctx context.Context, cutoff time.Time) (map[models.ContentType]int, error)
}

// DigestSender delivers the digest to moderators.
type DigestSender interface {
	NotifyPendingDigest(ctx context.Context, counts map[models.ContentType]int, minAge time.Duration) error
}

// PendingDigest periodically reminds moderators of submissions that have
// been waiting too long.
type PendingDigest struct {
	counter  PendingCounter
	sender   DigestSender
	interval time.Duration
	minAge   time.Duration
	now      func() time.Time
}

// NewPendingDigest creates a new digest job.
func NewPendingDigest(counter PendingCounter, sender DigestSender, interval, minAge time.Duration) *PendingDigest {
	return &PendingDigest{
		counter:  counter,
		sender:   sender,
		interval: interval,
		minAge:   minAge,
		now:      time.Now,
	}
}

// Start runs the digest loop until ctx is cancelled. The first digest is
// sent after one interval.
func (p *PendingDigest) Start(ctx context.Context) {
	logging.Info().Dur("interval", p.interval).Dur("min_age", p.minAge).Msg("pending digest started")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("pending digest stopped")
			return
		case <-ticker.C:
			p.run(ctx)
		}
	}
}

func (p *PendingDigest) run(ctx context.Context) {
	counts, err := p.counter.CountPendingSince(ctx, p.now().Add(-p.minAge))
	if err != nil {
		logging.Error().Err(err).Msg("pending digest: failed to count pending items")
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return
	}

	logging.Info().Int("pending", total).Msg("pending digest: notifying moderators")
	if err := p.sender.NotifyPendingDigest(ctx, counts, p.minAge); err != nil {
		logging.Error().Err(err).Msg("pending digest: failed to notify moderators")
	}
}
