package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultPruneInterval = 24 * time.Hour

// AuditRetention periodically deletes invocations older than the retention
// window.
type AuditRetention struct {
	audit     *AuditService
	retention time.Duration
	interval  time.Duration
	now       func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewAuditRetention creates a pruner. A zero retention disables pruning.
func NewAuditRetention(audit *AuditService, retention time.Duration) *AuditRetention {
	return &AuditRetention{
		audit:     audit,
		retention: retention,
		interval:  defaultPruneInterval,
		now:       time.Now,
	}
}

// Start prunes once immediately and then on every interval until ctx is
// cancelled or Stop is called.
func (r *AuditRetention) Start(ctx context.Context) {
	if r.retention <= 0 {
		log.Debug().Msg("audit retention disabled")
		return
	}

	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go r.loop(ctx)
}

// Stop waits for the pruning goroutine to exit.
func (r *AuditRetention) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

func (r *AuditRetention) loop(ctx context.Context) {
	defer r.wg.Done()

	r.prune()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.prune()
		}
	}
}

func (r *AuditRetention) prune() int64 {
	cutoff := r.now().Add(-r.retention)
	n, err := r.audit.Prune(cutoff)
	if err != nil {
		log.Error().Err(err).Msg("failed to prune invocations")
		return 0
	}
	if n > 0 {
		log.Info().Int64("rows", n).Time("before", cutoff).Msg("pruned old invocations")
	}
	return n
}
