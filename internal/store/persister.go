package store

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"qms-document-control/internal/domain"
	"qms-document-control/internal/sheets"
	"qms-document-control/internal/worker"
)

// Persister writes snapshots to the remote sheet store in the background.
// At most one write is in flight at a time; a write attempted while one is
// outstanding is dropped, not queued, since each write carries the full
// current snapshot and a later write supersedes an earlier one's content.
// This is last-writer-wins: two sessions editing concurrently can silently
// clobber each other. Known limitation at the target scale.
type Persister struct {
	remote   sheets.Store
	pool     *worker.WorkerPool
	inFlight atomic.Bool
	logger   zerolog.Logger
}

func NewPersister(remote sheets.Store, pool *worker.WorkerPool, logger zerolog.Logger) *Persister {
	return &Persister{
		remote: remote,
		pool:   pool,
		logger: logger,
	}
}

// Schedule submits the snapshot for persistence. Returns false when dropped
// because a write is already outstanding.
func (p *Persister) Schedule(snapshot *domain.Snapshot) bool {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.logger.Debug().Msg("persist already in flight, dropping write")
		return false
	}

	p.pool.Submit(func(ctx context.Context) error {
		defer p.inFlight.Store(false)

		ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		if err := p.remote.Store(ctx, snapshot); err != nil {
			p.logger.Error().Err(err).Msg("snapshot persist failed")
			return err
		}
		p.logger.Debug().Msg("snapshot persisted")
		return nil
	})
	return true
}
