package history

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type Store interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Pruner periodically deletes search history older than the retention window.
type Pruner struct {
	logger    *logrus.Logger
	store     Store
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
}

func NewPruner(logger *logrus.Logger, store Store, retention time.Duration) *Pruner {
	return &Pruner{
		logger:    logger,
		store:     store,
		retention: retention,
		interval:  30 * time.Minute,
		now:       time.Now,
	}
}

func (p *Pruner) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	logEntry := p.logger.WithField("component", "history_pruner")
	logEntry.Info("Starting search history pruner")

	for {
		select {
		case <-ticker.C:
			p.PruneOnce(ctx, logEntry)
		case <-ctx.Done():
			logEntry.Info("Stopping search history pruner")
			return
		}
	}
}

func (p *Pruner) PruneOnce(ctx context.Context, log *logrus.Entry) int64 {
	log = log.WithField("operation", "history_prune")
	cutoff := p.now().Add(-p.retention)

	n, err := p.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.WithError(err).Error("Search history prune failed")
		return 0
	}
	log.WithFields(logrus.Fields{"count": n, "cutoff": cutoff}).Info("Pruned search history")
	return n
}
