package history

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type recordingStore struct {
	cutoff atomic.Value
	calls  atomic.Int32
	err    error
}

func (s *recordingStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.calls.Add(1)
	s.cutoff.Store(cutoff)
	if s.err != nil {
		return 0, s.err
	}
	return 2, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestPruneOnceUsesRetention(t *testing.T) {
	store := &recordingStore{}
	p := NewPruner(quietLogger(), store, 90*24*time.Hour)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	n := p.PruneOnce(context.Background(), p.logger.WithField("test", true))

	assert.Equal(t, int64(2), n)
	assert.Equal(t, now.Add(-90*24*time.Hour), store.cutoff.Load())
}

func TestPruneOnceStoreError(t *testing.T) {
	p := NewPruner(quietLogger(), &recordingStore{err: errors.New("db down")}, time.Hour)

	assert.Zero(t, p.PruneOnce(context.Background(), p.logger.WithField("test", true)))
}

func TestStartRunsUntilCancelled(t *testing.T) {
	store := &recordingStore{}
	p := NewPruner(quietLogger(), store, time.Hour)
	p.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pruner did not stop")
	}
}
