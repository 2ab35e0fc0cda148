package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusboard/internal/models"
)

type fakePending struct {
	mu      sync.Mutex
	counts  map[models.ContentType]int
	err     error
	cutoffs []time.Time
}

func (f *fakePending) CountPendingSince(_ context.Context, cutoff time.Time) (map[models.ContentType]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.counts, f.err
}

type fakeSender struct {
	mu    sync.Mutex
	calls []map[models.ContentType]int
}

func (f *fakeSender) NotifyPendingDigest(_ context.Context, counts map[models.ContentType]int, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, counts)
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestPendingDigest_Run(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	counter := &fakePending{counts: map[models.ContentType]int{models.ContentNews: 2}}
	sender := &fakeSender{}
	job := NewPendingDigest(counter, sender, time.Hour, 24*time.Hour)
	job.now = func() time.Time { return now }

	job.run(context.Background())

	require.Len(t, counter.cutoffs, 1)
	assert.Equal(t, now.Add(-24*time.Hour), counter.cutoffs[0])
	assert.Equal(t, 1, sender.count())
}

func TestPendingDigest_SkipsWhenQuiet(t *testing.T) {
	sender := &fakeSender{}

	job := NewPendingDigest(&fakePending{counts: map[models.ContentType]int{models.ContentNews: 0}}, sender, time.Hour, time.Hour)
	job.run(context.Background())

	job = NewPendingDigest(&fakePending{err: errors.New("db down")}, sender, time.Hour, time.Hour)
	job.run(context.Background())

	assert.Equal(t, 0, sender.count())
}

func TestPendingDigest_StartStopsOnCancel(t *testing.T) {
	sender := &fakeSender{}
	job := NewPendingDigest(&fakePending{counts: map[models.ContentType]int{models.ContentSharespeare: 1}}, sender, 10*time.Millisecond, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return sender.count() > 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
