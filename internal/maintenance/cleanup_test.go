package maintenance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePurger struct {
	mu      sync.Mutex
	cutoffs []time.Time
	n       int64
	err     error
}

func (f *fakePurger) record(cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.n, f.err
}

func (f *fakePurger) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func (f *fakePurger) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return f.record(cutoff)
}

func (f *fakePurger) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return f.record(cutoff)
}

func TestRunOnceUsesRetentionCutoff(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codes := &fakePurger{n: 3}
	sessions := &fakePurger{n: 2}

	cleaner := NewCleaner(codes, sessions, zap.NewNop(),
		WithNow(func() time.Time { return now }),
		WithRetention(6*time.Hour),
	)

	stats, err := cleaner.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{ResetCodes: 3, Sessions: 2}, stats)
	assert.Equal(t, []time.Time{now.Add(-6 * time.Hour)}, codes.cutoffs)
	assert.Equal(t, []time.Time{now.Add(-6 * time.Hour)}, sessions.cutoffs)
}

func TestRunOnceContinuesAfterFailure(t *testing.T) {
	codes := &fakePurger{err: errors.New("codes down")}
	sessions := &fakePurger{n: 5, err: errors.New("sessions down")}

	stats, err := NewCleaner(codes, sessions, zap.NewNop()).RunOnce(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "codes down")
	assert.ErrorContains(t, err, "sessions down")
	assert.Equal(t, 1, sessions.calls())
	assert.EqualValues(t, 5, stats.Sessions)
}

func TestRunOnceSkipsNilPurgers(t *testing.T) {
	codes := &fakePurger{n: 1}

	stats, err := NewCleaner(codes, nil, zap.NewNop()).RunOnce(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.ResetCodes)
	assert.Zero(t, stats.Sessions)
}

func TestStartRunsOnSchedule(t *testing.T) {
	codes := &fakePurger{}
	sched := cron.New(cron.WithSeconds(), cron.WithLogger(cron.DiscardLogger))

	cleaner := NewCleaner(codes, nil, zap.NewNop(), WithCron(sched), WithSchedule("@every 1s"))
	require.NoError(t, cleaner.Start())
	defer cleaner.Stop()

	assert.Eventually(t, func() bool { return codes.calls() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	cleaner := NewCleaner(&fakePurger{}, nil, zap.NewNop(), WithSchedule("not a schedule"))
	assert.Error(t, cleaner.Start())
}

func TestStartWithoutPurgersIsNoop(t *testing.T) {
	cleaner := NewCleaner(nil, nil, zap.NewNop(), WithSchedule("not a schedule"))
	assert.NoError(t, cleaner.Start())
	<-cleaner.Stop().Done()
}
