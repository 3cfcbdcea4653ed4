package scheduler

import (
	"context"
	"testing"
	"time"

	"rental-portal/internal/cleanup"
	"rental-portal/internal/config"
	"rental-portal/internal/geocode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackfiller struct {
	calls int
	block chan struct{}
}

func (b *stubBackfiller) Backfill(ctx context.Context) (*geocode.BackfillResult, error) {
	b.calls++
	if b.block != nil {
		<-b.block
	}
	return &geocode.BackfillResult{Total: 1, Updated: 1}, nil
}

type stubSweeper struct {
	last cleanup.CleanupConfig
}

func (s *stubSweeper) Sweep(_ context.Context, cfg cleanup.CleanupConfig) (*cleanup.CleanupResult, error) {
	s.last = cfg
	return &cleanup.CleanupResult{DryRun: cfg.DryRun}, nil
}

func TestParseDailyRunTime(t *testing.T) {
	s, err := NewScheduler(config.SchedulerConfig{}, nil, nil, nil)
	require.NoError(t, err)

	tests := map[string]string{
		"03:00": "0 3 * * *",
		"23:45": "45 23 * * *",
		"7:05":  "5 7 * * *",
		"bogus": "0 2 * * *",
		"25:00": "0 2 * * *",
		"":      "0 2 * * *",
	}
	for in, want := range tests {
		assert.Equal(t, want, s.parseDailyRunTime(in), in)
	}
}

func TestInvalidTimezone(t *testing.T) {
	_, err := NewScheduler(config.SchedulerConfig{Timezone: "Mars/Olympus"}, nil, nil, nil)
	assert.Error(t, err)
}

func TestRunNow(t *testing.T) {
	b := &stubBackfiller{}
	sw := &stubSweeper{}
	s, err := NewScheduler(config.SchedulerConfig{}, b, sw, nil)
	require.NoError(t, err)

	res, err := s.RunGeocodeNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, b.calls)

	sweep, err := s.RunSweepNow(context.Background(), cleanup.CleanupConfig{MaxDeletionCount: 3})
	require.NoError(t, err)
	assert.False(t, sweep.DryRun)
	assert.Equal(t, 3, sw.last.MaxDeletionCount)
}

func TestRunNowRejectsOverlap(t *testing.T) {
	b := &stubBackfiller{block: make(chan struct{})}
	s, err := NewScheduler(config.SchedulerConfig{}, b, nil, nil)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.RunGeocodeNow(context.Background())
	}()

	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.running["geocode"]
	}, time.Second, time.Millisecond)

	_, err = s.RunGeocodeNow(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	close(b.block)
	<-done
}

func TestRunNowWithoutJobs(t *testing.T) {
	s, err := NewScheduler(config.SchedulerConfig{}, nil, nil, nil)
	require.NoError(t, err)
	_, err = s.RunGeocodeNow(context.Background())
	assert.Error(t, err)
	_, err = s.RunSweepNow(context.Background(), cleanup.DefaultCleanupConfig())
	assert.Error(t, err)
	assert.NoError(t, s.Start())
	s.Stop()
}

func TestStartRegistersJobs(t *testing.T) {
	s, err := NewScheduler(config.SchedulerConfig{
		GeocodeEnabled: true, GeocodeTime: "03:00",
		SweepEnabled: true, SweepTime: "04:00",
	}, &stubBackfiller{}, &stubSweeper{}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 2)
	s.Stop()
}
