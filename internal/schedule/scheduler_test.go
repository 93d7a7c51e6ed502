package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name    string
	runs    atomic.Int32
	err     error
	block   chan struct{}
	started chan struct{}
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.started != nil {
		close(j.started)
	}
	if j.block != nil {
		select {
		case <-j.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return j.err
}

func TestTriggerRunsJob(t *testing.T) {
	s := NewCronScheduler()
	job := &countingJob{name: "resync"}
	require.NoError(t, s.AddJob(job, ""))
	require.NoError(t, s.Trigger("resync"))
	require.Equal(t, int32(1), job.runs.Load())
	require.True(t, s.Next("resync").IsZero())

	require.Error(t, s.Trigger("missing"))
}

func TestTriggerReturnsJobError(t *testing.T) {
	s := NewCronScheduler()
	require.NoError(t, s.AddJob(&countingJob{name: "bad", err: errors.New("boom")}, ""))
	require.EqualError(t, s.Trigger("bad"), "boom")
}

func TestAddJobRejectsDuplicatesAndBadSpecs(t *testing.T) {
	s := NewCronScheduler()
	require.NoError(t, s.AddJob(&countingJob{name: "a"}, "0 3 * * *"))
	require.Error(t, s.AddJob(&countingJob{name: "a"}, "0 4 * * *"))
	require.Error(t, s.AddJob(&countingJob{name: "b"}, "not a spec"))
	require.Error(t, s.AddJob(&countingJob{name: "c"}, "*/5 * * * * *"))
}

func TestNextIsScheduledAfterStart(t *testing.T) {
	s := NewCronScheduler()
	require.NoError(t, s.AddJob(&countingJob{name: "a"}, "0 3 * * *"))
	s.Start(context.Background())
	defer s.Stop()
	require.Eventually(t, func() bool { return !s.Next("a").IsZero() }, time.Second, 10*time.Millisecond)
	require.Equal(t, 3, s.Next("a").Hour())
}

func TestOverlappingRunIsSkipped(t *testing.T) {
	s := NewCronScheduler()
	job := &countingJob{name: "slow", block: make(chan struct{}), started: make(chan struct{})}
	require.NoError(t, s.AddJob(job, ""))

	done := make(chan error, 1)
	go func() { done <- s.Trigger("slow") }()
	<-job.started
	require.NoError(t, s.Trigger("slow"))
	close(job.block)
	require.NoError(t, <-done)
	require.Equal(t, int32(1), job.runs.Load())
}

func TestStopCancelsRunningJob(t *testing.T) {
	s := NewCronScheduler()
	job := &countingJob{name: "slow", block: make(chan struct{}), started: make(chan struct{})}
	require.NoError(t, s.AddJob(job, ""))
	s.Start(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Trigger("slow") }()
	<-job.started
	s.Stop()
	require.ErrorIs(t, <-done, context.Canceled)
}
