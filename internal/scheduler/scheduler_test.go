package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvery_RunsImmediatelyThenEveryPeriod(t *testing.T) {
	s := New(50 * time.Millisecond)
	ctx := context.Background()

	runs := 0
	_, err := s.Every("counter", time.Second, func(context.Context) error {
		runs++
		return nil
	})
	require.NoError(t, err)

	s.Step(ctx)
	assert.Equal(t, 1, runs, "task should run on the first tick")

	for i := 0; i < 19; i++ {
		s.Step(ctx)
	}
	assert.Equal(t, 1, runs, "task should wait a full period (20 ticks)")

	s.Step(ctx)
	assert.Equal(t, 2, runs)
}

func TestEvery_RoundsIntervalUpToWholeTicks(t *testing.T) {
	s := New(50 * time.Millisecond)
	ctx := context.Background()

	runs := 0
	_, err := s.Every("fast", 10*time.Millisecond, func(context.Context) error {
		runs++
		return nil
	})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		s.Step(ctx)
	}
	assert.Equal(t, 5, runs)
}

func TestEvery_Validation(t *testing.T) {
	s := New(0)
	assert.Equal(t, DefaultTick, s.TickLength())

	_, err := s.Every("nil", time.Second, nil)
	assert.Error(t, err)

	_, err = s.Every("zero", 0, func(context.Context) error { return nil })
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "interval must be positive")
}

func TestCancel(t *testing.T) {
	s := New(time.Millisecond)
	ctx := context.Background()

	runs := 0
	id, err := s.Every("once", time.Millisecond, func(context.Context) error {
		runs++
		return nil
	})
	require.NoError(t, err)
	assert.NotZero(t, id)

	s.Step(ctx)
	assert.True(t, s.Cancel(id))
	assert.False(t, s.Cancel(id))
	assert.Equal(t, 0, s.Len())

	s.Step(ctx)
	assert.Equal(t, 1, runs)
}

func TestCancelFromAnotherTaskInSameTick(t *testing.T) {
	s := New(time.Millisecond)
	ctx := context.Background()

	var second TaskID
	secondRan := false
	_, err := s.Every("first", time.Millisecond, func(context.Context) error {
		s.Cancel(second)
		return nil
	})
	require.NoError(t, err)
	second, err = s.Every("second", time.Millisecond, func(context.Context) error {
		secondRan = true
		return nil
	})
	require.NoError(t, err)

	s.Step(ctx)
	assert.False(t, secondRan)
}

func TestFailingTaskIsLoggedAndKeepsSchedule(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	s := New(time.Millisecond)
	ctx := context.Background()

	runs := 0
	_, err := s.Every("broken", time.Millisecond, func(context.Context) error {
		runs++
		return errors.New("substrate unavailable")
	})
	require.NoError(t, err)

	s.Step(ctx)
	s.Step(ctx)

	assert.Equal(t, 2, runs)
	assert.Contains(t, buf.String(), `"event_type":"task_failed"`)
	assert.Contains(t, buf.String(), "substrate unavailable")
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	s := New(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	ran := make(chan struct{}, 1)
	_, err := s.Every("signal", time.Millisecond, func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
