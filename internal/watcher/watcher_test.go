package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/sitepress/internal/logging"
)

func TestNewAppliesDefaultDebounce(t *testing.T) {
	pw := New(0, logging.Discard())
	assert.Equal(t, DefaultDebounce, pw.debounce)

	pw = New(250*time.Millisecond, logging.Discard())
	assert.Equal(t, 250*time.Millisecond, pw.debounce)
}

func TestWaitForChangeReturnsChangedPath(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "style.css")
	require.NoError(t, os.WriteFile(watched, []byte("body{}"), 0o644))

	pw := New(10*time.Millisecond, logging.Discard())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type result struct {
		path string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		path, err := pw.WaitForChange(ctx, []string{watched})
		done <- result{path, err}
	}()

	// Keep touching the file until the subscription sees it.
	deadline := time.Now().Add(4 * time.Second)
	for {
		select {
		case r := <-done:
			require.NoError(t, r.err)
			assert.Equal(t, watched, r.path)
			return
		default:
		}
		if time.Now().After(deadline) {
			t.Fatal("no change detected")
		}
		require.NoError(t, os.WriteFile(watched, []byte("body{color:red}"), 0o644))
		time.Sleep(20 * time.Millisecond)
	}
}

func TestWaitForChangeIgnoresUnwatchedFiles(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "watched.css")
	other := filepath.Join(dir, "other.css")
	require.NoError(t, os.WriteFile(watched, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(other, []byte("b"), 0o644))

	pw := New(10*time.Millisecond, logging.Discard())

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := pw.WaitForChange(ctx, []string{watched})
		done <- err
	}()

	// Changes to a sibling file in the same directory must not wake the
	// watcher; only context expiry ends the wait.
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(other, []byte("changed"), 0o644))
		time.Sleep(20 * time.Millisecond)
	}

	err := <-done
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitForChangeWaitsOutDebounce(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "style.css")
	require.NoError(t, os.WriteFile(watched, []byte("a"), 0o644))

	debounce := 150 * time.Millisecond
	pw := New(debounce, logging.Discard())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := pw.WaitForChange(ctx, []string{watched})
		done <- err
	}()

	// Give the subscription time to establish so the write below is the
	// first observed event.
	time.Sleep(200 * time.Millisecond)

	start := time.Now()
	require.NoError(t, os.WriteFile(watched, []byte("b"), 0o644))

	require.NoError(t, <-done)
	assert.GreaterOrEqual(t, time.Since(start), debounce)
}

func TestBurstOfWritesWakesOnce(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "app.ts")
	require.NoError(t, os.WriteFile(watched, []byte("a"), 0o644))

	pw := New(100*time.Millisecond, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wakeups atomic.Int32
	go func() {
		for {
			if _, err := pw.WaitForChange(ctx, []string{watched}); err != nil {
				return
			}
			wakeups.Add(1)
		}
	}()

	time.Sleep(200 * time.Millisecond)

	// The whole burst lands inside one debounce window: the first write
	// wakes the watcher, the rest arrive while the subscription is already
	// closed and are dropped.
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(watched, []byte(fmt.Sprintf("v%d", i)), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	deadline := time.Now().Add(2 * time.Second)
	for wakeups.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	require.EqualValues(t, 1, wakeups.Load())

	// Nothing from the burst may wake the next subscription.
	time.Sleep(300 * time.Millisecond)
	assert.EqualValues(t, 1, wakeups.Load())
}

func TestWaitForChangeCancellation(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "style.css")
	require.NoError(t, os.WriteFile(watched, []byte("a"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	pw := New(10*time.Millisecond, logging.Discard())

	done := make(chan error, 1)
	go func() {
		_, err := pw.WaitForChange(ctx, []string{watched})
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForChange did not return on cancellation")
	}
}
