package site

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func startWatcher(t *testing.T, dirs ...string) (*atomic.Int32, func() error) {
	t.Helper()
	var rebuilds atomic.Int32
	w := &Watcher{
		Dirs:     dirs,
		Debounce: 20 * time.Millisecond,
		Logger:   zaptest.NewLogger(t),
		Rebuild:  func() { rebuilds.Add(1) },
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	var (
		once    sync.Once
		stopErr error
	)
	stop := func() error {
		once.Do(func() {
			cancel()
			select {
			case stopErr = <-done:
			case <-time.After(5 * time.Second):
				t.Error("watcher did not stop")
			}
		})
		return stopErr
	}
	t.Cleanup(func() { _ = stop() })
	return &rebuilds, stop
}

func TestWatchRebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	rebuilds, stop := startWatcher(t, dir, filepath.Join(dir, "missing"))

	// The watcher registers asynchronously, so keep touching the file.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(dir, "a.md"), []byte(time.Now().String()), 0o644)
		return rebuilds.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	assert.NoError(t, stop())
}

func TestWatchFollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()
	rebuilds, _ := startWatcher(t, dir)

	sub := filepath.Join(dir, "blog", "2024")
	require.Eventually(t, func() bool {
		_ = os.MkdirAll(sub, 0o755)
		return rebuilds.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	before := rebuilds.Load()
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(sub, "post.md"), []byte(time.Now().String()), 0o644)
		return rebuilds.Load() > before
	}, 5*time.Second, 50*time.Millisecond)
}

func TestWatchDebounces(t *testing.T) {
	dir := t.TempDir()
	var rebuilds atomic.Int32
	w := &Watcher{
		Dirs:     []string{dir},
		Debounce: time.Hour,
		Logger:   zaptest.NewLogger(t),
		Rebuild:  func() { rebuilds.Add(1) },
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte{byte(i)}, 0o644))
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	require.NoError(t, <-done)
	// Pending rebuilds are dropped on shutdown.
	assert.Zero(t, rebuilds.Load())
}
