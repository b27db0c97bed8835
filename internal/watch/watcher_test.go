package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{OnChange: func(context.Context) error { return nil }})
	assert.Error(t, err)

	_, err = New(Config{Path: "tasks.json"})
	assert.Error(t, err)
}

func TestWatcher_FiresOncePerBurst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tasks":[]}`), 0o644))

	calls := make(chan struct{}, 10)
	w, err := New(Config{
		Path:   path,
		Delay:  50 * time.Millisecond,
		Logger: quietLogger(),
		OnChange: func(context.Context) error {
			calls <- struct{}{}
			return nil
		},
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks.json.checksum"), []byte("abc"), 0o644))

	for i := range 3 {
		require.NoError(t, os.WriteFile(path, []byte(`{"tasks":[],"n":`+string(rune('0'+i))+`}`), 0o644))
	}

	select {
	case <-calls:
	case <-time.After(3 * time.Second):
		t.Fatal("OnChange was not called")
	}

	select {
	case <-calls:
		t.Fatal("OnChange called more than once for one burst")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_SkipsIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	content := []byte(`{"tasks":[]}`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	var calls atomic.Int32
	w, err := New(Config{
		Path:   path,
		Delay:  20 * time.Millisecond,
		Logger: quietLogger(),
		OnChange: func(context.Context) error {
			calls.Add(1)
			return nil
		},
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	// Rewrite atomically the way the file store does.
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, content, 0o644))
	require.NoError(t, os.Rename(tmp, path))
	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestDebouncer(t *testing.T) {
	var n atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func() { n.Add(1) })

	for range 5 {
		d.Trigger()
	}
	assert.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, 10*time.Millisecond)

	d.Stop()
	d.Trigger()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), n.Load())
}

func TestContentHashTracker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	tracker := NewContentHashTracker()

	assert.True(t, tracker.HasChanged(path), "unreadable files count as changed")

	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))
	assert.True(t, tracker.HasChanged(path))
	assert.False(t, tracker.HasChanged(path))

	require.NoError(t, os.WriteFile(path, []byte("b"), 0o644))
	assert.True(t, tracker.HasChanged(path))

	tracker.Remove(path)
	assert.True(t, tracker.HasChanged(path))
}
