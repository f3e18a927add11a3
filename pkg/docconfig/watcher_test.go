package docconfig

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T, content string) (*Watcher, string) {
	t.Helper()
	path := writeTestDoc(t, t.TempDir(), "llms.yaml", content)
	store, err := NewFileStore(path)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w, err := NewWatcher(context.Background(), store, logger)
	require.NoError(t, err)
	return w, path
}

func TestNewWatcher_FailsOnInvalidFile(t *testing.T) {
	path := writeTestDoc(t, t.TempDir(), "llms.yaml", "title: [")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = NewWatcher(context.Background(), store, nil)
	assert.Error(t, err)
}

func TestWatcher_Reload(t *testing.T) {
	w, path := newTestWatcher(t, testDocYAML)
	first := w.Version()
	assert.Equal(t, "Bookstore API", w.Current().Title)
	assert.Equal(t, "Bookstore API", w.File().Title)

	changed, err := w.Reload(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(path, []byte("title: Renamed\nsummary: S\n"), 0o644))
	changed, err = w.Reload(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotEqual(t, first, w.Version())
	assert.Equal(t, "Renamed", w.Current().Title)
}

func TestWatcher_ReloadKeepsPreviousOnError(t *testing.T) {
	w, path := newTestWatcher(t, testDocYAML)
	version := w.Version()

	require.NoError(t, os.WriteFile(path, []byte("title: [broken"), 0o644))
	_, err := w.Reload(context.Background())
	require.Error(t, err)

	assert.Equal(t, version, w.Version())
	assert.Equal(t, "Bookstore API", w.Current().Title)
}

func TestWatcher_DropsInvalidLinks(t *testing.T) {
	w, _ := newTestWatcher(t, `title: T
summary: S
sections:
  Docs:
    - title: Good
      url: https://example.com/good
    - title: Bad
      url: not-a-url
`)
	project := w.Current()
	require.Len(t, project.Sections, 1)
	assert.Len(t, project.Sections[0].Links, 1)

	// The raw file still has both links.
	assert.Len(t, w.File().Sections[0].Links, 2)
}

func TestWatcher_CurrentReturnsCopy(t *testing.T) {
	w, _ := newTestWatcher(t, testDocYAML)

	project := w.Current()
	project.Notes[0] = "mutated"
	project.Sections[0].Links[0].Title = "mutated"

	again := w.Current()
	assert.Equal(t, "This API requires authentication for all write operations.", again.Notes[0])
	assert.Equal(t, "Python SDK", again.Sections[0].Links[0].Title)
}

func TestWatcher_RunPicksUpChanges(t *testing.T) {
	w, path := newTestWatcher(t, testDocYAML)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Rewrite until the watcher is registered and sees an event.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("title: Updated\nsummary: S\n"), 0o644)
		return w.Current().Title == "Updated"
	}, 5*time.Second, 50*time.Millisecond)

	// Replacing the file by rename is picked up as well.
	tmp := filepath.Join(filepath.Dir(path), "next.yaml")
	require.NoError(t, os.WriteFile(tmp, []byte("title: Renamed\nsummary: S\n"), 0o644))
	require.NoError(t, os.Rename(tmp, path))
	require.Eventually(t, func() bool {
		return w.Current().Title == "Renamed"
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
