package fetcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthTracker(t *testing.T) {
	const feed = "https://news.example.com/rss"

	t.Run("disables after threshold failures", func(t *testing.T) {
		tr := NewHealthTracker(filepath.Join(t.TempDir(), "health.json"), 3)
		require.True(t, tr.Enabled(feed))

		boom := errors.New("boom")
		tr.RecordFailure(feed, boom)
		tr.RecordFailure(feed, boom)
		assert.True(t, tr.Enabled(feed))

		tr.RecordFailure(feed, boom)
		assert.False(t, tr.Enabled(feed))
	})

	t.Run("success resets streak and re-enables", func(t *testing.T) {
		tr := NewHealthTracker(filepath.Join(t.TempDir(), "health.json"), 2)
		boom := errors.New("boom")
		tr.RecordFailure(feed, boom)
		tr.RecordFailure(feed, boom)
		require.False(t, tr.Enabled(feed))

		tr.RecordSuccess(feed)
		assert.True(t, tr.Enabled(feed))
	})

	t.Run("state persists across instances", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "health.json")
		tr := NewHealthTracker(path, 1)
		tr.RecordFailure(feed, errors.New("boom"))
		require.NoError(t, tr.Save())

		reloaded := NewHealthTracker(path, 1)
		assert.False(t, reloaded.Enabled(feed))
	})

	t.Run("corrupt state file starts fresh", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "health.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		tr := NewHealthTracker(path, 3)
		assert.True(t, tr.Enabled(feed))
	})
}
