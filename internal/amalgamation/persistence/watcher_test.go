package persistence

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantonx/amalgam/internal/amalgamation"
)

type changeRecorder struct {
	mu    sync.Mutex
	prefs []*amalgamation.Preferences
	errs  []error
}

func (c *changeRecorder) record(prefs *amalgamation.Preferences, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prefs = append(c.prefs, prefs)
	c.errs = append(c.errs, err)
}

func (c *changeRecorder) last() (*amalgamation.Preferences, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.prefs) == 0 {
		return nil, 0, nil
	}
	return c.prefs[len(c.prefs)-1], len(c.prefs), c.errs[len(c.errs)-1]
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	r := newTestRegistry(t)
	dir := t.TempDir()
	store := NewFileStore(SettingsPath(dir), r)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &changeRecorder{}
	require.NoError(t, NewWatcher(store).Start(ctx, rec.record))

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(dir+"/other.json", []byte("{}"), 0644))

	require.NoError(t, os.WriteFile(store.Path(), []byte(`{
  "TV_SCRAPER_GROUP": {"overallOrdering": {"order": [{"className": "tmdb", "disabled": false}]}}
}`), 0644))

	require.Eventually(t, func() bool {
		prefs, _, err := rec.last()
		if err != nil || prefs == nil {
			return false
		}
		gp, ok := prefs.Get(amalgamation.TVGroup)
		return ok && gp.Overall().TypeIDs()[0] == "tmdb"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcherReportsCorruptFile(t *testing.T) {
	r := newTestRegistry(t)
	store := NewFileStore(SettingsPath(t.TempDir()), r)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &changeRecorder{}
	require.NoError(t, NewWatcher(store).Start(ctx, rec.record))
	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"BOOK_SCRAPER_GROUP": {}}`), 0644))

	require.Eventually(t, func() bool {
		_, n, err := rec.last()
		return n > 0 && err != nil
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcherMissingDirectory(t *testing.T) {
	store := NewFileStore(SettingsPath(t.TempDir()+"/missing"), newTestRegistry(t))
	err := NewWatcher(store).Start(context.Background(), func(*amalgamation.Preferences, error) {})
	assert.Error(t, err)
}
