package persistence

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantonx/amalgam/internal/amalgamation"
	amerrors "github.com/mantonx/amalgam/internal/errors"
	"github.com/mantonx/amalgam/internal/sources"
)

func newTestRegistry(t *testing.T) *sources.Registry {
	t.Helper()
	r := sources.NewRegistry()
	require.NoError(t, sources.RegisterBuiltins(r))
	for _, id := range []string{"A", "B"} {
		typeID := id
		require.NoError(t, r.Register(typeID, func() (sources.Source, error) {
			return sources.NewBasic(typeID, typeID), nil
		}))
	}
	return r
}

func resolveAll(t *testing.T, r *sources.Registry, entries ...amalgamation.Entry) *amalgamation.Ordering {
	t.Helper()
	od := &OrderingDocument{Order: entries}
	o, err := od.Resolve(r)
	require.NoError(t, err)
	return o
}

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := SettingsPath(t.TempDir())
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func assertSamePreferences(t *testing.T, want, got *amalgamation.Preferences) {
	t.Helper()
	require.NotNil(t, got)
	require.Equal(t, want.Groups(), got.Groups())
	for _, group := range want.Groups() {
		wg, _ := want.Get(group)
		gg, _ := got.Get(group)
		assert.Equal(t, wg.Overall().Entries(), gg.Overall().Entries(), "overall of %s", group)
		assert.Equal(t, wg.OverrideFields(), gg.OverrideFields(), "override keys of %s", group)
		for _, field := range wg.OverrideFields() {
			wo, _ := wg.Override(field)
			goo, ok := gg.Override(field)
			require.True(t, ok)
			assert.Equal(t, wo.Entries(), goo.Entries(), "override %s.%s", group, field)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	r := newTestRegistry(t)

	prefs := amalgamation.NewPreferences()
	movie := amalgamation.NewGroupPreference(amalgamation.MovieGroup, resolveAll(t, r,
		amalgamation.Entry{TypeID: "tmdb"},
		amalgamation.Entry{TypeID: "filename", Disabled: true},
		amalgamation.Entry{TypeID: "default"},
	))
	require.NoError(t, movie.SetOverride("plot", resolveAll(t, r, amalgamation.Entry{TypeID: "embedded"})))
	require.NoError(t, movie.SetOverride("title", resolveAll(t, r,
		amalgamation.Entry{TypeID: "filename"}, amalgamation.Entry{TypeID: "tmdb"})))
	prefs.Put(movie)
	prefs.Put(amalgamation.NewGroupPreference(amalgamation.MusicGroup, resolveAll(t, r,
		amalgamation.Entry{TypeID: "musicbrainz"}, amalgamation.Entry{TypeID: "audiodb", Disabled: true})))

	path := SettingsPath(t.TempDir())
	require.NoError(t, Save(prefs, path))

	loaded, err := Load(path, r)
	require.NoError(t, err)
	assertSamePreferences(t, prefs, loaded)

	// A second cycle writes the same bytes.
	first, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, Save(loaded, path))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestLoadProducesFreshInstances(t *testing.T) {
	r := newTestRegistry(t)
	prefs := amalgamation.NewPreferences()
	overall := resolveAll(t, r, amalgamation.Entry{TypeID: "tmdb"})
	prefs.Put(amalgamation.NewGroupPreference(amalgamation.MovieGroup, overall))

	path := SettingsPath(t.TempDir())
	require.NoError(t, Save(prefs, path))
	loaded, err := Load(path, r)
	require.NoError(t, err)

	gp, _ := loaded.Get(amalgamation.MovieGroup)
	assert.NotSame(t, overall.Sources()[0], gp.Overall().Sources()[0])
}

func TestDisabledFlagPreserved(t *testing.T) {
	r := newTestRegistry(t)
	path := writeSettings(t, `{
  "MOVIE_SCRAPER_GROUP": {
    "scraperGroupName": "MOVIE_SCRAPER_GROUP",
    "overallOrdering": {"order": [{"className": "A", "disabled": true}, {"className": "B", "disabled": false}]}
  }
}`)

	prefs, err := Load(path, r)
	require.NoError(t, err)
	gp, ok := prefs.Get(amalgamation.MovieGroup)
	require.True(t, ok)
	want := []amalgamation.Entry{{TypeID: "A", Disabled: true}, {TypeID: "B", Disabled: false}}
	assert.Equal(t, want, gp.Overall().Entries())

	out := SettingsPath(t.TempDir())
	require.NoError(t, Save(prefs, out))
	again, err := Load(out, r)
	require.NoError(t, err)
	gp, _ = again.Get(amalgamation.MovieGroup)
	assert.Equal(t, want, gp.Overall().Entries())
}

func TestFallbackOnEmptyOrAbsentOrder(t *testing.T) {
	r := newTestRegistry(t)
	path := writeSettings(t, `{
  "MOVIE_SCRAPER_GROUP": {
    "scraperGroupName": "MOVIE_SCRAPER_GROUP",
    "overallOrdering": {"order": []},
    "customOrderings": {
      "plot": {},
      "title": {"order": null},
      "year": {"order": [{"className": "tmdb", "disabled": false}]}
    }
  },
  "TV_SCRAPER_GROUP": {
    "scraperGroupName": "TV_SCRAPER_GROUP"
  }
}`)

	prefs, err := Load(path, r)
	require.NoError(t, err)

	fallback := []amalgamation.Entry{{TypeID: sources.DefaultTypeID, Disabled: false}}

	movie, _ := prefs.Get(amalgamation.MovieGroup)
	assert.Equal(t, fallback, movie.Overall().Entries())
	for _, field := range []string{"plot", "title"} {
		o, ok := movie.Override(field)
		require.True(t, ok, field)
		assert.Equal(t, fallback, o.Entries(), field)
	}
	year, _ := movie.Override("year")
	assert.Equal(t, []string{"tmdb"}, year.TypeIDs())

	tv, ok := prefs.Get(amalgamation.TVGroup)
	require.True(t, ok)
	assert.Equal(t, fallback, tv.Overall().Entries())
	assert.Empty(t, tv.OverrideFields())
}

func TestEmptyInMemoryOrderingLoadsAsFallback(t *testing.T) {
	r := newTestRegistry(t)
	prefs := amalgamation.NewPreferences()
	gp := amalgamation.NewGroupPreference(amalgamation.MovieGroup, amalgamation.NewOrdering())
	prefs.Put(gp)

	path := SettingsPath(t.TempDir())
	require.NoError(t, Save(prefs, path))

	loaded, err := Load(path, r)
	require.NoError(t, err)
	got, _ := loaded.Get(amalgamation.MovieGroup)
	assert.Equal(t, []string{sources.DefaultTypeID}, got.Overall().TypeIDs())
}

func TestAbsentDocument(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{name: "missing file", path: func(t *testing.T) string { return SettingsPath(t.TempDir()) }},
		{name: "empty object", path: func(t *testing.T) string { return writeSettings(t, "{}") }},
		{name: "null", path: func(t *testing.T) string { return writeSettings(t, "null\n") }},
		{name: "empty file", path: func(t *testing.T) string { return writeSettings(t, "") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs, err := Load(tt.path(t), r)
			assert.NoError(t, err)
			assert.Nil(t, prefs)
		})
	}
}

func TestUnknownGroupIsFatal(t *testing.T) {
	r := newTestRegistry(t)
	path := writeSettings(t, `{
  "MOVIE_SCRAPER_GROUP": {"overallOrdering": {"order": [{"className": "tmdb", "disabled": false}]}},
  "ANIME_SCRAPER_GROUP": {"overallOrdering": {"order": [{"className": "tmdb", "disabled": false}]}}
}`)

	prefs, err := Load(path, r)
	assert.Nil(t, prefs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, amerrors.ErrCorruptDocument))
	assert.True(t, errors.Is(err, amerrors.ErrUnknownGroup))
}

func TestNullGroupIsFatal(t *testing.T) {
	r := newTestRegistry(t)
	path := writeSettings(t, `{"MOVIE_SCRAPER_GROUP": null}`)

	prefs, err := Load(path, r)
	assert.Nil(t, prefs)
	assert.True(t, errors.Is(err, amerrors.ErrCorruptDocument))
}

func TestUnknownFieldOverrideIsDropped(t *testing.T) {
	r := newTestRegistry(t)
	path := writeSettings(t, `{
  "MOVIE_SCRAPER_GROUP": {
    "scraperGroupName": "MOVIE_SCRAPER_GROUP",
    "overallOrdering": {"order": [{"className": "tmdb", "disabled": false}, {"className": "filename", "disabled": true}]},
    "customOrderings": {
      "plot": {"order": [{"className": "embedded", "disabled": false}]},
      "coverUrl": {"order": [{"className": "tmdb", "disabled": false}]}
    }
  }
}`)

	prefs, err := Load(path, r)
	require.NoError(t, err)

	gp, ok := prefs.Get(amalgamation.MovieGroup)
	require.True(t, ok)
	assert.Equal(t, []string{"plot"}, gp.OverrideFields())
	assert.Equal(t, []amalgamation.Entry{
		{TypeID: "tmdb", Disabled: false},
		{TypeID: "filename", Disabled: true},
	}, gp.Overall().Entries())
	plot, _ := gp.Override("plot")
	assert.Equal(t, []string{"embedded"}, plot.TypeIDs())
}

func TestUnresolvableIdentifierIsFatal(t *testing.T) {
	r := newTestRegistry(t)
	path := writeSettings(t, `{
  "MOVIE_SCRAPER_GROUP": {"overallOrdering": {"order": [{"className": "tmdb", "disabled": false}]}},
  "MUSIC_SCRAPER_GROUP": {
    "overallOrdering": {"order": [{"className": "musicbrainz", "disabled": false}]},
    "customOrderings": {"title": {"order": [{"className": "moviescraper.LegacyScraper", "disabled": false}]}}
  }
}`)

	prefs, err := Load(path, r)
	assert.Nil(t, prefs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, amerrors.ErrCorruptDocument))
	assert.True(t, errors.Is(err, amerrors.ErrUnresolvableIdentifier))
	assert.Contains(t, err.Error(), "moviescraper.LegacyScraper")
}

func TestMalformedJSONIsCorrupt(t *testing.T) {
	r := newTestRegistry(t)
	for _, content := range []string{`{"MOVIE_SCRAPER_GROUP": `, `[1, 2]`, `{"MOVIE_SCRAPER_GROUP": {"overallOrdering": {"order": [{"className": "tmdb", "disabled": "yes"}]}}}`} {
		path := writeSettings(t, content)
		prefs, err := Load(path, r)
		assert.Nil(t, prefs)
		assert.True(t, errors.Is(err, amerrors.ErrCorruptDocument), content)
	}
}

func TestLoadPropagatesIOErrors(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	r := newTestRegistry(t)
	path := writeSettings(t, `{}`)
	require.NoError(t, os.Chmod(path, 0000))

	prefs, err := Load(path, r)
	assert.Nil(t, prefs)
	require.Error(t, err)
	assert.False(t, errors.Is(err, amerrors.ErrCorruptDocument))
	assert.True(t, errors.Is(err, os.ErrPermission))
}

func TestSaveDocumentShape(t *testing.T) {
	r := newTestRegistry(t)
	prefs := amalgamation.NewPreferences()
	prefs.Put(amalgamation.NewGroupPreference(amalgamation.TVGroup, resolveAll(t, r, amalgamation.Entry{TypeID: "tmdb"})))

	path := filepath.Join(t.TempDir(), "nested", SettingsFileName)
	require.NoError(t, Save(prefs, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	group, ok := raw["TV_SCRAPER_GROUP"]
	require.True(t, ok)
	assert.Equal(t, "TV_SCRAPER_GROUP", group["scraperGroupName"])
	_, hasCustom := group["customOrderings"]
	assert.False(t, hasCustom, "customOrderings is omitted when there are no overrides")
	assert.Contains(t, string(data), "\n  \"TV_SCRAPER_GROUP\": {\n", "document is pretty-printed")
	assert.Contains(t, string(data), `"className": "tmdb"`)
}

func TestSaveTruncatesPreviousContent(t *testing.T) {
	r := newTestRegistry(t)
	path := writeSettings(t, `{"MOVIE_SCRAPER_GROUP": {"overallOrdering": {"order": [{"className": "tmdb", "disabled": false}, {"className": "filename", "disabled": false}, {"className": "embedded", "disabled": false}]}}}`)

	require.NoError(t, Save(amalgamation.NewPreferences(), path))

	prefs, err := Load(path, r)
	require.NoError(t, err)
	assert.Nil(t, prefs)
}

func TestFileStore(t *testing.T) {
	r := newTestRegistry(t)
	store := NewFileStore(SettingsPath(t.TempDir()), r)

	prefs, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, prefs)

	prefs = amalgamation.NewPreferences()
	prefs.GetOrCreate(amalgamation.DefaultGroup)
	require.NoError(t, store.Save(prefs))

	loaded, err := store.Load()
	require.NoError(t, err)
	assertSamePreferences(t, prefs, loaded)
}
