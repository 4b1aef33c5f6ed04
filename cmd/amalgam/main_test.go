package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantonx/amalgam/internal/config"
	"github.com/mantonx/amalgam/internal/sources"
)

type httpClientSource interface {
	HTTPClient() *http.Client
}

func TestRemoteSourcesSendJarCookies(t *testing.T) {
	received := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r.Header.Get("Cookie")
	}))
	defer srv.Close()

	jarPath := filepath.Join(t.TempDir(), "cookies.txt")
	require.NoError(t, os.WriteFile(jarPath, []byte("# Netscape HTTP Cookie File\n"+
		"127.0.0.1\tFALSE\t/\tFALSE\t0\tsession\tabc123\n"), 0644))

	cfg := config.DefaultConfig()
	cfg.Scraper.CookieJar = jarPath

	registry, err := newRegistry(cfg)
	require.NoError(t, err)

	src, err := registry.Resolve(sources.TMDBTypeID)
	require.NoError(t, err)
	remote, ok := src.(httpClientSource)
	require.True(t, ok)

	resp, err := remote.HTTPClient().Get(srv.URL + "/3/movie/550")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "session=abc123", <-received)
}

func TestNewRegistryWithoutJar(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scraper.CookieJar = ""

	registry, err := newRegistry(cfg)
	require.NoError(t, err)

	src, err := registry.Resolve(sources.MusicBrainzTypeID)
	require.NoError(t, err)
	assert.Nil(t, src.(httpClientSource).HTTPClient().Jar)
}

func TestLoadCookiesMissingFile(t *testing.T) {
	jar, err := loadCookies(filepath.Join(t.TempDir(), "absent.txt"))
	require.NoError(t, err)
	require.NotNil(t, jar)

	jar, err = loadCookies("")
	require.NoError(t, err)
	assert.Nil(t, jar)
}
