package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureJSON(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { Configure(Options{}) })

	Info("preferences loaded", "groups", 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "preferences loaded", entry["@message"])
	assert.Equal(t, "info", entry["@level"])
	assert.Equal(t, float64(2), entry["groups"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Level: "warn", Output: &buf})
	t.Cleanup(func() { Configure(Options{}) })

	Debug("hidden")
	Info("hidden too")
	Warn("shown", "field", "plot")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "field=plot")
}

func TestNamed(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Output: &buf})
	t.Cleanup(func() { Configure(Options{}) })

	Named("persistence").Info("saved")

	assert.True(t, strings.Contains(buf.String(), "amalgam.persistence"))
}
