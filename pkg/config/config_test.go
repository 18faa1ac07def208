package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "rutavial.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	c, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.NoError(t, c.Validate())

	region := c.Region()
	assert.Equal(t, DefaultCenterLat, region.CenterLat)
	assert.Equal(t, DefaultCenterLon, region.CenterLon)
	assert.Equal(t, 15000.0, region.RadiusMeters)
	assert.Equal(t, 2000.0, c.Routing.MaxSnapDistanceM)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
[server]
listen_addr = ":8080"
request_timeout = "250ms"

[graph]
pbf_file = "mexico.osm.pbf"
radius_m = 5000

[routing]
strict_edges = true
engine = "naive"

[kv]
backend = "pebble"

[logging]
logfile = "/var/log/rutavial.log"
max_log_size = 10
max_log_age = 7
`)

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Server.ListenAddr)
	assert.Equal(t, 250*time.Millisecond, c.Server.RequestTimeout.Duration)
	assert.Equal(t, "mexico.osm.pbf", c.Graph.PbfFile)
	assert.Equal(t, 5000.0, c.Graph.RadiusM)
	assert.Equal(t, DefaultCenterLat, c.Graph.CenterLat)
	assert.True(t, c.Routing.StrictEdges)
	assert.Equal(t, EngineNaive, c.Routing.Engine)
	assert.Equal(t, "pebble", c.KV.Backend)
	assert.Equal(t, "./rutavial_db", c.KV.Path)
	assert.Equal(t, "/var/log/rutavial.log", c.Logging.Logfile)
	assert.Equal(t, 10, c.Logging.MaxSize)
	assert.Equal(t, 7, c.Logging.MaxAge)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad engine", "[routing]\nengine = \"astar\"\n"},
		{"zero radius", "[graph]\nradius_m = 0\n"},
		{"bad center", "[graph]\ncenter_lat = 120.0\n"},
		{"bad backend", "[kv]\nbackend = \"bolt\"\n"},
		{"unknown key", "[graph]\nradius = 10\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := LoadConfig(writeConfig(t, "[server]\nrequest_timeout = \"soon\"\n"))
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestExampleConfigIsValid(t *testing.T) {
	c, err := LoadConfig(filepath.Join("..", "..", "config.example.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Graph.CenterLat, c.Graph.CenterLat)
	assert.Equal(t, 10*time.Second, c.Server.RequestTimeout.Duration)
	assert.Equal(t, "info", c.Logging.Level)
}
