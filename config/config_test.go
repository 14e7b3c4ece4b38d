package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadFile_Missing verifies a missing file yields the defaults
func TestLoadFile_Missing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

// TestLoadFile_Overrides verifies file values win over defaults
func TestLoadFile_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
database:
  path: /tmp/test.db
browser:
  pool_size: 2
cache:
  ttl: 30s
scrape:
  request_timeout: 1m
`), 0o644))

	cfg, err := LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
	assert.Equal(t, 2, cfg.Browser.PoolSize)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, time.Minute, cfg.Scrape.RequestTimeout)
}

// TestLoadFile_PartialBackfill verifies unset fields keep their defaults
func TestLoadFile_PartialBackfill(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":4000\"\n"), 0o644))

	cfg, err := LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, ":4000", cfg.Server.Addr)
	assert.Equal(t, Default().Database.Path, cfg.Database.Path)
	assert.Equal(t, Default().Browser.PoolSize, cfg.Browser.PoolSize)
	assert.Equal(t, Default().Cache.TTL, cfg.Cache.TTL)
}

// TestLoadFile_Malformed verifies broken YAML is an error, not silent
// defaults
func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := LoadFile(path)

	assert.Error(t, err)
}
