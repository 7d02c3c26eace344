package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Search.MaxResults)
	assert.Equal(t, 10, cfg.Search.DefaultLimit)
	assert.Equal(t, "porter2", cfg.Index.Stemmer)
	assert.Equal(t, "collection", cfg.Index.Collection)
	assert.False(t, cfg.Kafka.Enabled)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
index:
  dataDir: /var/lib/tfidf
  collection: nyt199501
  stemmer: suffix
search:
  maxResults: 20
  defaultLimit: 5
  timeout: 2s
`)
	require.NoError(t, os.WriteFile(path, data, 0644))
	t.Setenv("TS_INDEX_COLLECTION", "override")
	t.Setenv("TS_REDIS_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/tfidf", cfg.Index.DataDir)
	assert.Equal(t, "override", cfg.Index.Collection)
	assert.Equal(t, "suffix", cfg.Index.Stemmer)
	assert.Equal(t, 20, cfg.Search.MaxResults)
	assert.Equal(t, 5, cfg.Search.DefaultLimit)
	assert.Equal(t, 2*time.Second, cfg.Search.Timeout)
	assert.True(t, cfg.Redis.Enabled)
	// untouched sections keep their defaults
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown stemmer", "index:\n  stemmer: lancaster\n"},
		{"zero max results", "search:\n  maxResults: 0\n"},
		{"limit above max", "search:\n  maxResults: 10\n  defaultLimit: 11\n"},
		{"negative scan cap", "search:\n  maxScanDocs: -1\n"},
		{"negative rate limit", "server:\n  rateLimit: -5\n"},
		{"empty collection", "index:\n  collection: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
