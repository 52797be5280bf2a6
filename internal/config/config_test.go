package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"SIGNAL_GRAPH_CONFIG", "SIGNAL_GRAPH_ROOT", "NOTE_SOURCE", "NOTE_EXTENSIONS",
	"HOST", "PORT", "CACHE_TTL_SECONDS", "PARALLEL_FILES", "WATCH",
	"WATCH_DEBOUNCE_MS", "STATIC_DIR", "DEBUG", "AWS_BUCKET", "AWS_PREFIX",
	"AWS_REGION", "AWS_ENDPOINT", "AWS_ACCESS_KEY", "AWS_SECRET_KEY",
}

// clearEnv isolates a test from the caller's environment and any .env file.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL())
	assert.Equal(t, 250*time.Millisecond, cfg.WatchDebounce())
	assert.Equal(t, ":18791", cfg.Addr())
}

func TestLoadLayering(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "signalgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
root: /vault
port: 9000
extensions: [".md", ".txt"]
parallel_files: 4
s3:
  bucket: from-file
`), 0o644))

	t.Setenv("SIGNAL_GRAPH_CONFIG", path)
	t.Setenv("PORT", "9100")
	t.Setenv("WATCH", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/vault", cfg.Root)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, []string{".md", ".txt"}, cfg.Extensions)
	assert.Equal(t, 4, cfg.ParallelFiles)
	assert.True(t, cfg.Watch)
	assert.Equal(t, "from-file", cfg.S3.Bucket)
	assert.Equal(t, 30, cfg.CacheTTLSeconds)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("SIGNAL_GRAPH_ROOT=/from-dotenv\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("SIGNAL_GRAPH_ROOT") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/from-dotenv", cfg.Root)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIGNAL_GRAPH_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.ErrorContains(t, err, "read config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"Defaults", func(*Config) {}, true},
		{"BadPort", func(c *Config) { c.Port = 0 }, false},
		{"BadSource", func(c *Config) { c.Source = "ftp" }, false},
		{"NoExtensions", func(c *Config) { c.Extensions = nil }, false},
		{"BlankExtension", func(c *Config) { c.Extensions = []string{""} }, false},
		{"NoParallelism", func(c *Config) { c.ParallelFiles = 0 }, false},
		{"S3WithoutBucket", func(c *Config) { c.Source = SourceS3 }, false},
		{"S3WithBucket", func(c *Config) { c.Source = SourceS3; c.S3.Bucket = "notes" }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := Validate(cfg)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
