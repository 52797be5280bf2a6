package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/signalgraph/signalgraph/internal/util"

	"github.com/go-playground/validator"
	"gopkg.in/yaml.v3"
)

const (
	SourceFS = "fs"
	SourceS3 = "s3"
)

// Config holds every runtime setting of the server and CLI.
type Config struct {
	Root            string   `yaml:"root" validate:"required"`
	Source          string   `yaml:"source" validate:"oneof=fs s3"`
	Extensions      []string `yaml:"extensions" validate:"min=1,dive,required"`
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port" validate:"min=1,max=65535"`
	CacheTTLSeconds int      `yaml:"cache_ttl_seconds" validate:"min=0"`
	ParallelFiles   int      `yaml:"parallel_files" validate:"min=1,max=1024"`
	Watch           bool     `yaml:"watch"`
	WatchDebounceMS int      `yaml:"watch_debounce_ms" validate:"min=0"`
	StaticDir       string   `yaml:"static_dir"`
	Debug           bool     `yaml:"debug"`
	S3              S3Config `yaml:"s3"`
}

// S3Config locates notes in object storage. Only used with Source "s3".
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// CacheTTL is the lifetime of a cached graph.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// WatchDebounce is the quiet period before a change invalidates the cache.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMS) * time.Millisecond
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Root:            ".",
		Source:          SourceFS,
		Extensions:      []string{".md"},
		Port:            18791,
		CacheTTLSeconds: 30,
		ParallelFiles:   8,
		WatchDebounceMS: 250,
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// SIGNAL_GRAPH_CONFIG, and environment variables, in increasing precedence.
// A .env file in the working directory is loaded first.
func Load() (*Config, error) {
	util.LoadEnv()

	cfg := Default()
	if path := util.GetEnv("SIGNAL_GRAPH_CONFIG"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(file, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Root = util.GetEnvString("SIGNAL_GRAPH_ROOT", cfg.Root)
	cfg.Source = util.GetEnvString("NOTE_SOURCE", cfg.Source)
	cfg.Extensions = util.GetEnvList("NOTE_EXTENSIONS", cfg.Extensions)
	cfg.Host = util.GetEnvString("HOST", cfg.Host)
	cfg.Port = util.GetEnvInt("PORT", cfg.Port)
	cfg.CacheTTLSeconds = util.GetEnvInt("CACHE_TTL_SECONDS", cfg.CacheTTLSeconds)
	cfg.ParallelFiles = util.GetEnvInt("PARALLEL_FILES", cfg.ParallelFiles)
	cfg.Watch = util.GetEnvBool("WATCH", cfg.Watch)
	cfg.WatchDebounceMS = util.GetEnvInt("WATCH_DEBOUNCE_MS", cfg.WatchDebounceMS)
	cfg.StaticDir = util.GetEnvString("STATIC_DIR", cfg.StaticDir)
	cfg.Debug = util.GetEnvBool("DEBUG", cfg.Debug)

	cfg.S3.Bucket = util.GetEnvString("AWS_BUCKET", cfg.S3.Bucket)
	cfg.S3.Prefix = util.GetEnvString("AWS_PREFIX", cfg.S3.Prefix)
	cfg.S3.Region = util.GetEnvString("AWS_REGION", cfg.S3.Region)
	cfg.S3.Endpoint = util.GetEnvString("AWS_ENDPOINT", cfg.S3.Endpoint)
	cfg.S3.AccessKey = util.GetEnvString("AWS_ACCESS_KEY", cfg.S3.AccessKey)
	cfg.S3.SecretKey = util.GetEnvString("AWS_SECRET_KEY", cfg.S3.SecretKey)
}

// Validate checks field constraints and cross-field rules.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Source == SourceS3 && cfg.S3.Bucket == "" {
		return errors.New("invalid config: AWS_BUCKET is required when NOTE_SOURCE is s3")
	}
	return nil
}
