package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/desertthunder/invsync/internal/models"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Every field can be overridden with an INVSYNC_* environment variable, see [Config.ApplyEnv].
type Config struct {
	Instance InstanceConfig `toml:"instance" envPrefix:"INSTANCE_"`
	Source   SourceConfig   `toml:"source" envPrefix:"SOURCE_"`
	Snapshot SnapshotConfig `toml:"snapshot" envPrefix:"SNAPSHOT_"`
	Sync     SyncConfig     `toml:"sync" envPrefix:"SYNC_"`
	Retry    RetryConfig    `toml:"retry" envPrefix:"RETRY_"`
	Client   ClientConfig   `toml:"client" envPrefix:"CLIENT_"`
	Database DatabaseConfig `toml:"database" envPrefix:"DATABASE_"`
	Logging  LoggingConfig  `toml:"logging" envPrefix:"LOG_"`
	Tracing  TracingConfig  `toml:"tracing" envPrefix:"TRACING_"`
	Hooks    []HookConfig   `toml:"hooks"`
}

// InstanceConfig identifies the Invidious instance and the API token.
type InstanceConfig struct {
	URL      string `toml:"url" env:"URL"`
	Insecure bool   `toml:"insecure" env:"INSECURE"`
	Token    string `toml:"token" env:"TOKEN"`
}

// SourceConfig points at the FreeTube data directory.
type SourceConfig struct {
	Directory string `toml:"directory" env:"DIRECTORY"`
}

// SnapshotConfig locates the last-synced state file.
type SnapshotConfig struct {
	Path string `toml:"path" env:"PATH"`
}

// SyncConfig holds the default behavior of the sync command.
type SyncConfig struct {
	SkipHistory       bool   `toml:"skip_history" env:"SKIP_HISTORY"`
	SkipSubscriptions bool   `toml:"skip_subscriptions" env:"SKIP_SUBSCRIPTIONS"`
	SkipPlaylists     bool   `toml:"skip_playlists" env:"SKIP_PLAYLISTS"`
	DryRun            bool   `toml:"dry_run" env:"DRY_RUN"`
	NoSync            bool   `toml:"no_sync" env:"NO_SYNC"`
	ExportPath        string `toml:"export_path" env:"EXPORT_PATH"`
}

// RetryConfig bounds re-attempts of transient remote failures.
type RetryConfig struct {
	MaxAttempts    int           `toml:"max_attempts" env:"MAX_ATTEMPTS"`
	InitialBackoff time.Duration `toml:"initial_backoff" env:"INITIAL_BACKOFF"`
	MaxBackoff     time.Duration `toml:"max_backoff" env:"MAX_BACKOFF"`
}

// ClientConfig tunes the HTTP client used against the instance.
type ClientConfig struct {
	Timeout   time.Duration `toml:"timeout" env:"TIMEOUT"`
	RateLimit float64       `toml:"rate_limit" env:"RATE_LIMIT"` // requests per second, 0 disables pacing
	UserAgent string        `toml:"user_agent" env:"USER_AGENT"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" env:"PATH"`
	MaxOpenConns int    `toml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
}

// LoggingConfig sets the log level (debug, info, warn, error).
type LoggingConfig struct {
	Level string `toml:"level" env:"LEVEL"`
}

// TracingConfig selects the span exporter.
type TracingConfig struct {
	Enabled    bool    `toml:"enabled" env:"ENABLED"`
	Exporter   string  `toml:"exporter" env:"EXPORTER"` // none, stdout or otlp
	Endpoint   string  `toml:"endpoint" env:"ENDPOINT"`
	SampleRate float64 `toml:"sample_rate" env:"SAMPLE_RATE"`
}

// HookConfig declares an external command run at lifecycle points.
type HookConfig struct {
	Name    string        `toml:"name"`
	Command []string      `toml:"command"`
	Points  []string      `toml:"points"`
	Timeout time.Duration `toml:"timeout"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the defaults of the embedded example config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, exampleConf, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays INVSYNC_* environment variables onto the config.
// A .env file in the working directory is loaded first when present; variables already set win.
func (c *Config) ApplyEnv() error {
	_ = godotenv.Load()

	if err := env.ParseWithOptions(c, env.Options{Prefix: "INVSYNC_"}); err != nil {
		return fmt.Errorf("%w: parsing environment: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Resolve expands "~" in every path and fills the derived defaults. Call it once after loading.
func (c *Config) Resolve() error {
	var err error
	for _, p := range []*string{&c.Source.Directory, &c.Snapshot.Path, &c.Database.Path, &c.Sync.ExportPath} {
		if *p, err = ExpandPath(*p); err != nil {
			return err
		}
	}
	if c.Snapshot.Path == "" {
		return fmt.Errorf("%w: snapshot.path is required", ErrInvalidConfig)
	}
	if c.Retry.MaxAttempts < 1 {
		c.Retry.MaxAttempts = 1
	}
	return nil
}

// Validate checks the settings a run in mode needs. The instance is only required when the
// run talks to it.
func (c *Config) Validate(mode models.Mode) error {
	if c.Source.Directory == "" {
		return fmt.Errorf("%w: source.directory is required", ErrInvalidConfig)
	}
	if mode == models.ModeSync {
		if c.Instance.URL == "" {
			return fmt.Errorf("%w: instance.url is required", ErrInvalidConfig)
		}
		if strings.Contains(c.Instance.URL, "://") {
			return fmt.Errorf("%w: instance.url must be a host without scheme, set instance.insecure for http", ErrInvalidConfig)
		}
	}
	switch strings.ToLower(c.Tracing.Exporter) {
	case "", "none", "stdout", "otlp":
	default:
		return fmt.Errorf("%w: unknown tracing exporter %q", ErrInvalidConfig, c.Tracing.Exporter)
	}
	return nil
}

// RunConfig derives the immutable per-run input. Token presence is checked by the engine.
func (c *Config) RunConfig() models.RunConfig {
	return models.RunConfig{
		Token:             c.Instance.Token,
		InstanceURL:       c.Instance.URL,
		Insecure:          c.Instance.Insecure,
		SkipHistory:       c.Sync.SkipHistory,
		SkipSubscriptions: c.Sync.SkipSubscriptions,
		SkipPlaylists:     c.Sync.SkipPlaylists,
		DryRun:            c.Sync.DryRun,
		NoSync:            c.Sync.NoSync,
	}
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
