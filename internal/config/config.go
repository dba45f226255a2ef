package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Admin    AdminConfig    `toml:"admin"`
	Import   ImportConfig   `toml:"import"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// AuthConfig holds token signing and password hashing settings.
type AuthConfig struct {
	TokenSecret     string `toml:"token_secret"`
	TokenTTLMinutes int    `toml:"token_ttl_minutes"`
	BcryptCost      int    `toml:"bcrypt_cost"`
}

// TokenTTL returns the configured token lifetime.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

// AdminConfig holds settings for administrative endpoints.
type AdminConfig struct {
	// MigrateKey must be sent as X-Migrate-Key to reset the schema. An empty
	// key disables the endpoint.
	MigrateKey string `toml:"migrate_key"`
}

// ImportConfig bounds the feed import endpoint.
type ImportConfig struct {
	MaxFeeds        int `toml:"max_feeds"`
	MaxItemsPerFeed int `toml:"max_items_per_feed"`

	// AllowPrivateNetworks lets imports fetch loopback, private and
	// link-local addresses. Off by default.
	AllowPrivateNetworks bool `toml:"allow_private_networks"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const (
	defaultHost            = "localhost"
	defaultPort            = 3003
	defaultDatabasePath    = "./data/bloglist.db"
	defaultTokenTTLMinutes = 60
	defaultBcryptCost      = 10
	defaultMaxFeeds        = 10
	defaultMaxItemsPerFeed = 50
	defaultLogLevel        = "info"
)

const defaultConfigContent = `[server]
host = "localhost"
port = 3003

[database]
path = "./data/bloglist.db"

[auth]
token_secret = ""                 # Token signing secret (or set TOKEN env var)
token_ttl_minutes = 60
bcrypt_cost = 10

[admin]
migrate_key = ""                  # Empty disables POST /api/migrate (or set MIGRATE_KEY)

[import]
max_feeds = 10
max_items_per_feed = 50
allow_private_networks = false    # Allow importing feeds from loopback/private addresses

[log]
level = "info"                    # debug, info, warn or error
`

// Load reads and parses the TOML config from the given path. If the file does
// not exist, it creates a default config file at that path. Environment
// variables override values from the file with highest priority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Explicit zeros are errors, not requests for the default.
	if err := validateExplicit(&cfg, md); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg)
	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// validateExplicit checks values that were explicitly set in the TOML file.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("server", "port") {
		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
		}
	}
	if md.IsDefined("auth", "token_ttl_minutes") && cfg.Auth.TokenTTLMinutes < 1 {
		return fmt.Errorf("invalid auth.token_ttl_minutes %d: must be >= 1", cfg.Auth.TokenTTLMinutes)
	}
	if md.IsDefined("auth", "bcrypt_cost") && cfg.Auth.BcryptCost == 0 {
		return errors.New("invalid auth.bcrypt_cost 0: must be between 4 and 31")
	}
	if md.IsDefined("import", "max_feeds") && cfg.Import.MaxFeeds < 1 {
		return fmt.Errorf("invalid import.max_feeds %d: must be >= 1", cfg.Import.MaxFeeds)
	}
	if md.IsDefined("import", "max_items_per_feed") && cfg.Import.MaxItemsPerFeed < 1 {
		return fmt.Errorf("invalid import.max_items_per_feed %d: must be >= 1", cfg.Import.MaxItemsPerFeed)
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = defaultDatabasePath
	}
	if cfg.Auth.TokenTTLMinutes == 0 {
		cfg.Auth.TokenTTLMinutes = defaultTokenTTLMinutes
	}
	if cfg.Auth.BcryptCost == 0 {
		cfg.Auth.BcryptCost = defaultBcryptCost
	}
	if cfg.Import.MaxFeeds == 0 {
		cfg.Import.MaxFeeds = defaultMaxFeeds
	}
	if cfg.Import.MaxItemsPerFeed == 0 {
		cfg.Import.MaxItemsPerFeed = defaultMaxItemsPerFeed
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("TOKEN"); v != "" {
		cfg.Auth.TokenSecret = v
	}
	if v := os.Getenv("MIGRATE_KEY"); v != "" {
		cfg.Admin.MigrateKey = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	return nil
}

// validate checks that configuration values are within acceptable ranges.
func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
	}

	if cfg.Auth.TokenTTLMinutes < 1 {
		return fmt.Errorf("invalid auth.token_ttl_minutes %d: must be >= 1", cfg.Auth.TokenTTLMinutes)
	}

	// Same bounds as bcrypt.MinCost and bcrypt.MaxCost.
	if cfg.Auth.BcryptCost < 4 || cfg.Auth.BcryptCost > 31 {
		return fmt.Errorf("invalid auth.bcrypt_cost %d: must be between 4 and 31", cfg.Auth.BcryptCost)
	}

	if cfg.Import.MaxFeeds < 1 {
		return fmt.Errorf("invalid import.max_feeds %d: must be >= 1", cfg.Import.MaxFeeds)
	}
	if cfg.Import.MaxItemsPerFeed < 1 {
		return fmt.Errorf("invalid import.max_items_per_feed %d: must be >= 1", cfg.Import.MaxItemsPerFeed)
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log.level %q: must be one of debug, info, warn, error", cfg.Log.Level)
	}

	if cfg.Auth.TokenSecret == "" {
		slog.Warn("auth.token_secret is empty: set it in the config file or via the TOKEN environment variable")
	}

	return nil
}
