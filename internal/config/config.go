package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete taskboard configuration
type Config struct {
	Store   StoreConfig   `mapstructure:"store"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Remote  RemoteConfig  `mapstructure:"remote"`
	Server  ServerConfig  `mapstructure:"server"`
	Board   BoardConfig   `mapstructure:"board"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// StoreConfig selects and configures the task store
type StoreConfig struct {
	// Backend is the store implementation to use.
	// Options: "file", "memory", "redis", "remote"
	Backend string `mapstructure:"backend"`
	// Dir is the directory holding the file backend's collection files.
	// Empty means the default data directory (see DataDir).
	Dir string `mapstructure:"dir"`
	// Collection is the name of the task collection (default: "todos")
	Collection string `mapstructure:"collection"`
	// WatchDebounceMs coalesces bursts of file change notifications (default: 50)
	WatchDebounceMs int `mapstructure:"watch_debounce_ms"`
}

// RedisConfig configures the redis backend
type RedisConfig struct {
	// URL is a redis:// connection URL. When set it overrides Addr, Password and DB.
	URL      string `mapstructure:"url"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// KeyPrefix namespaces the collection hash and change channel (default: "taskboard")
	KeyPrefix string `mapstructure:"key_prefix"`
}

// RemoteConfig configures the remote backend, which talks to `taskboard serve`
type RemoteConfig struct {
	// URL is the base URL of the server (default: "http://localhost:8080")
	URL string `mapstructure:"url"`
	// ReconnectDelayMs is the pause before re-dialing a dropped watch stream
	ReconnectDelayMs int `mapstructure:"reconnect_delay_ms"`
	// RequestTimeoutMs bounds each create, update or delete request
	RequestTimeoutMs int `mapstructure:"request_timeout_ms"`
}

// ServerConfig configures `taskboard serve`
type ServerConfig struct {
	// Addr is the listen address (default: ":8080")
	Addr string `mapstructure:"addr"`
	// ShutdownTimeoutMs bounds graceful shutdown
	ShutdownTimeoutMs int `mapstructure:"shutdown_timeout_ms"`
}

// BoardConfig controls the interactive board and default list view
type BoardConfig struct {
	// ActivationDistance is how many cells the pointer must travel before a
	// press becomes a drag (default: 2)
	ActivationDistance int `mapstructure:"activation_distance"`
	// SortBy is the initial sort key. Options: "createdAt", "priority", "dueDate"
	SortBy string `mapstructure:"sort_by"`
	// SortOrder is the initial sort order. Options: "asc", "desc"
	SortOrder string `mapstructure:"sort_order"`
	// Status is the initial status filter ("all" or a status name)
	Status string `mapstructure:"status"`
	// Priority is the initial priority filter ("all" or a priority name)
	Priority string `mapstructure:"priority"`
	// View is the initial layout. Options: "board", "list"
	View string `mapstructure:"view"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether logging is active (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level sets the minimum log level. Options: "debug", "info", "warn", "error"
	Level string `mapstructure:"level"`
	// Dir is where debug.log is written. Empty means the data directory.
	Dir string `mapstructure:"dir"`
	// MaxSizeMB is the size at which the log file is rotated (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of rotated files kept (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
	// Compress gzips rotated files
	Compress bool `mapstructure:"compress"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:         "file",
			Dir:             "",
			Collection:      "todos",
			WatchDebounceMs: 50,
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			DB:        0,
			KeyPrefix: "taskboard",
		},
		Remote: RemoteConfig{
			URL:              "http://localhost:8080",
			ReconnectDelayMs: 1000,
			RequestTimeoutMs: 10000,
		},
		Server: ServerConfig{
			Addr:              ":8080",
			ShutdownTimeoutMs: 5000,
		},
		Board: BoardConfig{
			ActivationDistance: 2,
			SortBy:             "createdAt",
			SortOrder:          "desc",
			Status:             "all",
			Priority:           "all",
			View:               "board",
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// WatchDebounce returns the file watch debounce as a time.Duration
func (c *StoreConfig) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMs) * time.Millisecond
}

// ResolveDir returns the file backend directory, falling back to DataDir.
func (c *StoreConfig) ResolveDir() string {
	if c.Dir != "" {
		return c.Dir
	}
	return DataDir()
}

// ReconnectDelay returns the watch reconnect delay as a time.Duration
func (c *RemoteConfig) ReconnectDelay() time.Duration {
	return time.Duration(c.ReconnectDelayMs) * time.Millisecond
}

// RequestTimeout returns the per-request timeout as a time.Duration
func (c *RemoteConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// ShutdownTimeout returns the graceful shutdown bound as a time.Duration
func (c *ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMs) * time.Millisecond
}

// ResolveDir returns the log directory, falling back to DataDir.
func (c *LoggingConfig) ResolveDir() string {
	if c.Dir != "" {
		return c.Dir
	}
	return DataDir()
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Store defaults
	viper.SetDefault("store.backend", defaults.Store.Backend)
	viper.SetDefault("store.dir", defaults.Store.Dir)
	viper.SetDefault("store.collection", defaults.Store.Collection)
	viper.SetDefault("store.watch_debounce_ms", defaults.Store.WatchDebounceMs)

	// Redis defaults
	viper.SetDefault("redis.url", defaults.Redis.URL)
	viper.SetDefault("redis.addr", defaults.Redis.Addr)
	viper.SetDefault("redis.password", defaults.Redis.Password)
	viper.SetDefault("redis.db", defaults.Redis.DB)
	viper.SetDefault("redis.key_prefix", defaults.Redis.KeyPrefix)

	// Remote defaults
	viper.SetDefault("remote.url", defaults.Remote.URL)
	viper.SetDefault("remote.reconnect_delay_ms", defaults.Remote.ReconnectDelayMs)
	viper.SetDefault("remote.request_timeout_ms", defaults.Remote.RequestTimeoutMs)

	// Server defaults
	viper.SetDefault("server.addr", defaults.Server.Addr)
	viper.SetDefault("server.shutdown_timeout_ms", defaults.Server.ShutdownTimeoutMs)

	// Board defaults
	viper.SetDefault("board.activation_distance", defaults.Board.ActivationDistance)
	viper.SetDefault("board.sort_by", defaults.Board.SortBy)
	viper.SetDefault("board.sort_order", defaults.Board.SortOrder)
	viper.SetDefault("board.status", defaults.Board.Status)
	viper.SetDefault("board.priority", defaults.Board.Priority)
	viper.SetDefault("board.view", defaults.Board.View)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults when the
// loaded configuration is invalid.
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskboard")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskboard"
	}
	return filepath.Join(home, ".config", "taskboard")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DataDir returns the directory holding collection files and logs
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskboard")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskboard"
	}
	return filepath.Join(home, ".local", "share", "taskboard")
}
