package config

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "store.backend")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// collectionNameRegex restricts collection names to characters that are safe
// both as a file name and inside a redis key.
var collectionNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// ValidBackends returns the list of valid store backends
func ValidBackends() []string {
	return []string{"file", "memory", "redis", "remote"}
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidSortKeys returns the list of valid board.sort_by values
func ValidSortKeys() []string {
	return []string{"createdAt", "priority", "dueDate"}
}

// ValidSortOrders returns the list of valid board.sort_order values
func ValidSortOrders() []string {
	return []string{"asc", "desc"}
}

// ValidViews returns the list of valid board.view values
func ValidViews() []string {
	return []string{"board", "list"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateStore()...)
	errors = append(errors, c.validateRedis()...)
	errors = append(errors, c.validateRemote()...)
	errors = append(errors, c.validateServer()...)
	errors = append(errors, c.validateBoard()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateStore() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidBackends(), c.Store.Backend) {
		errors = append(errors, ValidationError{
			Field:   "store.backend",
			Value:   c.Store.Backend,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidBackends(), ", ")),
		})
	}

	if !collectionNameRegex.MatchString(c.Store.Collection) {
		errors = append(errors, ValidationError{
			Field:   "store.collection",
			Value:   c.Store.Collection,
			Message: "must start with a letter or digit and contain only letters, digits, hyphens and underscores",
		})
	}

	if c.Store.WatchDebounceMs < 0 || c.Store.WatchDebounceMs > 5000 {
		errors = append(errors, ValidationError{
			Field:   "store.watch_debounce_ms",
			Value:   c.Store.WatchDebounceMs,
			Message: "must be between 0 and 5000",
		})
	}

	return errors
}

func (c *Config) validateRedis() []ValidationError {
	if c.Store.Backend != "redis" {
		return nil
	}
	var errors []ValidationError

	if c.Redis.URL == "" && c.Redis.Addr == "" {
		errors = append(errors, ValidationError{
			Field:   "redis.addr",
			Value:   c.Redis.Addr,
			Message: "either redis.addr or redis.url is required",
		})
	}
	if c.Redis.URL != "" {
		if u, err := url.Parse(c.Redis.URL); err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			errors = append(errors, ValidationError{
				Field:   "redis.url",
				Value:   c.Redis.URL,
				Message: "must be a redis:// or rediss:// URL",
			})
		}
	}
	if c.Redis.DB < 0 || c.Redis.DB > 15 {
		errors = append(errors, ValidationError{
			Field:   "redis.db",
			Value:   c.Redis.DB,
			Message: "must be between 0 and 15",
		})
	}
	if c.Redis.KeyPrefix == "" {
		errors = append(errors, ValidationError{
			Field:   "redis.key_prefix",
			Value:   c.Redis.KeyPrefix,
			Message: "must not be empty",
		})
	}

	return errors
}

func (c *Config) validateRemote() []ValidationError {
	var errors []ValidationError

	if c.Store.Backend == "remote" {
		u, err := url.Parse(c.Remote.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errors = append(errors, ValidationError{
				Field:   "remote.url",
				Value:   c.Remote.URL,
				Message: "must be an absolute http:// or https:// URL",
			})
		}
	}
	if c.Remote.ReconnectDelayMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "remote.reconnect_delay_ms",
			Value:   c.Remote.ReconnectDelayMs,
			Message: "must be non-negative",
		})
	}
	if c.Remote.RequestTimeoutMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "remote.request_timeout_ms",
			Value:   c.Remote.RequestTimeoutMs,
			Message: "must be positive",
		})
	}

	return errors
}

func (c *Config) validateServer() []ValidationError {
	var errors []ValidationError

	if c.Server.Addr == "" {
		errors = append(errors, ValidationError{
			Field:   "server.addr",
			Value:   c.Server.Addr,
			Message: "must not be empty",
		})
	}
	if c.Server.ShutdownTimeoutMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "server.shutdown_timeout_ms",
			Value:   c.Server.ShutdownTimeoutMs,
			Message: "must be positive",
		})
	}

	return errors
}

func (c *Config) validateBoard() []ValidationError {
	var errors []ValidationError

	if c.Board.ActivationDistance < 0 || c.Board.ActivationDistance > 20 {
		errors = append(errors, ValidationError{
			Field:   "board.activation_distance",
			Value:   c.Board.ActivationDistance,
			Message: "must be between 0 and 20",
		})
	}
	if !slices.Contains(ValidSortKeys(), c.Board.SortBy) {
		errors = append(errors, ValidationError{
			Field:   "board.sort_by",
			Value:   c.Board.SortBy,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidSortKeys(), ", ")),
		})
	}
	if !slices.Contains(ValidSortOrders(), c.Board.SortOrder) {
		errors = append(errors, ValidationError{
			Field:   "board.sort_order",
			Value:   c.Board.SortOrder,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidSortOrders(), ", ")),
		})
	}
	if !slices.Contains([]string{"all", "todo", "in-progress", "completed"}, c.Board.Status) {
		errors = append(errors, ValidationError{
			Field:   "board.status",
			Value:   c.Board.Status,
			Message: "must be one of: all, todo, in-progress, completed",
		})
	}
	if !slices.Contains([]string{"all", "high", "medium", "low"}, c.Board.Priority) {
		errors = append(errors, ValidationError{
			Field:   "board.priority",
			Value:   c.Board.Priority,
			Message: "must be one of: all, high, medium, low",
		})
	}
	if !slices.Contains(ValidViews(), c.Board.View) {
		errors = append(errors, ValidationError{
			Field:   "board.view",
			Value:   c.Board.View,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidViews(), ", ")),
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
