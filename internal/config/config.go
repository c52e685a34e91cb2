// Package config provides configuration loading and validation for the service and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Defaults
const (
	DefaultCatalogBaseURL      = "https://courses.illinois.edu/cisapp/explorer"
	DefaultCatalogCacheTTL     = 6 * time.Hour
	DefaultCatalogWorkers      = 3
	DefaultCatalogMaxRetries   = 3
	DefaultCatalogRetryDelay   = time.Second
	DefaultCatalogRPS          = 5.0
	DefaultLLMTimeout          = 60 * time.Second
	DefaultGapLimit            = 15
	DefaultRecommendationLimit = 20
	DefaultPort                = 4000
	DefaultLogFormat           = "console"
	DefaultLogLevel            = "info"
)

// Duration is a time.Duration read from JSON as a string such as "6h" or "500ms"
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of nanoseconds
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("duration must be a string like \"6h\": %s", string(data))
	}
	*d = Duration(n)
	return nil
}

// MarshalJSON writes the duration as a string
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the time.Duration value
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the service configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults, the environment or CLI flags.
type Config struct {
	// Persistence
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	SQLitePath  string `json:"sqlite_path,omitempty"`  // Local SQLite file used when no database URL is set

	// LLM
	GeminiAPIKey string   `json:"gemini_api_key,omitempty"` // Gemini API key; empty disables the AI strategy
	Model        string   `json:"model,omitempty"`          // Model used for canonicalization
	LLMTimeout   Duration `json:"llm_timeout,omitempty"`

	// Course catalog
	RedisURL          string   `json:"redis_url,omitempty"` // Optional shared catalog cache
	CatalogBaseURL    string   `json:"catalog_base_url,omitempty"`
	CatalogCacheTTL   Duration `json:"catalog_cache_ttl,omitempty"`
	CatalogWorkers    int      `json:"catalog_workers,omitempty"`
	CatalogMaxRetries int      `json:"catalog_max_retries,omitempty"`
	CatalogRetryDelay Duration `json:"catalog_retry_delay,omitempty"`
	CatalogRPS        float64  `json:"catalog_rps,omitempty"`

	// Limits
	GapLimit            int `json:"gap_limit,omitempty"`
	RecommendationLimit int `json:"recommendation_limit,omitempty"`

	// Server and logging
	Port      int    `json:"port,omitempty"`
	LogFormat string `json:"log_format,omitempty"` // console or json
	LogLevel  string `json:"log_level,omitempty"`
}

// Defaults returns the default configuration
func Defaults() Config {
	return Config{
		LLMTimeout:          Duration(DefaultLLMTimeout),
		CatalogBaseURL:      DefaultCatalogBaseURL,
		CatalogCacheTTL:     Duration(DefaultCatalogCacheTTL),
		CatalogWorkers:      DefaultCatalogWorkers,
		CatalogMaxRetries:   DefaultCatalogMaxRetries,
		CatalogRetryDelay:   Duration(DefaultCatalogRetryDelay),
		CatalogRPS:          DefaultCatalogRPS,
		GapLimit:            DefaultGapLimit,
		RecommendationLimit: DefaultRecommendationLimit,
		Port:                DefaultPort,
		LogFormat:           DefaultLogFormat,
		LogLevel:            DefaultLogLevel,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides fields with any of DATABASE_URL, SQLITE_PATH, GEMINI_API_KEY, MODEL,
// REDIS_URL, CATALOG_BASE_URL, PORT, LOG_FORMAT and LOG_LEVEL that are set.
func (c *Config) ApplyEnv() error {
	strings := map[string]*string{
		"DATABASE_URL":     &c.DatabaseURL,
		"SQLITE_PATH":      &c.SQLitePath,
		"GEMINI_API_KEY":   &c.GeminiAPIKey,
		"MODEL":            &c.Model,
		"REDIS_URL":        &c.RedisURL,
		"CATALOG_BASE_URL": &c.CatalogBaseURL,
		"LOG_FORMAT":       &c.LogFormat,
		"LOG_LEVEL":        &c.LogLevel,
	}
	for key, field := range strings {
		if value := os.Getenv(key); value != "" {
			*field = value
		}
	}

	if value := os.Getenv("PORT"); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("config error: PORT must be an integer: %w", err)
		}
		c.Port = port
	}
	return nil
}

// Validate checks that the configuration has valid values.
// Zero values are allowed since MergeWithDefaults fills them.
func (c *Config) Validate() error {
	if c.GapLimit < 0 || c.GapLimit > 100 {
		return fmt.Errorf("config error: 'gap_limit' must be between 1 and 100")
	}
	if c.RecommendationLimit < 0 || c.RecommendationLimit > 50 {
		return fmt.Errorf("config error: 'recommendation_limit' must be between 1 and 50")
	}
	if c.CatalogWorkers < 0 {
		return fmt.Errorf("config error: 'catalog_workers' must be non-negative")
	}
	if c.CatalogMaxRetries < 0 {
		return fmt.Errorf("config error: 'catalog_max_retries' must be non-negative")
	}
	if c.CatalogRPS < 0 {
		return fmt.Errorf("config error: 'catalog_rps' must be non-negative")
	}
	if c.CatalogCacheTTL < 0 || c.CatalogRetryDelay < 0 || c.LLMTimeout < 0 {
		return fmt.Errorf("config error: durations must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535")
	}
	if c.LogFormat != "" && c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("config error: 'log_format' must be console or json")
	}

	for name, raw := range map[string]string{"catalog_base_url": c.CatalogBaseURL, "redis_url": c.RedisURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config error: '%s' is not a valid URL", name)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.SQLitePath == "" {
		result.SQLitePath = defaults.SQLitePath
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.CatalogBaseURL == "" {
		result.CatalogBaseURL = defaults.CatalogBaseURL
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}

	// Numeric fields: use default if zero
	if result.LLMTimeout == 0 {
		result.LLMTimeout = defaults.LLMTimeout
	}
	if result.CatalogCacheTTL == 0 {
		result.CatalogCacheTTL = defaults.CatalogCacheTTL
	}
	if result.CatalogWorkers == 0 {
		result.CatalogWorkers = defaults.CatalogWorkers
	}
	if result.CatalogMaxRetries == 0 {
		result.CatalogMaxRetries = defaults.CatalogMaxRetries
	}
	if result.CatalogRetryDelay == 0 {
		result.CatalogRetryDelay = defaults.CatalogRetryDelay
	}
	if result.CatalogRPS == 0 {
		result.CatalogRPS = defaults.CatalogRPS
	}
	if result.GapLimit == 0 {
		result.GapLimit = defaults.GapLimit
	}
	if result.RecommendationLimit == 0 {
		result.RecommendationLimit = defaults.RecommendationLimit
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	return result
}
