package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Cache       CacheConfig     `toml:"cache"`
	Providers   ProvidersConfig `toml:"providers"`
	Portfolio   PortfolioConfig `toml:"portfolio"`
	Recommend   RecommendConfig `toml:"recommend"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// StorageConfig contains storage layer settings.
type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig contains BadgerDB-specific settings.
type BadgerConfig struct {
	Path string `toml:"path"`
}

// CacheConfig contains provider result cache settings.
type CacheConfig struct {
	TTL string `toml:"ttl"`
}

// GetTTL parses the cache TTL, falling back to 300s.
func (c *CacheConfig) GetTTL() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d <= 0 {
		return 300 * time.Second
	}
	return d
}

// ProvidersConfig lists the market-data providers and their priority.
// Order names providers in fallback order; disabled or unknown names are skipped.
type ProvidersConfig struct {
	Order        []string       `toml:"order"`
	NewsOrder    []string       `toml:"news_order"`
	Finnhub      ProviderConfig `toml:"finnhub"`
	AlphaVantage ProviderConfig `toml:"alphavantage"`
	Yahoo        ProviderConfig `toml:"yahoo"`
	Alpaca       ProviderConfig `toml:"alpaca"`
}

// ProviderConfig holds one provider's endpoint and credentials.
type ProviderConfig struct {
	Enabled   bool   `toml:"enabled"`
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	APISecret string `toml:"api_secret"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *ProviderConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// Get returns the provider section for name, or nil if unknown.
func (p *ProvidersConfig) Get(name string) *ProviderConfig {
	switch strings.ToLower(name) {
	case "finnhub":
		return &p.Finnhub
	case "alphavantage":
		return &p.AlphaVantage
	case "yahoo":
		return &p.Yahoo
	case "alpaca":
		return &p.Alpaca
	}
	return nil
}

// PortfolioConfig contains portfolio computation settings.
type PortfolioConfig struct {
	Currency    string `toml:"currency"`
	SectorsFile string `toml:"sectors_file"` // optional YAML symbol->sector overrides
}

// RecommendConfig contains recommendation settings.
type RecommendConfig struct {
	Gemini GeminiConfig `toml:"gemini"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *GeminiConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies VIRE_* and provider key environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("VIRE_ENV"); env != "" {
		config.Environment = env
	}
	if port := os.Getenv("VIRE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("VIRE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if badgerPath := os.Getenv("VIRE_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if ttl := os.Getenv("VIRE_CACHE_TTL"); ttl != "" {
		config.Cache.TTL = ttl
	}
	if order := os.Getenv("VIRE_PROVIDERS"); order != "" {
		config.Providers.Order = splitList(order)
	}
	if level := os.Getenv("VIRE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("VIRE_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}

	if key := firstEnv("FINNHUB_API_KEY", "VIRE_FINNHUB_API_KEY"); key != "" {
		config.Providers.Finnhub.APIKey = key
	}
	if key := firstEnv("ALPHAVANTAGE_API_KEY", "VIRE_ALPHAVANTAGE_API_KEY"); key != "" {
		config.Providers.AlphaVantage.APIKey = key
	}
	if key := firstEnv("APCA_API_KEY_ID", "ALPACA_API_KEY"); key != "" {
		config.Providers.Alpaca.APIKey = key
	}
	if secret := firstEnv("APCA_API_SECRET_KEY", "ALPACA_API_SECRET"); secret != "" {
		config.Providers.Alpaca.APISecret = secret
	}
	if key := firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY"); key != "" {
		config.Recommend.Gemini.APIKey = key
	}
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// IsDevMode returns true when running in the dev environment.
func (c *Config) IsDevMode() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "dev")
}

// EnabledProviders returns the quote provider names in fallback order,
// skipping disabled, unknown, and duplicate entries.
func (c *Config) EnabledProviders() []string {
	return c.enabled(c.Providers.Order)
}

// EnabledNewsProviders returns the news provider names in fallback order.
func (c *Config) EnabledNewsProviders() []string {
	return c.enabled(c.Providers.NewsOrder)
}

func (c *Config) enabled(order []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, name := range order {
		name = strings.ToLower(strings.TrimSpace(name))
		p := c.Providers.Get(name)
		if p == nil || !p.Enabled || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// Validate returns human-readable configuration issues. An empty result means the config is usable.
func (c *Config) Validate() []string {
	var issues []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	if c.Storage.Badger.Path == "" {
		issues = append(issues, "storage.badger.path is empty")
	}
	if _, err := time.ParseDuration(c.Cache.TTL); c.Cache.TTL != "" && err != nil {
		issues = append(issues, fmt.Sprintf("cache.ttl %q is not a duration, using 300s", c.Cache.TTL))
	}

	for _, name := range c.Providers.Order {
		if c.Providers.Get(name) == nil {
			issues = append(issues, fmt.Sprintf("providers.order: unknown provider %q", name))
		}
	}
	if len(c.EnabledProviders()) == 0 {
		issues = append(issues, "no quote providers are enabled")
	}

	if c.Providers.Finnhub.Enabled && c.Providers.Finnhub.APIKey == "" {
		issues = append(issues, "providers.finnhub is enabled but has no api_key (FINNHUB_API_KEY)")
	}
	if c.Providers.AlphaVantage.Enabled && c.Providers.AlphaVantage.APIKey == "" {
		issues = append(issues, "providers.alphavantage is enabled but has no api_key (ALPHAVANTAGE_API_KEY)")
	}
	if c.Providers.Alpaca.Enabled && (c.Providers.Alpaca.APIKey == "" || c.Providers.Alpaca.APISecret == "") {
		issues = append(issues, "providers.alpaca is enabled but is missing api_key or api_secret")
	}

	return issues
}
