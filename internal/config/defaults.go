package config

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "prod",
		Server: ServerConfig{
			Port: 4243,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/vire-tracker",
			},
		},
		Cache: CacheConfig{
			TTL: "300s",
		},
		Providers: ProvidersConfig{
			Order:     []string{"finnhub", "alphavantage", "yahoo", "alpaca"},
			NewsOrder: []string{"finnhub", "alpaca"},
			Finnhub: ProviderConfig{
				Enabled: true,
				BaseURL: "https://finnhub.io/api/v1",
				Timeout: "10s",
			},
			AlphaVantage: ProviderConfig{
				Enabled: true,
				BaseURL: "https://www.alphavantage.co",
				Timeout: "10s",
			},
			Yahoo: ProviderConfig{
				Enabled: true,
				BaseURL: "https://query1.finance.yahoo.com",
				Timeout: "10s",
			},
			Alpaca: ProviderConfig{
				Enabled: false,
				BaseURL: "https://data.alpaca.markets",
				Timeout: "10s",
			},
		},
		Portfolio: PortfolioConfig{
			Currency: "USD",
		},
		Recommend: RecommendConfig{
			Gemini: GeminiConfig{
				Model:   "gemini-2.0-flash",
				Timeout: "15s",
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "text",
			Outputs: []string{"console"},
		},
	}
}
