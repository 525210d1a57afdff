package config

import (
	"sync/atomic"
)

var configValue atomic.Value

func GetConfig() *Config {
	cfg, ok := configValue.Load().(*Config)
	if !ok {
		return NewDefaultConfig()
	}
	return cfg
}

func SetConfig(cfg *Config) {
	configValue.Store(cfg)
}

type Config struct {
	Version     string          `mapstructure:"version"`
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Scraper     ScraperConfig   `mapstructure:"scraper"`
	Weather     WeatherConfig   `mapstructure:"weather"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	Host            string   `mapstructure:"host"`
	ReadTimeout     int      `mapstructure:"read_timeout"`
	WriteTimeout    int      `mapstructure:"write_timeout"`
	IdleTimeout     int      `mapstructure:"idle_timeout"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	MaxForecastDays int      `mapstructure:"max_forecast_days"`
}

// ScraperConfig drives the search page fetcher.
type ScraperConfig struct {
	BaseURL      string            `mapstructure:"base_url"`
	UserAgent    string            `mapstructure:"user_agent"`
	Headers      map[string]string `mapstructure:"headers"`
	Timeout      int               `mapstructure:"timeout"`
	Retries      int               `mapstructure:"retries"`
	MaxBodyBytes int64             `mapstructure:"max_body_bytes"`
	Backoff      BackoffConfig     `mapstructure:"backoff"`
	Breaker      BreakerConfig     `mapstructure:"breaker"`
}

// BackoffConfig values are milliseconds.
type BackoffConfig struct {
	Initial int `mapstructure:"initial"`
	Max     int `mapstructure:"max"`
}

type BreakerConfig struct {
	MaxRequests      uint32 `mapstructure:"max_requests"`
	Interval         int    `mapstructure:"interval"`
	OpenTimeout      int    `mapstructure:"open_timeout"`
	FailureThreshold uint32 `mapstructure:"failure_threshold"`
}

type WeatherConfig struct {
	Source          string           `mapstructure:"source"`
	DefaultCountry  string           `mapstructure:"default_country"`
	ForecastDays    int              `mapstructure:"forecast_days"`
	CacheTTL        int              `mapstructure:"cache_ttl"`
	Workers         int              `mapstructure:"workers"`
	RefreshInterval int              `mapstructure:"refresh_interval"`
	Prefetch        []LocationConfig `mapstructure:"prefetch"`
}

type LocationConfig struct {
	City    string `mapstructure:"city"`
	State   string `mapstructure:"state"`
	Country string `mapstructure:"country"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Version:     "1.0.0",
		Environment: "development",
		Server: ServerConfig{
			Port:            8000,
			Host:            "0.0.0.0",
			ReadTimeout:     30,
			WriteTimeout:    30,
			IdleTimeout:     60,
			AllowedOrigins:  []string{"http://localhost:3000", "http://127.0.0.1:3000"},
			MaxForecastDays: 366,
		},
		Scraper: ScraperConfig{
			BaseURL:   "https://www.bing.com/search",
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			Headers: map[string]string{
				"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
				"Accept-Language": "en-US,en;q=0.5",
			},
			Timeout:      30,
			Retries:      3,
			MaxBodyBytes: 5 << 20,
			Backoff: BackoffConfig{
				Initial: 200,
				Max:     2000,
			},
			Breaker: BreakerConfig{
				MaxRequests:      1,
				Interval:         60,
				OpenTimeout:      30,
				FailureThreshold: 5,
			},
		},
		Weather: WeatherConfig{
			Source:          "Bing Weather",
			DefaultCountry:  "India",
			ForecastDays:    7,
			CacheTTL:        300,
			Workers:         2,
			RefreshInterval: 0,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "",
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			Endpoint:    "tempo:4317",
			ServiceName: "weatherpulse",
		},
	}
}
