package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/runway/internal/common"
	"github.com/Veraticus/runway/internal/fx"
	"github.com/Veraticus/runway/internal/money"
)

// DefaultDatabasePath is used when database.path is not configured.
const DefaultDatabasePath = "$HOME/.local/share/runway/runway.db"

// Config is the resolved application configuration.
type Config struct {
	DatabasePath string
	BaseCurrency string
	LogLevel     string
	LogFormat    string
	Rates        fx.Config
	RatesTTL     time.Duration
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("rates.base_url", fx.DefaultBaseURL)
	v.SetDefault("rates.ttl", fx.DefaultTTL)
	v.SetDefault("rates.timeout", 10*time.Second)
	v.SetDefault("report.base_currency", fx.BaseCurrency)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads the configuration from v. It follows this precedence:
// 1. Viper configuration (from config file or RUNWAY_ env vars)
// 2. Direct environment variables (EXCHANGE_RATE_API_KEY)
// 3. Default values
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}
	SetDefaults(v)

	cfg := &Config{
		DatabasePath: ExpandPath(v.GetString("database.path")),
		BaseCurrency: money.NormalizeCode(v.GetString("report.base_currency")),
		LogLevel:     v.GetString("logging.level"),
		LogFormat:    v.GetString("logging.format"),
		RatesTTL:     v.GetDuration("rates.ttl"),
		Rates: fx.Config{
			APIKey:  v.GetString("rates.api_key"),
			BaseURL: v.GetString("rates.base_url"),
			Timeout: v.GetDuration("rates.timeout"),
		},
	}

	if cfg.Rates.APIKey == "" {
		cfg.Rates.APIKey = os.Getenv("EXCHANGE_RATE_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable. A missing rates API key is
// allowed: reports then run on fallback rates.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: database.path is empty", common.ErrMissingConfig)
	}
	if !money.IsKnownCurrency(c.BaseCurrency) {
		return fmt.Errorf("%w: report.base_currency %q", common.ErrInvalidCurrency, c.BaseCurrency)
	}
	if c.RatesTTL <= 0 {
		return fmt.Errorf("%w: rates.ttl must be positive", common.ErrInvalidConfig)
	}
	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log format %q", common.ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

// HasRatesAPI reports whether live exchange rates can be fetched.
func (c *Config) HasRatesAPI() bool {
	return c.Rates.APIKey != ""
}
