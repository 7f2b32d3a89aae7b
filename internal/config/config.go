// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Images ImagesConfig `yaml:"images" mapstructure:"images"`
	Import ImportConfig `yaml:"import" mapstructure:"import"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ImagesConfig configures image downloading and storage.
type ImagesConfig struct {
	Dir         string `yaml:"dir" mapstructure:"dir"`
	MaxBytes    int64  `yaml:"max_bytes" mapstructure:"max_bytes"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// Timeout returns the per-download timeout as a duration.
func (c ImagesConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// ImportConfig holds default import settings and the fallback locale used
// when a row carries no resolvable location.
type ImportConfig struct {
	DownloadImages          bool   `yaml:"download_images" mapstructure:"download_images"`
	CreateMissingCategories bool   `yaml:"create_missing_categories" mapstructure:"create_missing_categories"`
	CreateMissingCities     bool   `yaml:"create_missing_cities" mapstructure:"create_missing_cities"`
	SkipDuplicates          bool   `yaml:"skip_duplicates" mapstructure:"skip_duplicates"`
	ValidateEmails          bool   `yaml:"validate_emails" mapstructure:"validate_emails"`
	ValidatePhones          bool   `yaml:"validate_phones" mapstructure:"validate_phones"`
	BatchSize               int    `yaml:"batch_size" mapstructure:"batch_size"`
	Concurrency             int    `yaml:"concurrency" mapstructure:"concurrency"`
	DefaultCountry          string `yaml:"default_country" mapstructure:"default_country"`
	DefaultCity             string `yaml:"default_city" mapstructure:"default_city"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MURBAAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "murbaat.db")
	v.SetDefault("images.dir", "public/uploads/companies")
	v.SetDefault("images.max_bytes", 10*1024*1024)
	v.SetDefault("images.timeout_secs", 30)
	v.SetDefault("images.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("import.download_images", true)
	v.SetDefault("import.create_missing_categories", true)
	v.SetDefault("import.create_missing_cities", true)
	v.SetDefault("import.skip_duplicates", true)
	v.SetDefault("import.validate_emails", true)
	v.SetDefault("import.validate_phones", true)
	v.SetDefault("import.batch_size", 50)
	v.SetDefault("import.concurrency", 1)
	v.SetDefault("import.default_country", "سوريا")
	v.SetDefault("import.default_city", "دمشق")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
