package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vey/vey-go/pkg/vey"
)

// Config holds the full application configuration.
type Config struct {
	Vey    VeyConfig    `yaml:"vey" mapstructure:"vey"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// VeyConfig holds the address API credentials and client settings.
type VeyConfig struct {
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	APIEndpoint string  `yaml:"api_endpoint" mapstructure:"api_endpoint"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// Timeout returns the per-call timeout.
func (c VeyConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// ClientOptions translates the settings into client options.
func (c VeyConfig) ClientOptions() []vey.Option {
	return []vey.Option{
		vey.WithEndpoint(c.APIEndpoint),
		vey.WithTimeout(c.Timeout()),
		vey.WithRateLimit(c.RateLimit),
	}
}

// ServerConfig configures the adapter server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	Framework   string   `yaml:"framework" mapstructure:"framework"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
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
	v.SetEnvPrefix("VEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("vey.api_key", "")
	v.SetDefault("vey.api_endpoint", vey.DefaultEndpoint)
	v.SetDefault("vey.timeout_secs", int(vey.DefaultTimeout/time.Second))
	v.SetDefault("vey.rate_limit", 0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.framework", "chi")
	v.SetDefault("server.cors_origins", []string{"*"})
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

// Validate checks the settings a command needs. mode is "client" for
// commands that call the API and "serve" for the adapter server.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "client":
		errs = append(errs, c.validateClient()...)
	case "serve":
		errs = append(errs, c.validateClient()...)
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		switch c.Server.Framework {
		case "chi", "echo":
		default:
			errs = append(errs, fmt.Sprintf("server.framework must be chi or echo, got %q", c.Server.Framework))
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateClient() []string {
	var errs []string
	if strings.TrimSpace(c.Vey.APIKey) == "" {
		errs = append(errs, "vey.api_key is required")
	}
	if c.Vey.TimeoutSecs < 0 {
		errs = append(errs, "vey.timeout_secs must be >= 0")
	}
	if c.Vey.RateLimit < 0 {
		errs = append(errs, "vey.rate_limit must be >= 0")
	}
	return errs
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
