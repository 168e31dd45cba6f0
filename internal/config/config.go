// Package config loads the settings of the vdba command.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/zoobzio/vdba"
)

// Config holds the settings of a conformance check.
type Config struct {
	// Driver names the driver under test, by name or alias.
	Driver string `mapstructure:"driver"`

	// Connection carries the database name and DSN.
	Connection vdba.Config `mapstructure:",squash"`

	// Run selects cases by a regular expression over "group/name".
	Run string `mapstructure:"run"`

	Log LogConfig `mapstructure:"log"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text or json
	Output string `mapstructure:"output"` // stderr, stdout or a file path
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Driver:     "memory",
		Connection: vdba.Config{Database: "conformance"},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load reads configuration from configPath, or from vdba.yaml in the
// working directory when configPath is empty. A .env file in the working
// directory is loaded first. VDBA_* environment variables override file
// values, with "." in keys replaced by "_" (VDBA_LOG_LEVEL).
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	def := Default()
	v.SetDefault("driver", def.Driver)
	v.SetDefault("database", def.Connection.Database)
	v.SetDefault("dsn", def.Connection.DSN)
	v.SetDefault("run", def.Run)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.output", def.Log.Output)

	v.SetEnvPrefix("VDBA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	} else {
		v.SetConfigName("vdba")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Driver == "" {
		return errors.New("driver is required")
	}
	if c.Connection.Database == "" {
		return errors.New("database is required")
	}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}
	if _, err := c.Pattern(); err != nil {
		return err
	}
	return nil
}

// Pattern compiles Run. An empty Run selects every case and returns nil.
func (c *Config) Pattern() (*regexp.Regexp, error) {
	if c.Run == "" {
		return nil, nil
	}
	re, err := regexp.Compile(c.Run)
	if err != nil {
		return nil, fmt.Errorf("invalid run pattern: %w", err)
	}
	return re, nil
}
