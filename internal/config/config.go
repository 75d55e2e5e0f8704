package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. PACER_DB_PATH.
const EnvPrefix = "PACER"

type Config struct {
	Port      string          `mapstructure:"port"`
	DB        DBConfig        `mapstructure:"db"`
	Log       LogConfig       `mapstructure:"log"`
	Pacer     PacerConfig     `mapstructure:"pacer"`
	HeartRate HeartRateConfig `mapstructure:"heart_rate"`
	Auth      AuthConfig      `mapstructure:"auth"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type PacerConfig struct {
	Tick               time.Duration `mapstructure:"tick"`
	DefaultLapDistance float64       `mapstructure:"default_lap_distance"`
	RecoveryWindow     time.Duration `mapstructure:"recovery_window"`
	RecoveryStep       time.Duration `mapstructure:"recovery_step"`
}

type HeartRateConfig struct {
	Simulated bool          `mapstructure:"simulated"`
	Low       int           `mapstructure:"low"`
	High      int           `mapstructure:"high"`
	Interval  time.Duration `mapstructure:"interval"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

var defaults = map[string]any{
	"port":                       "8080",
	"db.path":                    "pacer.db",
	"log.level":                  "info",
	"log.file":                   "",
	"pacer.tick":                 time.Second,
	"pacer.default_lap_distance": 200.0,
	"pacer.recovery_window":      60 * time.Second,
	"pacer.recovery_step":        time.Second,
	"heart_rate.simulated":       true,
	"heart_rate.low":             90,
	"heart_rate.high":            110,
	"heart_rate.interval":        time.Second,
	"auth.signing_key":           "",
	"auth.token_ttl":             time.Hour,
}

// Load merges defaults, configs/config.yml (or --config), PACER_* env vars
// and command-line flags, in increasing priority.
func Load(args []string) (Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	fs := pflag.NewFlagSet("pacer", pflag.ContinueOnError)
	configFile := fs.String("config", "", "path to a config file (default configs/config.yml)")
	fs.String("port", "", "HTTP listen port")
	fs.String("log-level", "", "debug | info | warn | error")
	fs.String("db-path", "", "SQLite database file")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	for key, flag := range map[string]string{"port": "port", "log.level": "log-level", "db.path": "db-path"} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return Config{}, fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if *configFile != "" {
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", *configFile, err)
		}
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the runtime cannot work with.
func (c Config) Validate() error {
	switch {
	case c.Pacer.Tick <= 0:
		return fmt.Errorf("pacer.tick must be positive, got %v", c.Pacer.Tick)
	case c.Pacer.DefaultLapDistance <= 0:
		return fmt.Errorf("pacer.default_lap_distance must be positive, got %v", c.Pacer.DefaultLapDistance)
	case c.Pacer.RecoveryWindow < 0:
		return fmt.Errorf("pacer.recovery_window must not be negative, got %v", c.Pacer.RecoveryWindow)
	case c.HeartRate.Simulated && c.HeartRate.Interval <= 0:
		return fmt.Errorf("heart_rate.interval must be positive, got %v", c.HeartRate.Interval)
	}
	return nil
}
