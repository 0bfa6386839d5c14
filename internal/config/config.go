// Package config loads the typed taskgraph configuration from flags,
// environment variables, an optional .env file and .taskgraph.yaml.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// ConfigName is the config file name without extension.
	ConfigName = ".taskgraph"
	EnvPrefix  = "TASKGRAPH"

	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultServerAddr    = ":8080"
	DefaultSubjectPrefix = "taskgraph"
)

// Config is the fully resolved configuration.
type Config struct {
	Data      DataConfig      `mapstructure:"data"`
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Events    EventsConfig    `mapstructure:"events"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Verbose   bool            `mapstructure:"verbose"`
}

type DataConfig struct {
	// Dir holds the SQLite database, crash logs and telemetry state.
	Dir string `mapstructure:"dir"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

type ServerConfig struct {
	Addr           string   `mapstructure:"addr" validate:"required"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type EventsConfig struct {
	// NATSURL enables event publishing when set.
	NATSURL       string `mapstructure:"nats_url" validate:"omitempty,url"`
	SubjectPrefix string `mapstructure:"subject_prefix" validate:"required"`
}

type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
}

var validate = validator.New()

// SetDefaults registers every known key. Keys without a default are not
// picked up from the environment by Unmarshal, so all of them are listed.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data.dir", "")
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("server.addr", DefaultServerAddr)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("events.nats_url", "")
	v.SetDefault("events.subject_prefix", DefaultSubjectPrefix)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.api_key", "")
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("verbose", false)
}

// Load wires v to the environment and the config file, then decodes and
// validates the result. cfgFile, when set, must exist.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(LocalDirName)
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config %s: %w", v.ConfigFileUsed(), err)
		}
	}
	return Decode(v)
}

// Decode unmarshals and validates the current state of v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Data.Dir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return nil, err
		}
		cfg.Data.Dir = dir
	}
	return &cfg, nil
}

// Watch re-decodes the config whenever the file changes and hands valid
// results to onChange. Invalid edits are logged and ignored.
func Watch(v *viper.Viper, log *slog.Logger, onChange func(*Config)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := Decode(v)
		if err != nil {
			log.Warn("config reload rejected", "file", e.Name, "error", err)
			return
		}
		log.Info("config reloaded", "file", e.Name, "op", e.Op.String())
		onChange(cfg)
	})
	v.WatchConfig()
}
