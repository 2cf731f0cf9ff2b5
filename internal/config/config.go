// Package config loads runtime settings and builds the process logger.
package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	FlagPort      = "port"
	FlagDataDir   = "data-dir"
	FlagLogLevel  = "log-level"
	FlagLogFormat = "log-format"

	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Config holds runtime options for the server and CLI.
type Config struct {
	Port      string `mapstructure:"port"`
	DataDir   string `mapstructure:"data_dir"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// New returns a viper instance with defaults set and PORT, DATA_DIR,
// LOG_LEVEL and LOG_FORMAT read from the environment.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("data_dir", "./pb_data")
	v.SetDefault("log_level", zerolog.InfoLevel.String())
	v.SetDefault("log_format", LogFormatConsole)
	v.AutomaticEnv()
	return v
}

// BindFlags lets command line flags override the environment.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, flag := range map[string]string{
		"port":       FlagPort,
		"data_dir":   FlagDataDir,
		"log_level":  FlagLogLevel,
		"log_format": FlagLogFormat,
	} {
		if f := flags.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return errors.Wrapf(err, "failed to bind flag %s", flag)
			}
		}
	}
	return nil
}

// Load reads the settings from v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to read config")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return Config{}, errors.New("port is required")
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return Config{}, errors.New("data dir is required")
	}
	return cfg, nil
}

// Logger builds the logger described by cfg, writing to w (stderr if nil).
func (cfg Config) Logger(w io.Writer) (zerolog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	var logWriter io.Writer
	switch strings.ToLower(cfg.LogFormat) {
	case LogFormatConsole:
		logWriter = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case LogFormatJSON:
		logWriter = w
	default:
		return zerolog.Nop(), errors.Errorf("unknown log format %q", cfg.LogFormat)
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), errors.Wrapf(err, "failed to parse log level (%s)", cfg.LogLevel)
	}

	return zerolog.New(logWriter).Level(lvl).With().Timestamp().Logger(), nil
}
