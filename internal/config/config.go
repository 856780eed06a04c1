// Package config resolves runtime settings from flags, the environment
// and an optional .env file. Flags win over the environment, which wins
// over built-in defaults.
package config

import (
	"io/fs"
	"os"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	"github.com/ras0q/rotmgstash/internal/rotmgapi"
	"github.com/ras0q/rotmgstash/internal/settings"
	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"
)

const (
	EnvBaseURL   = "ROTMG_STASH_BASE_URL"
	EnvDataDir   = "ROTMG_STASH_DATA_DIR"
	EnvExaltPath = "EXALT_PATH"
	EnvLogLevel  = "ROTMG_STASH_LOG_LEVEL"
	EnvDebug     = "DEBUG"
)

type Config struct {
	BaseURL   string
	DataDir   string
	ExaltPath string
	LogLevel  zapcore.Level
	Debug     bool
}

// Load reads .env from the working directory if present, then parses
// args. The remaining positional arguments are returned.
func Load(name string, args []string) (Config, []string, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil, errors.Wrap(err, "load .env")
	}

	cfg := Config{
		BaseURL:   envOr(EnvBaseURL, rotmgapi.DefaultBaseURL),
		DataDir:   os.Getenv(EnvDataDir),
		ExaltPath: os.Getenv(EnvExaltPath),
		LogLevel:  zapcore.InfoLevel,
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		level, err := zapcore.ParseLevel(v)
		if err != nil {
			return Config{}, nil, errors.Wrapf(err, "parse %s", EnvLogLevel)
		}
		cfg.LogLevel = level
	}

	if v := os.Getenv(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, nil, errors.Wrapf(err, "parse %s", EnvDebug)
		}
		cfg.Debug = debug
	}

	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "RotMG web API base URL")
	flags.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory holding settings, accounts and logs")
	flags.StringVar(&cfg.ExaltPath, "exalt-path", cfg.ExaltPath, "directory containing \"RotMG Exalt.exe\"")
	level := flags.String("log-level", cfg.LogLevel.String(), "minimum log level (debug, info, warn, error)")
	flags.BoolVar(&cfg.Debug, "debug", cfg.Debug, "write a state dump alongside the log")
	// Subcommand flags such as those of "accounts add" follow the
	// subcommand name and are parsed by it.
	flags.SetInterspersed(false)

	if err := flags.Parse(args); err != nil {
		return Config{}, nil, err
	}

	if flags.Changed("log-level") {
		parsed, err := zapcore.ParseLevel(*level)
		if err != nil {
			return Config{}, nil, errors.Wrap(err, "parse --log-level")
		}
		cfg.LogLevel = parsed
	}

	if cfg.DataDir == "" {
		dir, err := settings.DefaultDir()
		if err != nil {
			return Config{}, nil, err
		}
		cfg.DataDir = dir
	}

	return cfg, flags.Args(), nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
