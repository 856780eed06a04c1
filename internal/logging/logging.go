// Package logging builds the application's zap logger.
package logging

import (
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	dirName  = "logs"
	FileName = "rotmg-stash.log"
)

type Options struct {
	// DataDir is where the logs directory is created.
	DataDir string
	Level   zapcore.Level
	// Console additionally writes human-readable lines to stderr. The TUI
	// leaves it off since stderr shares the terminal.
	Console bool
}

// New returns a logger appending JSON lines to {DataDir}/logs/rotmg-stash.log
// and a func that flushes and closes the file.
func New(opts Options) (*zap.Logger, func(), error) {
	dir := filepath.Join(opts.DataDir, dirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, nil, errors.Wrap(err, "create log directory")
	}

	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open log file %q", path)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zap.NewAtomicLevelAt(opts.Level)
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(f), level),
	}

	if opts.Console {
		consoleConfig := zap.NewDevelopmentEncoderConfig()
		consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.Lock(os.Stderr), level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())

	cleanup := func() {
		_ = logger.Sync()
		_ = f.Close()
	}

	return logger, cleanup, nil
}
