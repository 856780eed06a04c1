package launch

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

const ExecutableName = "RotMG Exalt.exe"

var (
	ErrExecutableNotFound = errors.New("exalt executable not found")
	ErrInvalidPath        = errors.New("invalid path")
)

// NotFoundError is returned when the executable is missing from the install
// directory. It matches ErrExecutableNotFound.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return "exalt executable not found at: " + e.Path
}

func (e *NotFoundError) Unwrap() error {
	return ErrExecutableNotFound
}

// SpawnError is returned when the OS refuses to start the executable.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to launch exalt: %v", e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

type Launcher struct {
	logger *zap.Logger
	start  func(cmd *exec.Cmd) error
}

type Option func(*Launcher)

// WithStarter replaces the function that starts the prepared command.
func WithStarter(start func(cmd *exec.Cmd) error) Option {
	return func(l *Launcher) {
		l.start = start
	}
}

func NewLauncher(logger *zap.Logger, opts ...Option) *Launcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	l := &Launcher{
		logger: logger,
		start:  startDetached,
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// With returns a copy of l whose log lines carry fields.
func (l *Launcher) With(fields ...zap.Field) *Launcher {
	clone := *l
	clone.logger = l.logger.With(fields...)

	return &clone
}

// Resolve returns the path of the executable inside installDir, failing
// when it does not exist.
func (l *Launcher) Resolve(installDir string) (string, error) {
	exePath := filepath.Join(installDir, ExecutableName)

	if _, err := os.Stat(exePath); err != nil {
		l.logger.Error("[Exalt] Exalt executable not found", zap.String("path", exePath), zap.Error(err))
		return "", &NotFoundError{Path: exePath}
	}

	return exePath, nil
}

// Launch starts the executable in installDir with argument and returns as
// soon as the process exists. The child is not waited on.
func (l *Launcher) Launch(installDir, argument string) error {
	exePath, err := l.Resolve(installDir)
	if err != nil {
		return err
	}

	if strings.TrimSpace(installDir) == "" {
		return errors.Wrapf(ErrInvalidPath, "no parent directory for %q", exePath)
	}
	workDir := filepath.Dir(exePath)

	l.logger.Info("[Exalt] Launching...", zap.String("path", exePath))

	cmd := exec.Command(exePath, argument)
	cmd.Dir = workDir

	if err := l.start(cmd); err != nil {
		l.logger.Error("[Exalt] Failed to launch Exalt", zap.Error(err))
		return &SpawnError{Path: exePath, Err: err}
	}

	l.logger.Info("[Exalt] Successfully launched")

	return nil
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}

	// Reaped in the background so long-running callers do not collect zombies.
	go func() { _ = cmd.Wait() }()

	return nil
}
