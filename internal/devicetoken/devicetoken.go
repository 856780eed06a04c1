// Package devicetoken obtains this machine's client token by running a
// PowerShell script. The token is what the game client itself sends as
// clientToken to /account/verify.
package devicetoken

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/motoki317/sc"
	"go.uber.org/zap"
)

// Runner executes name with args and returns its stdout and stderr.
type Runner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// ScriptError reports a script that ran but exited unsuccessfully.
type ScriptError struct {
	Stderr string
	Err    error
}

func (e *ScriptError) Error() string {
	return "powershell script failed: " + e.Stderr
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

type Generator struct {
	shell  string
	run    Runner
	logger *zap.Logger
	cache  *sc.Cache[struct{}, string]
}

type Option func(*Generator)

func WithRunner(run Runner) Option {
	return func(g *Generator) {
		g.run = run
	}
}

func WithShell(shell string) Option {
	return func(g *Generator) {
		g.shell = shell
	}
}

func New(logger *zap.Logger, opts ...Option) (*Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &Generator{
		shell:  "powershell",
		run:    runCommand,
		logger: logger,
	}
	for _, opt := range opts {
		opt(g)
	}

	// The hardware serials do not change while the process runs.
	cache, err := sc.New(func(ctx context.Context, _ struct{}) (string, error) {
		return g.generate(ctx)
	}, 24*time.Hour, 24*time.Hour)
	if err != nil {
		return nil, errors.Wrap(err, "create device token cache")
	}
	g.cache = cache

	return g, nil
}

// Token returns the device token, running the script at most once per
// successful result.
func (g *Generator) Token(ctx context.Context) (string, error) {
	return g.cache.Get(ctx, struct{}{})
}

func (g *Generator) generate(ctx context.Context) (string, error) {
	g.logger.Info("[PowerShell] Executing script")

	stdout, stderr, err := g.run(ctx, g.shell, "-NoProfile", "-NonInteractive", "-Command", script)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &ScriptError{Stderr: strings.TrimSpace(string(stderr)), Err: err}
		}

		return "", errors.Wrap(err, "execute powershell")
	}

	token := strings.TrimSpace(string(stdout))
	if token == "" {
		return "", errors.New("powershell script printed no device token")
	}

	return token, nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	return stdout.Bytes(), stderr.Bytes(), err
}
