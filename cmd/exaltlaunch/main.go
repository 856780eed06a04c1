// exaltlaunch logs one account in and starts the game, without touching the
// saved accounts. The password comes from $EXALT_PASSWORD or the first line
// of stdin.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/go-faster/errors"
	"github.com/ras0q/rotmgstash/internal/config"
	"github.com/ras0q/rotmgstash/internal/logging"
	"github.com/ras0q/rotmgstash/internal/rotmgapi"
	"github.com/ras0q/rotmgstash/internal/stash"
	"go.uber.org/zap"
)

const envPassword = "EXALT_PASSWORD"

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader) error {
	cfg, rest, err := config.Load("exaltlaunch", args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return errors.New("usage: exaltlaunch [flags] <guid>")
	}

	logger, cleanup, err := logging.New(logging.Options{
		DataDir: cfg.DataDir,
		Level:   cfg.LogLevel,
		Console: true,
	})
	if err != nil {
		return err
	}
	defer cleanup()

	password, err := readPassword(stdin)
	if err != nil {
		return err
	}

	service, err := stash.New(cfg, logger)
	if err != nil {
		return err
	}

	creds := rotmgapi.Credentials{GUID: rest[0], Password: password}
	if runtime.GOOS == "windows" {
		token, err := service.DeviceToken(ctx)
		if err != nil {
			logger.Warn("[Exalt] Launching without device token", zap.Error(err))
		}
		creds.DeviceToken = token
	}

	msg, err := service.LaunchExalt(ctx, cfg.ExaltPath, creds)
	if err != nil {
		return err
	}

	fmt.Println(msg)

	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if password := os.Getenv(envPassword); password != "" {
		return password, nil
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", errors.Wrap(err, "read password")
	}

	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.Errorf("no password: set %s or pipe it to stdin", envPassword)
	}

	return password, nil
}
