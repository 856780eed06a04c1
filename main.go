package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-faster/errors"
	"github.com/ras0q/rotmgstash/internal/config"
	"github.com/ras0q/rotmgstash/internal/logging"
	"github.com/ras0q/rotmgstash/internal/stash"
	"github.com/ras0q/rotmgstash/internal/tui"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin *os.File, stdout io.Writer) error {
	cfg, rest, err := config.Load("rotmg-stash", args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(stdout)
			return nil
		}
		return err
	}

	logger, cleanup, err := logging.New(logging.Options{
		DataDir: cfg.DataDir,
		Level:   cfg.LogLevel,
		Console: cfg.Debug && len(rest) > 0,
	})
	if err != nil {
		return err
	}
	defer cleanup()

	service, err := stash.New(cfg, logger)
	if err != nil {
		return errors.Wrap(err, "create stash service")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if len(rest) == 0 {
		return runProgram(ctx, cfg, service, logger)
	}

	cli := &commands{
		cfg:     cfg,
		service: service,
		stdin:   stdin,
		stdout:  stdout,
	}

	return cli.run(ctx, rest)
}

func runProgram(ctx context.Context, cfg config.Config, service *stash.Service, logger *zap.Logger) error {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return errors.Wrap(err, "get terminal size")
	}

	model := tui.NewAppModel(w, h, service, tui.Options{
		BaseURL:    cfg.BaseURL,
		InstallDir: cfg.ExaltPath,
		Debug:      cfg.Debug,
		Logger:     logger,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(model, tea.WithAltScreen())

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer cancel()

		_, err := p.Run()
		return err
	})

	eg.Go(func() error {
		<-ctx.Done()
		p.Quit()

		return nil
	})

	if err := eg.Wait(); err != nil {
		return errors.Wrap(err, "run program")
	}

	if len(model.Errors) > 0 {
		return model.Errors[0]
	}

	return nil
}
