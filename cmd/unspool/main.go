package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &runner{logger: logger}

	app := &cli.Command{
		Name:    "unspool",
		Usage:   "Turn an exported Twitter/X archive into a browsable document model",
		Version: Version,
		Commands: []*cli.Command{
			parseCommand(r),
			serveCommand(r),
			exportCommand(r),
			versionCommand(),
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		if ctx.Err() != nil {
			logger.Warn("interrupted")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "unspool: %v\n", err)
		os.Exit(1)
	}
}
