package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MrEthical07/goAccount/internal/server"
	"github.com/MrEthical07/goAccount/internal/serverconfig"
	"github.com/MrEthical07/goAccount/logging"
)

func main() {
	cfg, err := serverconfig.Load(os.Args[1:], os.Getenv)
	if errors.Is(err, flag.ErrHelp) {
		serverconfig.Usage(os.Stdout)
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		serverconfig.Usage(os.Stderr)
		os.Exit(2)
	}

	logger := logging.NewJSON(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	runErr := app.Run(ctx)
	if err := app.Close(); err != nil {
		logger.Error(context.Background(), "shutdown", "error", err)
	}
	if runErr != nil {
		logger.Error(context.Background(), "server stopped", "error", runErr)
		os.Exit(1)
	}
}
