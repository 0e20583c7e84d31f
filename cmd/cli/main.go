package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/apexclient/internal/buildinfo"
	"github.com/dmitrijs2005/apexclient/internal/client/cli"
	"github.com/dmitrijs2005/apexclient/internal/client/config"
	"github.com/dmitrijs2005/apexclient/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "failed to start", "error", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "session ended with error", "error", err)
	}
}
