package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/apexclient/internal/buildinfo"
	"github.com/dmitrijs2005/apexclient/internal/devapi"
	"github.com/dmitrijs2005/apexclient/internal/devapi/config"
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

	srv := devapi.NewServer(cfg, logger, 0)
	if err := srv.SeedAdmin(ctx); err != nil {
		logger.Error(ctx, "failed to seed admin", "error", err)
		return
	}

	if err := srv.Run(ctx); err != nil {
		logger.Error(ctx, "server failed", "error", err)
	}
}
