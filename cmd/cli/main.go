package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dmitrijs2005/bcards/internal/buildinfo"
	"github.com/dmitrijs2005/bcards/internal/client/cli"
	"github.com/dmitrijs2005/bcards/internal/client/client"
	"github.com/dmitrijs2005/bcards/internal/client/config"
	"github.com/dmitrijs2005/bcards/internal/client/session"
	"github.com/dmitrijs2005/bcards/internal/filex"
	"github.com/dmitrijs2005/bcards/internal/logging"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

func run() error {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir, err := filex.EnsureDir(cfg.DataDir)
	if err != nil {
		return err
	}

	db, err := client.InitDatabase(ctx, filepath.Join(dir, cfg.DatabaseFile))
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := session.Open(ctx, db, logger)
	if err != nil {
		return err
	}
	go store.StartExpiryWatcher(ctx, cfg.SessionCheckInterval)

	api := client.NewHTTPClient(cfg.APIBaseURL, cfg.RequestTimeout, logger)
	app := cli.NewApp(store, api, cli.Options{
		PageSize:  cfg.PageSize,
		FadeDelay: cfg.FadeDelay,
	}, logger, os.Stdin, os.Stdout)

	return app.Run(ctx)
}
