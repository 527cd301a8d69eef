package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"

	"dcareport/internal/application/usecase/dca"
	"dcareport/internal/infrastructure/config"
	"dcareport/internal/infrastructure/logger"
	"dcareport/internal/infrastructure/svc"
)

func main() {
	logger.Setup()

	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	dryRun := flag.Bool("dry-run", false, "fetch and report without appending to the history")
	noColor := flag.Bool("no-color", false, "disable ANSI colors in the report")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}

	logFile, err := logger.Configure(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		log.Fatal().Err(err).Msg("logger setup failed")
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	color := !*noColor && isatty.IsTerminal(os.Stdout.Fd())
	sc, err := svc.New(ctx, cfg, svc.Options{DryRun: *dryRun, Color: color})
	if err != nil {
		log.Fatal().Err(err).Msg("service context initialization failed")
	}

	log.Info().
		Str("config", *configPath).
		Strs("cryptos", cfg.Portfolio.Cryptos).
		Str("history", cfg.History.Backend).
		Bool("dry_run", *dryRun).
		Msg("dcareport started")

	_, err = dca.NewService(sc.BuildDCAServiceDeps()).Run(ctx)
	if cerr := sc.Close(); cerr != nil {
		log.Error().Err(cerr).Msg("close failed")
	}
	if err != nil {
		log.Error().Err(err).Msg("dca report failed")
		os.Exit(1)
	}
}
