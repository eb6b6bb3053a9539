package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"wmrecon/internal/application/usecase/reconcile"
	"wmrecon/internal/infrastructure/config"
	"wmrecon/internal/infrastructure/logger"
	"wmrecon/internal/infrastructure/svc"

	"github.com/rs/zerolog/log"
)

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func main() {
	configPath := flag.String("config", "", "path to config.toml (default from WM_ENV)")
	portfolios := flag.String("portfolio", "", "comma separated portfolio names, empty for all")
	checks := flag.String("checks", "", "comma separated checks: "+strings.Join(reconcile.CheckNames, ","))
	from := flag.String("from", "", "window start YYYY-MM-DD")
	to := flag.String("to", "", "window end YYYY-MM-DD")
	flag.Parse()

	logger.Setup("info")
	path := config.ResolvePath(*configPath)
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Str("config", path).Msg("load config failed")
	}
	if err := cfg.Override(config.Overrides{
		Portfolios: splitList(*portfolios),
		Checks:     splitList(*checks),
		From:       *from,
		To:         *to,
	}); err != nil {
		log.Fatal().Err(err).Msg("invalid flags")
	}
	logger.Setup(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc, err := svc.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("service context initialization failed")
	}

	log.Info().
		Str("config", path).
		Str("env", cfg.App.Env).
		Str("as_of", cfg.App.AsOf).
		Str("from", cfg.Check.From).
		Str("to", cfg.Check.To).
		Msg("wmrecon started")

	run, err := reconcile.NewService(sc.BuildReconcileServiceDeps()).Run(ctx)
	_ = sc.Close()
	if err != nil {
		log.Error().Err(err).Msg("reconcile run aborted")
		os.Exit(1)
	}
	if !run.Passed() {
		os.Exit(1)
	}
}
