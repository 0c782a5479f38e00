package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/parentlink/internal/cache"
	"github.com/dmitrijs2005/parentlink/internal/cli"
	"github.com/dmitrijs2005/parentlink/internal/common"
	"github.com/dmitrijs2005/parentlink/internal/config"
	"github.com/dmitrijs2005/parentlink/internal/engine"
	"github.com/dmitrijs2005/parentlink/internal/gateway"
	"github.com/dmitrijs2005/parentlink/internal/logging"
	"github.com/dmitrijs2005/parentlink/internal/seed"
	"github.com/dmitrijs2005/parentlink/internal/services"
)

func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl [-c config.json] [-a url] [-t token] [-b backend] [-p path] [-s seed.yaml] [-i interval] [-r retries] [-l level] [-m addr]",
		Short: "Hydrate every collection and open the operator console",
		// config.LoadConfig owns the flags so JSON, env and flags layer
		// in one place.
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, a := range args {
				if a == "-h" || a == "--help" {
					return cmd.Help()
				}
			}
			return runConsole(cmd.Context(), args)
		},
	}
}

func runConsole(ctx context.Context, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.LoadConfig(args, os.LookupEnv)
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var passphrase []byte
	if cfg.SealCache {
		passphrase, err = cli.GetPassphrase(os.Stderr)
		if err != nil {
			return fmt.Errorf("read passphrase: %w", err)
		}
	}
	c, closer, err := cache.Open(ctx, cfg, passphrase)
	common.WipeByteArray(passphrase)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer closer.Close()

	seeds, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return err
	}

	client := gateway.NewClient(&http.Client{Timeout: cfg.RequestTimeout}, cfg.RemoteBaseURL, tokenSource(ctx, log, cfg.AuthToken))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := engine.NewMetrics(reg)
	if cfg.MetricsAddr != "" {
		stopMetrics := serveMetrics(ctx, log, cfg.MetricsAddr, reg)
		defer stopMetrics()
	}

	e := engine.New(c, engine.HTTPRemotes(client), seeds, log, metrics)
	defer func() {
		e.Wait()
		e.Close()
	}()

	facade := services.NewFacade(e, services.WithRetry(services.RetryPolicy{
		MaxAttempts: cfg.RetryMaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
	}))

	if err := e.Start(ctx); err != nil {
		return err
	}

	app := cli.NewApp(e, facade, client, log, os.Stdin, os.Stdout)
	app.Run(ctx, cfg.OnlineCheckInterval)
	return nil
}

// tokenSource reads the token as a JWT so the user id header can be sent.
// Opaque tokens are sent as they are.
func tokenSource(ctx context.Context, log logging.Logger, raw string) gateway.TokenSource {
	if strings.Count(raw, ".") != 2 {
		return gateway.StaticToken(raw)
	}
	t, err := gateway.ParseJWT(raw)
	if err != nil {
		log.Warn(ctx, "token is not a readable JWT, sending it as is", "error", err)
		return gateway.StaticToken(raw)
	}
	return t
}

func serveMetrics(ctx context.Context, log logging.Logger, addr string, reg *prometheus.Registry) (stop func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info(ctx, "serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "metrics server failed", "error", err)
		}
	}()

	return func() {
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}
}
