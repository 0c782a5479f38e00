package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/parentlink/internal/gateway/gatewaytest"
	"github.com/dmitrijs2005/parentlink/internal/logging"
	"github.com/dmitrijs2005/parentlink/internal/models"
	"github.com/dmitrijs2005/parentlink/internal/seed"
)

func fakeRemoteCmd() *cobra.Command {
	var (
		addr     string
		token    string
		seedFile string
	)

	cmd := &cobra.Command{
		Use:   "fake-remote",
		Short: "Serve an in-memory backend for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFakeRemote(cmd.Context(), addr, token, seedFile)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&token, "token", "", "bearer token to require; empty accepts any")
	cmd.Flags().StringVar(&seedFile, "seed", "", "YAML fixtures to serve; empty serves the built-in ones")
	return cmd
}

func runFakeRemote(ctx context.Context, addr, token, seedFile string) error {
	log := logging.New("info", "text", os.Stderr)

	backend := gatewaytest.New(gatewaytest.WithToken(token))
	seeds, err := seed.Load(seedFile)
	if err != nil {
		return err
	}
	if err := seedBackend(backend, seeds); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: addr, Handler: backend.Router(), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "fake remote listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

func seedBackend(b *gatewaytest.Backend, s seed.Set) error {
	all := map[models.Collection][]any{
		models.CollectionMessages:     toAny(s.Messages),
		models.CollectionUrgentMemos:  toAny(s.UrgentMemos),
		models.CollectionProposals:    toAny(s.Proposals),
		models.CollectionPosts:        toAny(s.Posts),
		models.CollectionArrivalPings: toAny(s.ArrivalPings),
	}
	for col, records := range all {
		if err := b.Seed(string(col), records...); err != nil {
			return fmt.Errorf("seed %s: %w", col, err)
		}
	}
	return nil
}

func toAny[T any](items []T) []any {
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}
