package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/BetterCallFirewall/Cryptoscope/internal/broker"
	"github.com/BetterCallFirewall/Cryptoscope/internal/config"
	"github.com/BetterCallFirewall/Cryptoscope/internal/models"
	"github.com/BetterCallFirewall/Cryptoscope/internal/web"
	"github.com/BetterCallFirewall/Cryptoscope/internal/websocket"
)

const eventBufferSize = 256

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web API, capture ingest and live websocket feed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg)
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	session, err := web.NewSession(cfg)
	if err != nil {
		return err
	}
	if flagEnv != "" && !session.Keys.SetEnvironment(flagEnv) {
		return fmt.Errorf("unknown environment %q", flagEnv)
	}

	hub := websocket.NewHub()
	server := web.NewServer(cfg.Web, session, hub, broker.New[models.Event](eventBufferSize))

	log.Printf("🚀 Cryptoscope %s, environment %s, markers %v", version, session.Keys.Current(), cfg.Capture.Markers)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gCtx)
		return nil
	})
	g.Go(func() error {
		server.Pump(gCtx)
		return nil
	})
	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("web server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Printf("🛑 Shutting down")
		return server.Stop()
	})

	return g.Wait()
}
