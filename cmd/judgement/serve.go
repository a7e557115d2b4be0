package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/kmatth/judgement/cmd/judgement/shared"
	"github.com/kmatth/judgement/internal/server"
)

// ServeCmd runs the WebSocket game server.
type ServeCmd struct {
	Config string `kong:"default='judgement.hcl',help='Path to HCL config file'"`
	Addr   string `kong:"help='Override listen address (host)'"`
	Port   int    `kong:"help='Override listen port'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
	JSON   bool   `kong:"help='Structured JSON logging instead of console output'"`
	Seed   *int64 `kong:"help='Deterministic RNG seed for shuffles (optional)'"`
}

func (c *ServeCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)
	if c.JSON {
		logger = shared.SetupStructuredLogger(c.Debug)
	}

	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info().Int64("seed", seed).Msg("Using deterministic seed")
	} else {
		seed = time.Now().UnixNano()
		logger.Info().Int64("seed", seed).Msg("Using random seed")
	}

	s := server.NewServer(cfg, seed, logger, quartz.NewReal())

	logger.Info().
		Str("address", cfg.ListenAddress()).
		Int("round_cap", cfg.Game.RoundCap).
		Dur("turn_timeout", cfg.Game.TurnTimeout()).
		Msg("Starting Judgement server")

	ctx := shared.SetupSignalHandlerWithLogger(logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
