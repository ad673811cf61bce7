package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xraph/wayfarer/api"
	"github.com/xraph/wayfarer/config"
	"github.com/xraph/wayfarer/engine"
	"github.com/xraph/wayfarer/openai"
	"github.com/xraph/wayfarer/planner"
)

func newServeCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the itinerary generation server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := buildLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, cleanup, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	client := openai.New(cfg.OpenAI.APIKey,
		openai.WithBaseURL(cfg.OpenAI.BaseURL),
		openai.WithModel(cfg.OpenAI.Model),
		openai.WithTemperature(cfg.OpenAI.Temperature),
		openai.WithMaxTokens(cfg.OpenAI.MaxTokens),
	)

	eng, err := engine.New(s,
		engine.WithPlanner(planner.New(client)),
		engine.WithConfig(cfg.EngineConfig()),
		engine.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	if err := eng.Start(ctx); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}

	gin.SetMode(cfg.Server.Mode)
	a := api.New(eng,
		api.WithLogger(logger),
		api.WithPinger(s),
	)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      a.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening",
			slog.String("addr", srv.Addr),
			slog.String("store", cfg.Store.Driver),
			slog.String("model", client.Model()),
		)
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", serveErr)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Stop accepting requests first, then drain the generation pool so
		// queued jobs reach a terminal status before exit.
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Error("http shutdown error", slog.String("error", shutdownErr.Error()))
		}
		if stopErr := eng.Stop(shutdownCtx); stopErr != nil {
			return fmt.Errorf("stop engine: %w", stopErr)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("server stopped")

	return nil
}
