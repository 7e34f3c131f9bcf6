package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/hallikerijaved/CareGpt/internal/bootstrap"
	"github.com/hallikerijaved/CareGpt/internal/config"
	"github.com/hallikerijaved/CareGpt/internal/handler"
	"github.com/hallikerijaved/CareGpt/internal/logging"
	sessionService "github.com/hallikerijaved/CareGpt/internal/service/session"
)

const sweepInterval = time.Minute

func main() {
	logging.Preinit()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded, using process environment", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, closer, err := logging.Init(cfg.Log)
	if err != nil {
		slog.Error("failed to initialize logging", "error", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		closer.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	core, err := bootstrap.NewCore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	speechSvc := bootstrap.NewSpeech(cfg, logger)
	opts := sessionService.Options{
		IdleTimeout: cfg.Session.IdleTimeout,
		Logger:      logger,
	}
	deps := handler.Deps{
		Intents: core.Intents,
		Logger:  logger,
	}
	if speechSvc != nil {
		opts.Recognizer = speechSvc
		opts.Synthesizer = speechSvc
		deps.Speech = speechSvc
	}
	sessions := sessionService.NewService(core.Pipeline, opts)
	deps.Sessions = sessions

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sessions.Run(gctx, sweepInterval)
	})
	g.Go(func() error {
		logger.Info("CareGPT backend listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
