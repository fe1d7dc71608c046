package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/bootstrap"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/config"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/tracing"
)

const defaultShutdownTimeout = 15 * time.Second

// httpServer is what Run needs from the account service listener.
type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
	Close() error
	Addr() string
}

type realServer struct{ *http.Server }

func (r realServer) Addr() string { return r.Server.Addr }

// serverBuilder builds the server and returns a cleanup function.
type serverBuilder func() (httpServer, func(), error)

// runOptions carries the process-level settings Run reports and enforces.
type runOptions struct {
	Service         string
	Version         string
	Env             string
	ShutdownTimeout time.Duration
}

func optionsFrom(cfg *config.Config) runOptions {
	return runOptions{
		Service:         tracing.ServiceName,
		Version:         cfg.Version,
		Env:             cfg.Env,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}
}

func Run(build serverBuilder, sigCh <-chan os.Signal, lg zerolog.Logger, opts runOptions) int {
	lg = lg.With().Str("service", opts.Service).Str("version", opts.Version).Logger()
	lg.Info().Str("env", opts.Env).Msg("starting")

	srv, cleanup, err := build()
	if err != nil {
		lg.Error().Err(err).Msg("bootstrap failed")
		return 1
	}
	defer cleanup()

	errCh := make(chan error, 1)
	go func() {
		lg.Info().Str("addr", srv.Addr()).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		lg.Info().Str("signal", sig.String()).Msg("shutdown signal received")

	case err := <-errCh:
		// exit non-zero so the orchestrator restarts us
		lg.Error().Err(err).Msg("server crashed")
		return 1
	}

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		lg.Error().Err(err).Dur("timeout", timeout).Msg("graceful shutdown failed")
		_ = srv.Close()
	}

	lg.Info().Msg("shutdown complete")
	return 0
}

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		zlog.Error().Err(err).Msg("config load failed")
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	build := func() (httpServer, func(), error) {
		srv, cleanup, err := bootstrap.NewServerFromConfig(cfg)
		if err != nil {
			return nil, nil, err
		}
		return realServer{srv}, cleanup, nil
	}

	code := Run(build, sigCh, zlog.Logger, optionsFrom(cfg))
	signal.Stop(sigCh)
	os.Exit(code)
}
