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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/rutaCognizant/planning-poker/internal/adapters/http"
	"github.com/rutaCognizant/planning-poker/internal/app"
	"github.com/rutaCognizant/planning-poker/internal/audit"
	"github.com/rutaCognizant/planning-poker/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Err(err).Str("level", cfg.LogLevel).Msg("unknown log level, keeping info")
	}

	store, err := audit.Open(ctx, cfg.Audit)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Audit.Driver).Msg("failed to open audit store")
	}
	var auditLog audit.Logger = audit.Nop{}
	var closeAudit func() error
	if store != nil {
		al := audit.NewAsyncLogger(store, cfg.Audit.Buffer)
		auditLog, closeAudit = al, al.Close
	}
	log.Info().Str("driver", cfg.Audit.Driver).Msg("audit log ready")

	hub := app.NewHub(
		app.WithAudit(auditLog),
		app.WithPolicy(app.SimplePolicy{}),
	)
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()

	r := router.SetupRouter(ctx, cfg, hub, store)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Planning poker server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	<-hubDone

	if closeAudit != nil {
		if err := closeAudit(); err != nil {
			log.Error().Err(err).Msg("audit close")
		}
	}
	log.Info().Msg("Server exited gracefully")
}
