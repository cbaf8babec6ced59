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

	"nursery-care-log/internal/adapters/auth/jwtverifier"
	"nursery-care-log/internal/platform/config"
	"nursery-care-log/internal/platform/logger"
	"nursery-care-log/internal/ports/auth"
	"nursery-care-log/internal/router"
)

// @title Nursery Care Log API
// @version 1.0
// @description Registro de acciones de cuidado de una guardería.
// @BasePath /
func main() {
	cfg := config.Load()
	log := cfg.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error("server error", map[string]any{"err": err})
		os.Exit(1)
	}
	log.Info("server stopped", nil)
}

// run levanta el servidor y bloquea hasta que ctx termina o el listener
// falla. El store se cierra siempre antes de volver.
func run(ctx context.Context, cfg config.Config, log logger.Logger) error {
	store, closeStore, err := router.OpenStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("store init: %w", err)
	}
	defer func() { _ = closeStore() }()

	// Sin JWT_SECRET => modo dev (X-Debug-User-ID).
	var verifier auth.AuthVerifier
	if cfg.JWTSecret != "" {
		v, err := jwtverifier.New(cfg.JWTSecret)
		if err != nil {
			return fmt.Errorf("jwt verifier init: %w", err)
		}
		verifier = v
	} else {
		log.Warn("JWT_SECRET not set, running in dev auth mode", nil)
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Store:        store,
		Logger:       log,
		Location:     cfg.DisplayLocation,

		ExclusiveActivities: !cfg.AllowConcurrentActivities,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("starting server", map[string]any{"addr": srv.Addr, "store": string(cfg.Store)})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-shutdownDone
	return nil
}
