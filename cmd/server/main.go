package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mfukui/actlog/internal/action"
	"github.com/mfukui/actlog/internal/activity"
	appauth "github.com/mfukui/actlog/internal/auth"
	"github.com/mfukui/actlog/internal/bootstrap"
	"github.com/mfukui/actlog/internal/config"
	httpserver "github.com/mfukui/actlog/internal/http"
	"github.com/mfukui/actlog/internal/ui"
)

func main() {
	logrus.Info("starting actlog server")

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The client handle is constructed exactly once and threaded through
	// every component; without it no auth or data operation is possible.
	client, err := bootstrap.New(cfg.ConfigEndpoint).Initialize(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize platform client")
	}

	sessionManager := appauth.NewSessionManager(cfg)
	authService := appauth.NewService(client, sessionManager)
	repo := activity.NewRepository(client)
	tracker := action.NewTracker()
	uiHandler := ui.NewHandler(cfg, repo, authService, tracker)

	r := httpserver.NewRouter(cfg, authService, uiHandler)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.WithField("addr", cfg.ListenAddr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("graceful shutdown failed")
	}
}
