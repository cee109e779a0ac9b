package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mfukui/actlog/internal/stubservice"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	addr := getenv("ACTLOG_STUB_LISTEN_ADDR", ":9000")
	anonKey := getenv("ACTLOG_STUB_ANON_KEY", "local-anon-key")
	secret := getenv("ACTLOG_STUB_TOKEN_SECRET", "local-development-token-secret")

	svc := stubservice.New(anonKey, secret)
	if email := os.Getenv("ACTLOG_STUB_SEED_EMAIL"); email != "" {
		svc.Seed(email, getenv("ACTLOG_STUB_SEED_PASSWORD", "secret1"))
		logrus.WithField("email", email).Info("seeded user")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:         addr,
		Handler:      svc.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("addr", addr).Info("stub service listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
