package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abenov/coursehub/config"
	"github.com/abenov/coursehub/internal/api"
	"github.com/abenov/coursehub/internal/courses"
	"github.com/abenov/coursehub/internal/health"
	"github.com/abenov/coursehub/internal/hydrate"
	ctxlog "github.com/abenov/coursehub/internal/log"
	"github.com/abenov/coursehub/internal/metrics"
	"github.com/abenov/coursehub/internal/session"
	"github.com/abenov/coursehub/internal/token"
	httptransport "github.com/abenov/coursehub/internal/transport/http"
	"github.com/abenov/coursehub/internal/transport/http/handler"
	"github.com/abenov/coursehub/internal/watch"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokens := token.NewStore(cfg.TokenPath)
	apiClient := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout(), tokens, logger)
	catalog := courses.NewClient(apiClient)
	sess := session.NewManager(tokens, apiClient, logger)

	metrics.Register()
	checker := health.NewChecker(apiClient, logger, prometheus.DefaultRegisterer)

	// Observers of the shared credential. Neither mutates session state.
	listener, err := watch.NewListener(tokens, logger)
	if err != nil {
		log.Fatalf("token watcher: %v", err)
	}
	if err := listener.Start(ctx); err != nil {
		log.Fatalf("token watcher: %v", err)
	}
	defer func() { _ = listener.Close() }()

	expiry := watch.NewExpiryMonitor(tokens, logger)
	if err := expiry.Start(); err != nil {
		log.Fatalf("expiry monitor: %v", err)
	}
	defer expiry.Stop()

	// Reconcile the stored credential before the first render. An error
	// still releases the gate; the UI starts unauthenticated instead.
	hydrator := hydrate.NewController(tokens, sess, logger)
	go hydrator.Run(ctx)

	authHandler := handler.NewAuthHandler(sess, logger)
	pageHandler := handler.NewPageHandler(catalog, sess, logger)

	srv := http.Server{
		Addr:    "127.0.0.1:" + cfg.UIPort,
		Handler: httptransport.NewRouter(logger, authHandler, pageHandler, sess, tokens),
	}

	metricsSrv := metrics.NewServer("127.0.0.1:"+cfg.MetricsPort, checker)

	go func() {
		<-hydrator.Ready()
		logger.Info("session hydrated", "authenticated", sess.State().Authenticated())

		logger.Info("ui server started", "port", cfg.UIPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ui server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("ui server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
