package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"review-sentiment/internal/config"
	"review-sentiment/internal/logging"
	"review-sentiment/internal/metrics"
	"review-sentiment/internal/notify"
	"review-sentiment/internal/repository"
	"review-sentiment/internal/sentiment"
	"review-sentiment/internal/server"
	"review-sentiment/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires every component, serves HTTP until ctx is cancelled and returns
// the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "config.yaml", "Path to optional YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(config.Options{
		ConfigFile: *configPath,
		EnvFiles:   []string{".env"},
	})
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	log.Info("Configuration loaded",
		"port", cfg.Port,
		"storage_driver", cfg.Storage.Driver,
		"log_level", cfg.LogLevel,
		"email_alerts", cfg.Alerts.EmailEnabled())

	classifier, err := sentiment.NewClassifier(cfg.Lexicon.Lexicon())
	if err != nil {
		log.Error("Invalid sentiment lexicon", "error", err)
		return 1
	}
	lex := classifier.Lexicon()
	log.Info("Sentiment classifier ready", "positive_markers", len(lex.Positive), "negative_markers", len(lex.Negative))

	repo, err := repository.Open(ctx, cfg, clockwork.NewRealClock(), log)
	if err != nil {
		log.Error("Failed to open review store", "driver", cfg.Storage.Driver, "error", err)
		return 1
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repo.Close(closeCtx); err != nil {
			log.Error("Failed to close review store", "error", err)
		}
	}()

	var notifier notify.Notifier
	if cfg.Alerts.EmailEnabled() {
		notifier = notify.NewResendNotifier(cfg.Alerts.ResendAPIKey, cfg.Alerts.FromEmail, cfg.Alerts.ToEmail, log)
	} else {
		log.Warn("RESEND_API_KEY not set, negative review alerts will only be logged")
		notifier = notify.NewLogNotifier(log)
	}

	reg := metrics.NewRegistry()
	reviews := service.NewReviewService(repo, classifier, notifier, metrics.NewReviewMetrics(reg), log)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: server.NewRouter(server.Deps{
			Reviews:        reviews,
			Logger:         log,
			Registry:       reg,
			HTTPMetrics:    metrics.NewHTTPMetrics(reg),
			MaxBodyBytes:   cfg.MaxBodyBytes,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Review service starting", "addr", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", "error", err)
			return 1
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := drain(shutdownCtx, srv, reviews); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
		return 1
	}

	log.Info("Review service stopped")
	return 0
}

type waiter interface {
	Wait()
}

// drain shuts the server down and then waits for in-flight alerts. The wait
// happens even when the HTTP shutdown fails.
func drain(ctx context.Context, srv *http.Server, alerts waiter) error {
	err := srv.Shutdown(ctx)
	alerts.Wait()
	return err
}
