package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"validator_stats_bot/internal/config"
	"validator_stats_bot/internal/logging"
	"validator_stats_bot/internal/server"
	"validator_stats_bot/internal/stats"
	"validator_stats_bot/internal/telegram"
)

const (
	httpShutdownTimeout     = 5 * time.Second
	telegramShutdownTimeout = 10 * time.Second
)

func main() {
	configOnly := flag.Bool("config-only", false, "load and print configuration then exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Error("configuration error", logging.Fields{"error": err})
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.Setup(cfg)
	if err != nil {
		logging.Error("logger setup error", logging.Fields{"error": err})
		fmt.Fprintf(os.Stderr, "logger setup error: %v\n", err)
		os.Exit(1)
	}

	if *configOnly {
		logging.Info("configuration check", logging.Fields{"event": "config_only"})
		fmt.Println("configuration check: ok")
		fmt.Println(config.FormatRedacted(cfg))
		return
	}

	logger.WithFields(logging.Fields{
		"event": "startup",
		"mode":  cfg.Mode().String(),
	}).Info("configuration loaded")

	statsClient, err := stats.NewClient(cfg, logger)
	if err != nil {
		logger.WithError(err).Error("stats client setup error")
		fmt.Fprintf(os.Stderr, "stats client setup error: %v\n", err)
		os.Exit(1)
	}

	dispatcher := telegram.NewDispatcher(statsClient, logger)

	tgClient, err := telegram.NewClient(cfg, logger, dispatcher)
	if err != nil {
		logger.WithError(err).Error("telegram client setup error")
		fmt.Fprintf(os.Stderr, "telegram client setup error: %v\n", err)
		os.Exit(1)
	}

	logger.WithField("event", "telegram_ready").Info("telegram client initialized")

	// httpDone stays nil in polling mode so the select below never picks it.
	var httpDone chan error
	httpServer := newHTTPServer(cfg, tgClient.WebhookHandler, logger)
	if httpServer != nil {
		httpDone = make(chan error, 1)
		go func() {
			httpDone <- httpServer.ListenAndServe()
		}()
	}

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telegramCtx, cancelTelegram := context.WithCancel(context.Background())
	tgDone := make(chan error, 1)

	go func() {
		tgDone <- tgClient.Run(telegramCtx)
	}()

	exitCode := 0
	telegramStopped := false
	select {
	case <-signalCtx.Done():
		logger.WithField("event", "shutdown_signal").Info("received termination signal, stopping telegram updates")
	case err := <-tgDone:
		telegramStopped = true
		if err != nil {
			exitCode = 1
			logger.WithField("event", "telegram_start_error").WithError(err).Error("telegram client failed to start")
		} else {
			logger.WithField("event", "telegram_stopped_early").Warn("telegram client stopped before shutdown signal")
		}
	case err := <-httpDone:
		exitCode = 1
		logger.WithField("event", "http_stopped_early").WithError(err).Error("http server stopped before shutdown signal")
	}

	cancelTelegram()

	if httpServer != nil {
		httpCtx, cancelHTTP := context.WithTimeout(context.Background(), httpShutdownTimeout)
		if err := httpServer.Shutdown(httpCtx); err != nil {
			logger.WithField("event", "http_shutdown_error").WithError(err).Warn("http server did not shut down cleanly")
		}
		cancelHTTP()
	}

	waitCtx, cancelWait := context.WithTimeout(context.Background(), telegramShutdownTimeout)
	if !telegramStopped {
		select {
		case <-tgDone:
		case <-waitCtx.Done():
			logger.WithField("event", "telegram_shutdown_timeout").Warn("timed out waiting for telegram client to stop")
		}
	}

	if err := dispatcher.Drain(waitCtx); err != nil {
		logger.WithField("event", "drain_timeout").WithError(err).Warn("in-flight updates did not finish before shutdown")
	} else {
		logger.WithField("event", "drain_complete").Info("in-flight updates finished")
	}
	cancelWait()

	logger.WithField("event", "shutdown_complete").Info("shutdown complete")

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// newHTTPServer builds the webhook server. Long polling needs no listener, so
// it returns nil outside webhook mode without calling webhook.
func newHTTPServer(cfg config.Config, webhook func() http.Handler, logger *logrus.Entry) *server.Server {
	if cfg.Mode() != config.ModeWebhook {
		return nil
	}

	return server.NewServer(server.Options{
		Port:        cfg.Port,
		WebhookPath: cfg.WebhookPath,
		SecretToken: cfg.SecretToken,
		Webhook:     webhook(),
	}, logger)
}
