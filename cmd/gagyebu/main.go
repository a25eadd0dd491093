package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gagyebu/internal/amqp"
	"gagyebu/internal/auth"
	"gagyebu/internal/backend"
	"gagyebu/internal/cli"
	apphttp "gagyebu/internal/http"
	applog "gagyebu/internal/log"
	"gagyebu/internal/session"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	// Sessions read and write the local backend.
	factory := backend.NewFactory(logger.Logger)
	result := cli.OpenStore(context.Background(), logger, factory, backend.Type(cfg.LocalBackend), cfg)
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Store cleanup failed", "error", err)
			}
		}()
	}

	// Optional AMQP publisher; without it the worker has nothing to mirror
	// and the remote copy is only written by direct firestore sessions.
	var publisher session.Publisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without sync events", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	creds := auth.NewCredentialCache(cfg.DataDir)

	srv := apphttp.NewServer(":"+cfg.Port, result.Store, auth.PlainKeyer{}, creds, apphttp.Options{
		Publisher:        publisher,
		SaveTimeout:      cfg.SaveTimeout,
		SessionTTL:       cfg.SessionTTL,
		SessionCacheSize: cfg.SessionCacheSize,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting gagyebu server", "port", cfg.Port, "backend", cfg.LocalBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
