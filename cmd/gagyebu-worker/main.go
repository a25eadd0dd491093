package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"gagyebu/internal/amqp"
	"gagyebu/internal/backend"
	"gagyebu/internal/cli"
	applog "gagyebu/internal/log"
	"gagyebu/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)

	logger.Info("Starting gagyebu-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.RemoteBackend == "" {
		logger.Error("REMOTE_BACKEND is required for the sync worker")
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the sync worker")
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.Logger)

	local := cli.OpenStore(context.Background(), logger, factory, backend.Type(cfg.LocalBackend), cfg)
	if local.Cleanup != nil {
		defer func() { _ = local.Cleanup() }()
	}

	remote := cli.OpenStore(context.Background(), logger, factory, backend.Type(cfg.RemoteBackend), cfg)
	if remote.Cleanup != nil {
		defer func() { _ = remote.Cleanup() }()
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(local.Store, remote.Store)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeSnapshotDirty(ctx, func(msg *amqp.SnapshotDirtyMessage) error {
			return syncWorker.HandleDirty(ctx, msg)
		})
	})

	logger.Info("Worker started",
		"local_backend", cfg.LocalBackend,
		"remote_backend", cfg.RemoteBackend,
		"queue", cfg.AMQPQueue)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
