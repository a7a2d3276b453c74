package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/paranovaq/game-shop/internal/adapter/handler"
	"github.com/paranovaq/game-shop/internal/adapter/remote"
	"github.com/paranovaq/game-shop/internal/adapter/storage"
	"github.com/paranovaq/game-shop/internal/config"
	"github.com/paranovaq/game-shop/internal/core/domain"
	"github.com/paranovaq/game-shop/internal/core/service"
	"github.com/paranovaq/game-shop/internal/metrics"
)

func runServe(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	blobs, err := storage.OpenBlobStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer blobs.Close()
	logger.Info("storage ready", zap.String("driver", cfg.Storage.Driver))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var syncer *service.RemoteSyncer
	if cfg.Remote.Addr != "" {
		client, err := remote.Dial(cfg.Remote.Addr)
		if err != nil {
			return err
		}
		defer client.Close()

		syncer = service.NewRemoteSyncer(client, service.SyncerConfig{
			Workers:   cfg.Sync.Workers,
			QueueSize: cfg.Sync.QueueSize,
			Timeout:   cfg.GetRemoteTimeout(),
		}, logger, m)
		defer syncer.Close()
		logger.Info("remote sync enabled",
			zap.String("addr", cfg.Remote.Addr),
			zap.Int("workers", cfg.Sync.Workers),
		)
	} else {
		logger.Info("no remote catalog configured, running local-only")
	}

	seed, err := cfg.Catalog.SeedItems()
	if err != nil {
		return err
	}

	shop := service.NewShopService(service.Options{
		Persistence: storage.NewSnapshotPersistence(blobs),
		Syncer:      syncer,
		Logger:      logger,
		Metrics:     m,
		Role:        domain.Role(cfg.Session.Role),
		Seed:        seed,
	})
	shop.Start(ctx)

	mux := http.NewServeMux()
	handler.NewHTTPHandler(shop, logger).Register(mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: mux,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		logger.Info("HTTP server stopped")
		return nil
	})

	return g.Wait()
}
