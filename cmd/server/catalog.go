package main

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/paranovaq/game-shop/internal/adapter/handler"
	"github.com/paranovaq/game-shop/internal/adapter/remote"
	"github.com/paranovaq/game-shop/internal/adapter/storage"
	"github.com/paranovaq/game-shop/internal/config"
	"github.com/paranovaq/game-shop/internal/port"
)

func runCatalog(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	blobs, err := storage.OpenBlobStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer blobs.Close()

	var mirror port.StockMirror
	if cfg.Catalog.MirrorToRedis {
		client, err := storage.OpenRedis(ctx, cfg.Storage.Redis)
		if err != nil {
			return err
		}
		adapter := storage.NewRedisAdapter(client, cfg.Storage.Redis.KeyPrefix)
		defer adapter.Close()
		mirror = adapter
		logger.Info("mirroring stock to redis", zap.String("addr", cfg.Storage.Redis.Addr))
	}

	seed, err := cfg.Catalog.SeedItems()
	if err != nil {
		return err
	}

	catalogHandler, err := handler.NewGRPCHandler(ctx, storage.NewSnapshotPersistence(blobs), mirror, seed, logger)
	if err != nil {
		return err
	}

	grpcServer := grpc.NewServer()
	remote.RegisterCatalogServer(grpcServer, catalogHandler)

	lis, err := net.Listen("tcp", cfg.Catalog.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("gRPC catalog server listening", zap.String("addr", cfg.Catalog.GRPCAddr))
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")
		return nil
	})

	return g.Wait()
}
