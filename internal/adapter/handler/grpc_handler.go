package handler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/paranovaq/game-shop/internal/adapter/remote"
	"github.com/paranovaq/game-shop/internal/core/domain"
	"github.com/paranovaq/game-shop/internal/core/store"
	"github.com/paranovaq/game-shop/internal/port"
)

// GRPCHandler serves the authoritative catalog that storefront sessions
// mirror their mutations to. Every mutation is saved to persistence and,
// when a mirror is configured, its stock level is published there too.
type GRPCHandler struct {
	mu          sync.Mutex
	catalog     *store.CatalogStore
	persistence port.Persistence
	mirror      port.StockMirror
	logger      *zap.Logger
}

// NewGRPCHandler loads the catalog from persistence, falling back to seed
// when nothing has been saved yet. mirror may be nil.
func NewGRPCHandler(ctx context.Context, persistence port.Persistence, mirror port.StockMirror, seed []domain.Item, logger *zap.Logger) (*GRPCHandler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &GRPCHandler{
		catalog:     store.NewCatalogStore(nil),
		persistence: persistence,
		mirror:      mirror,
		logger:      logger,
	}

	items, err := persistence.LoadCatalog(ctx)
	switch {
	case err == nil:
		h.catalog.Replace(items)
	case errors.Is(err, port.ErrNoSnapshot):
		h.catalog.Replace(seed)
		if err := persistence.SaveCatalog(ctx, h.catalog.List()); err != nil {
			return nil, fmt.Errorf("save seed catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	for _, item := range h.catalog.List() {
		h.mirrorStock(ctx, item.ID, item.Stock)
	}
	return h, nil
}

func (h *GRPCHandler) FetchCatalog(ctx context.Context, req *remote.FetchCatalogRequest) (*remote.FetchCatalogResponse, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return &remote.FetchCatalogResponse{Items: h.catalog.List()}, nil
}

func (h *GRPCHandler) CommitStockChange(ctx context.Context, req *remote.CommitStockChangeRequest) (*remote.CommitStockChangeResponse, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	stock, ok := h.catalog.SetStock(req.ItemID, req.NewStock)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "item %d not found", req.ItemID)
	}
	if err := h.save(ctx); err != nil {
		return nil, err
	}
	h.mirrorStock(ctx, req.ItemID, stock)
	return &remote.CommitStockChangeResponse{Stock: stock}, nil
}

func (h *GRPCHandler) UpsertItem(ctx context.Context, req *remote.UpsertItemRequest) (*remote.UpsertItemResponse, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	stored, ok := h.catalog.Update(req.Item)
	if !ok {
		stored = h.catalog.Add(req.Item)
	}
	if err := h.save(ctx); err != nil {
		return nil, err
	}
	h.mirrorStock(ctx, stored.ID, stored.Stock)
	h.logger.Info("catalog item upserted", zap.Int64("item_id", stored.ID), zap.String("title", stored.Title))
	return &remote.UpsertItemResponse{Item: stored}, nil
}

// DeleteItem is idempotent: deleting an unknown item reports Deleted=false.
func (h *GRPCHandler) DeleteItem(ctx context.Context, req *remote.DeleteItemRequest) (*remote.DeleteItemResponse, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.catalog.Delete(req.ItemID) {
		return &remote.DeleteItemResponse{Deleted: false}, nil
	}
	if err := h.save(ctx); err != nil {
		return nil, err
	}
	if h.mirror != nil {
		if err := h.mirror.DeleteStock(ctx, req.ItemID); err != nil {
			h.logger.Warn("stock mirror delete failed", zap.Int64("item_id", req.ItemID), zap.Error(err))
		}
	}
	h.logger.Info("catalog item deleted", zap.Int64("item_id", req.ItemID))
	return &remote.DeleteItemResponse{Deleted: true}, nil
}

func (h *GRPCHandler) save(ctx context.Context) error {
	if err := h.persistence.SaveCatalog(ctx, h.catalog.List()); err != nil {
		h.logger.Error("catalog save failed", zap.Error(err))
		return status.Error(codes.Unavailable, "catalog storage unavailable")
	}
	return nil
}

func (h *GRPCHandler) mirrorStock(ctx context.Context, itemID int64, stock int) {
	if h.mirror == nil {
		return
	}
	if err := h.mirror.SetStock(ctx, itemID, stock); err != nil {
		h.logger.Warn("stock mirror update failed", zap.Int64("item_id", itemID), zap.Error(err))
	}
}
