package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/paranovaq/game-shop/internal/core/domain"
)

// Catalog returns every item ordered by ID.
func (s *ShopService) Catalog() []domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.List()
}

func (s *ShopService) Item(itemID int64) (domain.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Get(itemID)
}

// AddItem creates a catalog entry. An unset ID is assigned max(ID)+1;
// negative stock or price is clamped to zero.
func (s *ShopService) AddItem(ctx context.Context, item domain.Item) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireAdminLocked(); err != nil {
		return domain.Item{}, err
	}
	if item.ID > 0 {
		if _, exists := s.catalog.Get(item.ID); exists {
			return domain.Item{}, fmt.Errorf("item %d already exists", item.ID)
		}
	}

	stored := s.catalog.Add(item)
	s.saveCatalogLocked(ctx)
	s.syncer.UpsertItem(stored)
	s.logger.Info("catalog item added", zap.Int64("item_id", stored.ID), zap.String("title", stored.Title))
	return stored, nil
}

// UpdateItem replaces an existing entry. Descriptive fields and price are
// overwritten; stock is assigned through the same clamped path as SetStock.
func (s *ShopService) UpdateItem(ctx context.Context, item domain.Item) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireAdminLocked(); err != nil {
		return domain.Item{}, err
	}

	current, ok := s.catalog.Get(item.ID)
	if !ok {
		return domain.Item{}, fmt.Errorf("update item %d: %w", item.ID, ErrItemNotFound)
	}
	stock := item.Stock
	item.Stock = current.Stock
	if _, ok := s.catalog.Update(item); !ok {
		return domain.Item{}, fmt.Errorf("update item %d: %w", item.ID, ErrItemNotFound)
	}
	s.catalog.ApplyStock([]domain.StockChange{{ItemID: item.ID, NewStock: stock}})

	stored, _ := s.catalog.Get(item.ID)
	s.saveCatalogLocked(ctx)
	s.syncer.UpsertItem(stored)
	return stored, nil
}

// DeleteItem removes an entry. Cart lines that reference it stay in the
// cart and are rejected at checkout.
func (s *ShopService) DeleteItem(ctx context.Context, itemID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireAdminLocked(); err != nil {
		return err
	}

	if !s.catalog.Delete(itemID) {
		return fmt.Errorf("delete item %d: %w", itemID, ErrItemNotFound)
	}
	s.saveCatalogLocked(ctx)
	s.syncer.DeleteItem(itemID)
	s.logger.Info("catalog item deleted", zap.Int64("item_id", itemID))
	return nil
}

// SetStock assigns an absolute stock level through the same clamped path
// that checkout commits use, and returns the stored value.
func (s *ShopService) SetStock(ctx context.Context, itemID int64, stock int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireAdminLocked(); err != nil {
		return 0, err
	}

	applied := s.catalog.ApplyStock([]domain.StockChange{{ItemID: itemID, NewStock: stock}})
	if len(applied) == 0 {
		return 0, fmt.Errorf("set stock of item %d: %w", itemID, ErrItemNotFound)
	}
	s.saveCatalogLocked(ctx)
	s.syncer.CommitStockChange(itemID, applied[0].NewStock)
	return applied[0].NewStock, nil
}

func (s *ShopService) requireAdminLocked() error {
	if s.role != domain.RoleAdmin {
		return ErrForbidden
	}
	return nil
}
