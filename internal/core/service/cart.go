package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/paranovaq/game-shop/internal/core/domain"
)

// AvailableToAdd returns how many more units of itemID may be added right
// now. It is recomputed from current stock and cart on every call.
func (s *ShopService) AvailableToAdd(itemID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.availableLocked(itemID)
}

func (s *ShopService) availableLocked(itemID int64) int {
	item, ok := s.catalog.Get(itemID)
	if !ok {
		return 0
	}
	return domain.AvailableToAdd(&item, s.cart.Quantity(itemID))
}

// AddToCart adds one unit of itemID. When no unit is available it leaves
// the cart untouched and reports SignalOutOfStock for a new line or
// SignalMaxReached for an existing one.
func (s *ShopService) AddToCart(ctx context.Context, itemID int64) (domain.Signal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.catalog.Get(itemID)
	if !ok {
		s.recordSignal(itemID, domain.SignalUnavailable)
		return domain.SignalUnavailable, fmt.Errorf("add item %d: %w", itemID, ErrItemNotFound)
	}

	inCart := s.cart.Quantity(itemID)
	if domain.AvailableToAdd(&item, inCart) == 0 {
		signal := domain.SignalOutOfStock
		if inCart > 0 {
			signal = domain.SignalMaxReached
		}
		s.recordSignal(itemID, signal)
		return signal, nil
	}

	s.cart.Set(itemID, inCart+1)
	s.cartChangedLocked(ctx)
	s.recordSignal(itemID, domain.SignalAdded)
	return domain.SignalAdded, nil
}

// SetQuantity clamps requested into [0, stock] and stores it. A clamped
// value of zero removes the line; a value clamped down from above stock
// reports SignalMaxReached.
func (s *ShopService) SetQuantity(ctx context.Context, itemID int64, requested int) domain.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()

	stock := 0
	if item, ok := s.catalog.Get(itemID); ok {
		stock = item.Stock
	}
	quantity := domain.ClampQuantity(requested, stock)

	s.cart.Set(itemID, quantity)
	s.cartChangedLocked(ctx)

	signal := domain.SignalUpdated
	switch {
	case quantity == 0:
		signal = domain.SignalRemoved
	case quantity < requested:
		signal = domain.SignalMaxReached
	}
	s.recordSignal(itemID, signal)
	return signal
}

// RemoveFromCart deletes the line for itemID regardless of stock.
func (s *ShopService) RemoveFromCart(ctx context.Context, itemID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Remove(itemID)
	s.cartChangedLocked(ctx)
}

// ClearCart empties the cart. Clearing an empty cart is a no-op.
func (s *ShopService) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearCartLocked(ctx)
}

// Cart returns the raw cart lines.
func (s *ShopService) Cart() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Lines()
}

// CartSnapshot is the cart joined with the catalog together with its
// totals, all read at the same instant.
type CartSnapshot struct {
	Lines      []domain.CartLineView `json:"lines"`
	TotalItems int                   `json:"totalItems"`
	TotalPrice domain.Price          `json:"totalPrice"`
}

// CartSnapshot returns lines and totals under a single lock, so the totals
// always describe the returned lines.
func (s *ShopService) CartSnapshot() CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.linesLocked()
	return CartSnapshot{
		Lines:      lines,
		TotalItems: totalItems(lines),
		TotalPrice: totalPrice(lines),
	}
}

// LineAvailability returns the cart quantity of itemID and how many more
// units may be added, read together.
func (s *ShopService) LineAvailability(itemID int64) (quantity, available int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Quantity(itemID), s.availableLocked(itemID)
}

// Lines returns the cart joined with the catalog. Lines whose item was
// deleted are flagged invalid and priced at zero.
func (s *ShopService) Lines() []domain.CartLineView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.linesLocked()
}

// TotalItems sums the quantities in the cart.
func (s *ShopService) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalItems(s.linesLocked())
}

// TotalPrice sums unit price times quantity over lines whose item exists.
// The sum saturates at MaxPrice; checkout rejects such a cart.
func (s *ShopService) TotalPrice() domain.Price {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalPrice(s.linesLocked())
}

func (s *ShopService) linesLocked() []domain.CartLineView {
	lines := s.cart.Lines()
	views := make([]domain.CartLineView, 0, len(lines))
	for _, line := range lines {
		view := domain.CartLineView{ItemID: line.ItemID, Quantity: line.Quantity}
		item, ok := s.catalog.Get(line.ItemID)
		if !ok {
			view.Invalid = true
			views = append(views, view)
			continue
		}
		lineTotal, fits := item.Price.Mul(line.Quantity)
		view.Title = item.Title
		view.UnitPrice = item.Price
		view.LineTotal = lineTotal
		view.Stock = domain.ClampStock(item.Stock)
		view.Available = domain.AvailableToAdd(&item, line.Quantity)
		view.Invalid = !fits || line.Quantity > view.Stock
		views = append(views, view)
	}
	return views
}

func totalItems(lines []domain.CartLineView) int {
	total := 0
	for _, line := range lines {
		total += line.Quantity
	}
	return total
}

func totalPrice(lines []domain.CartLineView) domain.Price {
	var total domain.Price
	for _, line := range lines {
		total, _ = total.Add(line.LineTotal)
	}
	return total
}

// cartChangedLocked persists the cart after an in-memory mutation. A
// summary awaiting confirmation no longer matches the cart, so the
// checkout falls back to idle.
func (s *ShopService) cartChangedLocked(ctx context.Context) {
	if s.checkout.state == domain.CheckoutConfirming {
		s.logger.Debug("cart changed during confirmation, checkout reset")
	}
	s.checkout.reset()
	s.saveCartLocked(ctx)
}

func (s *ShopService) recordSignal(itemID int64, signal domain.Signal) {
	s.metrics.CartSignals.WithLabelValues(string(signal)).Inc()
	if signal != domain.SignalAdded && signal != domain.SignalUpdated {
		s.logger.Debug("cart signal", zap.Int64("item_id", itemID), zap.String("signal", string(signal)))
	}
}
