package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/paranovaq/game-shop/internal/core/domain"
)

type checkoutFlow struct {
	state   domain.CheckoutState
	summary *domain.Summary
}

func (f *checkoutFlow) reset() {
	f.state = domain.CheckoutIdle
	f.summary = nil
}

// CheckoutState returns where the current checkout attempt stands.
func (s *ShopService) CheckoutState() domain.CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkout.state
}

// PendingSummary returns the summary awaiting confirmation, if any.
func (s *ShopService) PendingSummary() (domain.Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkout.summary == nil {
		return domain.Summary{}, false
	}
	return *s.checkout.summary, true
}

// ValidateCheckout re-reads current stock for every cart line. On success
// the checkout moves to confirming and the order summary is returned; on
// failure it is rejected with a *ValidationError listing every violation.
// Neither outcome touches the cart or the catalog.
func (s *ShopService) ValidateCheckout(ctx context.Context) (domain.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkout.state = domain.CheckoutValidating
	summary, err := s.validateLocked()
	if err != nil {
		s.rejectLocked(err)
		return domain.Summary{}, err
	}

	s.checkout.state = domain.CheckoutConfirming
	s.checkout.summary = &summary
	return summary, nil
}

// CancelCheckout abandons a checkout awaiting confirmation. It has no side
// effects on the cart or the catalog.
func (s *ShopService) CancelCheckout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkout.state == domain.CheckoutConfirming {
		s.metrics.Checkouts.WithLabelValues("cancelled").Inc()
	}
	s.checkout.reset()
}

// ConfirmCheckout commits the checkout that ValidateCheckout moved to
// confirming.
func (s *ShopService) ConfirmCheckout(ctx context.Context) (domain.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkout.state != domain.CheckoutConfirming {
		return domain.Receipt{}, ErrNotConfirming
	}
	return s.commitLocked(ctx)
}

// CommitCheckout validates and commits the cart in one step.
func (s *ShopService) CommitCheckout(ctx context.Context) (domain.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(ctx)
}

// commitLocked validates again against current stock, computes every
// decrement, then applies them to the catalog as one unit. The remote
// mirror is queued afterwards and never rolls the local commit back.
func (s *ShopService) commitLocked(ctx context.Context) (domain.Receipt, error) {
	s.checkout.state = domain.CheckoutValidating
	summary, err := s.validateLocked()
	if err != nil {
		s.rejectLocked(err)
		return domain.Receipt{}, err
	}

	s.checkout.state = domain.CheckoutCommitting
	changes := make([]domain.StockChange, 0, len(summary.Lines))
	for _, line := range summary.Lines {
		item, _ := s.catalog.Get(line.ItemID)
		changes = append(changes, domain.StockChange{
			ItemID:   line.ItemID,
			NewStock: domain.ClampStock(item.Stock - line.Quantity),
		})
	}

	applied := s.catalog.ApplyStock(changes)
	s.saveCatalogLocked(ctx)
	for _, c := range applied {
		s.syncer.CommitStockChange(c.ItemID, c.NewStock)
	}

	s.cart.Clear()
	if err := s.persistence.ClearCart(ctx); err != nil {
		s.persistenceFailure("clear_cart", err)
	}

	s.checkout.state = domain.CheckoutCompleted
	receipt := domain.Receipt{
		CheckoutID:     uuid.NewString(),
		ItemsPurchased: summary.TotalItems,
		TotalPrice:     summary.Total.String(),
		Message: fmt.Sprintf("Order completed! %d items for %s. Thank you!",
			summary.TotalItems, summary.Total.Dollars()),
		Changes:     applied,
		CompletedAt: time.Now().UTC(),
	}

	s.metrics.Checkouts.WithLabelValues("completed").Inc()
	s.metrics.ItemsSold.Add(float64(summary.TotalItems))
	s.logger.Info("checkout completed",
		zap.String("session", s.sessionID),
		zap.String("checkout_id", receipt.CheckoutID),
		zap.Int("items", receipt.ItemsPurchased),
		zap.String("total", receipt.TotalPrice),
	)

	s.checkout.reset()
	return receipt, nil
}

func (s *ShopService) validateLocked() (domain.Summary, error) {
	lines := s.cart.Lines()
	if len(lines) == 0 {
		return domain.Summary{}, &ValidationError{
			Violations: []domain.Violation{{Reason: domain.ReasonCartEmpty}},
		}
	}

	var violations []domain.Violation
	summary := domain.Summary{Lines: make([]domain.SummaryLine, 0, len(lines))}
	for _, line := range lines {
		item, ok := s.catalog.Get(line.ItemID)
		if !ok {
			violations = append(violations, domain.Violation{
				ItemID:    line.ItemID,
				Reason:    domain.ReasonItemUnavailable,
				Requested: line.Quantity,
			})
			continue
		}

		stock := domain.ClampStock(item.Stock)
		if line.Quantity > stock {
			violations = append(violations, domain.Violation{
				ItemID:    item.ID,
				Title:     item.Title,
				Reason:    domain.ReasonInsufficientStock,
				Requested: line.Quantity,
				Available: stock,
			})
			continue
		}

		lineTotal, ok := item.Price.Mul(line.Quantity)
		total := summary.Total
		if ok {
			total, ok = total.Add(lineTotal)
		}
		if !ok {
			violations = append(violations, domain.Violation{
				ItemID:    item.ID,
				Title:     item.Title,
				Reason:    domain.ReasonTotalTooLarge,
				Requested: line.Quantity,
				Available: stock,
			})
			continue
		}
		summary.Total = total
		summary.Lines = append(summary.Lines, domain.SummaryLine{
			ItemID:    item.ID,
			Title:     item.Title,
			Quantity:  line.Quantity,
			UnitPrice: item.Price,
			LineTotal: lineTotal,
		})
		summary.TotalItems += line.Quantity
	}

	if len(violations) > 0 {
		return domain.Summary{}, &ValidationError{Violations: violations}
	}
	return summary, nil
}

func (s *ShopService) rejectLocked(err error) {
	s.checkout.state = domain.CheckoutRejected
	s.checkout.summary = nil
	s.metrics.Checkouts.WithLabelValues("rejected").Inc()
	s.logger.Info("checkout rejected",
		zap.String("session", s.sessionID),
		zap.Error(err),
	)
}
