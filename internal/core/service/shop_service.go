package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/paranovaq/game-shop/internal/core/domain"
	"github.com/paranovaq/game-shop/internal/core/store"
	"github.com/paranovaq/game-shop/internal/metrics"
	"github.com/paranovaq/game-shop/internal/port"
)

// ShopService is the reconciliation engine for one client session. It owns
// the session's catalog and cart replicas; every mutation runs under mu so
// an availability check and the mutation it gates never interleave with
// another mutation.
type ShopService struct {
	mu sync.Mutex

	catalog     *store.CatalogStore
	cart        *store.CartStore
	persistence port.Persistence
	syncer      *RemoteSyncer
	logger      *zap.Logger
	metrics     *metrics.Metrics

	sessionID string
	role      domain.Role
	seed      []domain.Item
	checkout  checkoutFlow
}

type Options struct {
	Persistence port.Persistence
	// Syncer mirrors mutations to the remote catalog. Nil runs local-only.
	Syncer  *RemoteSyncer
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Role    domain.Role
	// Seed is the catalog used when neither the remote nor persistence has one.
	Seed []domain.Item
}

// Status is the session state shown next to the storefront.
type Status struct {
	SessionID string               `json:"sessionId"`
	Role      domain.Role          `json:"role"`
	Online    bool                 `json:"online"`
	Checkout  domain.CheckoutState `json:"checkout"`
	CartLines int                  `json:"cartLines"`
	Items     int                  `json:"catalogItems"`
}

func NewShopService(opts Options) *ShopService {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New(nil)
	}
	role := opts.Role
	if role == "" {
		role = domain.RoleStandard
	}
	return &ShopService{
		catalog:     store.NewCatalogStore(nil),
		cart:        store.NewCartStore(nil),
		persistence: opts.Persistence,
		syncer:      opts.Syncer,
		logger:      logger,
		metrics:     m,
		sessionID:   uuid.NewString(),
		role:        role,
		seed:        opts.Seed,
		checkout:    checkoutFlow{state: domain.CheckoutIdle},
	}
}

// Start restores the session. The catalog comes from the remote when it is
// reachable, else from persistence, else from the seed; the cart comes from
// persistence. Failures are logged and the session continues in memory.
func (s *ShopService) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	source := s.restoreCatalogLocked(ctx)

	lines, err := s.persistence.LoadCart(ctx)
	switch {
	case err == nil:
		s.cart.Replace(lines)
	case errors.Is(err, port.ErrNoSnapshot):
	default:
		s.persistenceFailure("load_cart", err)
	}

	s.logger.Info("session started",
		zap.String("session", s.sessionID),
		zap.String("catalog_source", source),
		zap.Int("catalog_items", s.catalog.Len()),
		zap.Int("cart_lines", s.cart.Len()),
	)
}

func (s *ShopService) restoreCatalogLocked(ctx context.Context) string {
	if s.syncer.Enabled() {
		items, err := s.syncer.FetchCatalog(ctx)
		if err == nil {
			s.catalog.Replace(items)
			s.saveCatalogLocked(ctx)
			return "remote"
		}
	}

	items, err := s.persistence.LoadCatalog(ctx)
	switch {
	case err == nil:
		s.catalog.Replace(items)
		return "persistence"
	case errors.Is(err, port.ErrNoSnapshot):
		s.catalog.Replace(s.seed)
		s.saveCatalogLocked(ctx)
		return "seed"
	default:
		// keep whatever is on disk untouched; run on the seed in memory
		s.persistenceFailure("load_catalog", err)
		s.catalog.Replace(s.seed)
		return "seed"
	}
}

func (s *ShopService) SetRole(role domain.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.role = role
}

func (s *ShopService) Role() domain.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

// Logout clears the cart and drops back to the standard role.
func (s *ShopService) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearCartLocked(ctx)
	s.role = domain.RoleStandard
	s.logger.Info("session logged out", zap.String("session", s.sessionID))
}

func (s *ShopService) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		SessionID: s.sessionID,
		Role:      s.role,
		Online:    s.syncer.Online(),
		Checkout:  s.checkout.state,
		CartLines: s.cart.Len(),
		Items:     s.catalog.Len(),
	}
}

func (s *ShopService) saveCatalogLocked(ctx context.Context) {
	if err := s.persistence.SaveCatalog(ctx, s.catalog.List()); err != nil {
		s.persistenceFailure("save_catalog", err)
	}
}

func (s *ShopService) saveCartLocked(ctx context.Context) {
	if err := s.persistence.SaveCart(ctx, s.cart.Lines()); err != nil {
		s.persistenceFailure("save_cart", err)
	}
}

func (s *ShopService) clearCartLocked(ctx context.Context) {
	s.cart.Clear()
	s.checkout.reset()
	if err := s.persistence.ClearCart(ctx); err != nil {
		s.persistenceFailure("clear_cart", err)
	}
}

func (s *ShopService) persistenceFailure(op string, err error) {
	s.metrics.PersistenceFailures.WithLabelValues(op).Inc()
	s.logger.Warn("persistence failure, continuing in memory",
		zap.String("op", op),
		zap.Error(err),
	)
}
