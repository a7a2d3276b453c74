package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/paranovaq/game-shop/internal/core/domain"
	"github.com/paranovaq/game-shop/internal/port"
)

var (
	errInjected    = errors.New("injected failure")
	errUnreachable = fmt.Errorf("injected failure: %w", port.ErrRemoteUnavailable)
)

// Mock Persistence
type mockPersistence struct {
	mu         sync.Mutex
	catalog    []domain.Item
	cart       []domain.CartLine
	hasCatalog bool
	hasCart    bool
	fail       bool
}

func newMockPersistence() *mockPersistence {
	return &mockPersistence{}
}

func (m *mockPersistence) LoadCatalog(ctx context.Context) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errInjected
	}
	if !m.hasCatalog {
		return nil, port.ErrNoSnapshot
	}
	return append([]domain.Item(nil), m.catalog...), nil
}

func (m *mockPersistence) SaveCatalog(ctx context.Context, items []domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errInjected
	}
	m.catalog = append([]domain.Item(nil), items...)
	m.hasCatalog = true
	return nil
}

func (m *mockPersistence) LoadCart(ctx context.Context) ([]domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errInjected
	}
	if !m.hasCart {
		return nil, port.ErrNoSnapshot
	}
	return append([]domain.CartLine(nil), m.cart...), nil
}

func (m *mockPersistence) SaveCart(ctx context.Context, lines []domain.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errInjected
	}
	m.cart = append([]domain.CartLine(nil), lines...)
	m.hasCart = true
	return nil
}

func (m *mockPersistence) ClearCart(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errInjected
	}
	m.cart = nil
	m.hasCart = false
	return nil
}

func (m *mockPersistence) setFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

func (m *mockPersistence) savedCatalog() []domain.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Item(nil), m.catalog...)
}

func (m *mockPersistence) savedCart() ([]domain.CartLine, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.CartLine(nil), m.cart...), m.hasCart
}

// Mock RemoteCatalog
type mockRemote struct {
	mu      sync.Mutex
	items   []domain.Item
	failErr error
	commits map[int64][]int
	upserts []int64
	deletes []int64

	// block, when set, holds every mutation until it is closed
	block   chan struct{}
	started chan struct{}
}

func newMockRemote(items ...domain.Item) *mockRemote {
	return &mockRemote{
		items:   items,
		commits: make(map[int64][]int),
	}
}

func (m *mockRemote) FetchCatalog(ctx context.Context) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	return append([]domain.Item(nil), m.items...), nil
}

func (m *mockRemote) CommitStockChange(ctx context.Context, itemID int64, newStock int) error {
	m.wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.commits[itemID] = append(m.commits[itemID], newStock)
	return nil
}

func (m *mockRemote) UpsertItem(ctx context.Context, item domain.Item) error {
	m.wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.upserts = append(m.upserts, item.ID)
	return nil
}

func (m *mockRemote) DeleteItem(ctx context.Context, itemID int64) error {
	m.wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.deletes = append(m.deletes, itemID)
	return nil
}

func (m *mockRemote) wait() {
	if m.block == nil {
		return
	}
	if m.started != nil {
		select {
		case m.started <- struct{}{}:
		default:
		}
	}
	<-m.block
}

// setFail makes every call fail as if the server could not be reached.
func (m *mockRemote) setFail(fail bool) {
	if fail {
		m.failWith(errUnreachable)
		return
	}
	m.failWith(nil)
}

func (m *mockRemote) failWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

func (m *mockRemote) commitsFor(itemID int64) []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.commits[itemID]...)
}

func game(id int64, title string, cents int64, stock int) domain.Item {
	return domain.Item{ID: id, Title: title, Genre: "Action", Price: domain.Price(cents), Stock: stock}
}
