package port

import (
	"context"
	"errors"

	"github.com/paranovaq/game-shop/internal/core/domain"
)

// ErrNoSnapshot is returned when nothing has been saved under a key yet.
var ErrNoSnapshot = errors.New("no snapshot")

type Persistence interface {
	// LoadCatalog returns the saved catalog, or ErrNoSnapshot if none was saved
	LoadCatalog(ctx context.Context) ([]domain.Item, error)

	SaveCatalog(ctx context.Context, items []domain.Item) error

	// LoadCart returns the saved cart lines, or ErrNoSnapshot if none were saved
	LoadCart(ctx context.Context) ([]domain.CartLine, error)

	SaveCart(ctx context.Context, lines []domain.CartLine) error

	// ClearCart removes the saved cart entirely
	ClearCart(ctx context.Context) error
}

// BlobStore is an opaque key-value store that Persistence snapshots into.
type BlobStore interface {
	// Get returns the payload under key, or ErrNoSnapshot if absent
	Get(ctx context.Context, key string) ([]byte, error)

	// Put creates or replaces the payload under key
	Put(ctx context.Context, key string, payload []byte) error

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	Close() error
}
