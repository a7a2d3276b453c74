package port

import (
	"context"
	"errors"

	"github.com/paranovaq/game-shop/internal/core/domain"
)

// ErrRemoteUnavailable marks a RemoteCatalog failure caused by the transport
// rather than by the server rejecting the call.
var ErrRemoteUnavailable = errors.New("remote catalog unavailable")

// RemoteCatalog mirrors catalog mutations to a server. Every call is best
// effort from the session's point of view. Implementations wrap transport
// failures with ErrRemoteUnavailable.
type RemoteCatalog interface {
	FetchCatalog(ctx context.Context) ([]domain.Item, error)

	// CommitStockChange assigns an absolute stock level to an item
	CommitStockChange(ctx context.Context, itemID int64, newStock int) error

	UpsertItem(ctx context.Context, item domain.Item) error

	DeleteItem(ctx context.Context, itemID int64) error
}

// StockMirror publishes stock levels to a fast read-side cache.
type StockMirror interface {
	SetStock(ctx context.Context, itemID int64, stock int) error
	DeleteStock(ctx context.Context, itemID int64) error
}
