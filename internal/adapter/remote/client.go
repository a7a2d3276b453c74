package remote

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/paranovaq/game-shop/internal/core/domain"
	"github.com/paranovaq/game-shop/internal/port"
)

// Client implements port.RemoteCatalog against a catalog gRPC server.
type Client struct {
	conn *grpc.ClientConn
}

// Dial creates a client for addr. The connection is established lazily, so
// an unreachable server surfaces on the first call.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial remote catalog %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) FetchCatalog(ctx context.Context) ([]domain.Item, error) {
	out := new(FetchCatalogResponse)
	if err := c.conn.Invoke(ctx, fetchCatalogMethod, &FetchCatalogRequest{}, out); err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", classify(err))
	}
	return out.Items, nil
}

func (c *Client) CommitStockChange(ctx context.Context, itemID int64, newStock int) error {
	in := &CommitStockChangeRequest{ItemID: itemID, NewStock: newStock}
	if err := c.conn.Invoke(ctx, commitStockChangeMethod, in, new(CommitStockChangeResponse)); err != nil {
		return fmt.Errorf("commit stock of item %d: %w", itemID, classify(err))
	}
	return nil
}

func (c *Client) UpsertItem(ctx context.Context, item domain.Item) error {
	if err := c.conn.Invoke(ctx, upsertItemMethod, &UpsertItemRequest{Item: item}, new(UpsertItemResponse)); err != nil {
		return fmt.Errorf("upsert item %d: %w", item.ID, classify(err))
	}
	return nil
}

func (c *Client) DeleteItem(ctx context.Context, itemID int64) error {
	if err := c.conn.Invoke(ctx, deleteItemMethod, &DeleteItemRequest{ItemID: itemID}, new(DeleteItemResponse)); err != nil {
		return fmt.Errorf("delete item %d: %w", itemID, classify(err))
	}
	return nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// classify tags transport failures with port.ErrRemoteUnavailable. Status
// codes the server returns on purpose, such as NotFound, pass through.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", port.ErrRemoteUnavailable, err)
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %w", port.ErrRemoteUnavailable, err)
	}
	return err
}
