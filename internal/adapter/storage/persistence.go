package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/paranovaq/game-shop/internal/core/domain"
	"github.com/paranovaq/game-shop/internal/port"
)

const (
	catalogBucket = "catalog"
	cartBucket    = "cart"
)

var _ port.Persistence = (*SnapshotPersistence)(nil)

// SnapshotPersistence stores the catalog and the cart as whole JSON blobs in
// a BlobStore, one bucket each.
type SnapshotPersistence struct {
	blobs port.BlobStore
}

func NewSnapshotPersistence(blobs port.BlobStore) *SnapshotPersistence {
	return &SnapshotPersistence{blobs: blobs}
}

func (p *SnapshotPersistence) LoadCatalog(ctx context.Context) ([]domain.Item, error) {
	var items []domain.Item
	if err := p.load(ctx, catalogBucket, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (p *SnapshotPersistence) SaveCatalog(ctx context.Context, items []domain.Item) error {
	if items == nil {
		items = []domain.Item{}
	}
	return p.save(ctx, catalogBucket, items)
}

func (p *SnapshotPersistence) LoadCart(ctx context.Context) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	if err := p.load(ctx, cartBucket, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (p *SnapshotPersistence) SaveCart(ctx context.Context, lines []domain.CartLine) error {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return p.save(ctx, cartBucket, lines)
}

func (p *SnapshotPersistence) ClearCart(ctx context.Context) error {
	if err := p.blobs.Delete(ctx, cartBucket); err != nil {
		return fmt.Errorf("delete %s: %w", cartBucket, err)
	}
	return nil
}

func (p *SnapshotPersistence) load(ctx context.Context, bucket string, out any) error {
	data, err := p.blobs.Get(ctx, bucket)
	if err != nil {
		return fmt.Errorf("load %s: %w", bucket, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", bucket, err)
	}
	return nil
}

func (p *SnapshotPersistence) save(ctx context.Context, bucket string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", bucket, err)
	}
	if err := p.blobs.Put(ctx, bucket, data); err != nil {
		return fmt.Errorf("save %s: %w", bucket, err)
	}
	return nil
}
