package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/paranovaq/game-shop/internal/port"
)

const (
	stateKeyPrefix = "state:"
	stockKeyPrefix = "stock:"
)

var (
	_ port.BlobStore   = (*RedisAdapter)(nil)
	_ port.StockMirror = (*RedisAdapter)(nil)
)

// setStockScript stores max(0, ARGV[1]) and returns the stored value.
var setStockScript = redis.NewScript(`
local key = KEYS[1]
local stock = tonumber(ARGV[1])

if stock < 0 then
	stock = 0
end

redis.call('SET', key, stock)
return stock
`)

type RedisAdapter struct {
	client *redis.Client
	prefix string
}

func NewRedisAdapter(client *redis.Client, prefix string) *RedisAdapter {
	return &RedisAdapter{client: client, prefix: prefix}
}

func (r *RedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+stateKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, port.ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *RedisAdapter) Put(ctx context.Context, key string, payload []byte) error {
	return r.client.Set(ctx, r.prefix+stateKeyPrefix+key, payload, 0).Err()
}

func (r *RedisAdapter) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+stateKeyPrefix+key).Err()
}

func (r *RedisAdapter) Close() error { return r.client.Close() }

// SetStock mirrors an item's stock level, clamped at zero.
func (r *RedisAdapter) SetStock(ctx context.Context, itemID int64, stock int) error {
	_, err := setStockScript.Run(ctx, r.client, []string{r.stockKey(itemID)}, stock).Int()
	return err
}

// Stock returns the mirrored stock level of an item.
func (r *RedisAdapter) Stock(ctx context.Context, itemID int64) (int, error) {
	stock, err := r.client.Get(ctx, r.stockKey(itemID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("item %d: %w", itemID, port.ErrNoSnapshot)
	}
	return stock, err
}

func (r *RedisAdapter) DeleteStock(ctx context.Context, itemID int64) error {
	return r.client.Del(ctx, r.stockKey(itemID)).Err()
}

func (r *RedisAdapter) stockKey(itemID int64) string {
	return r.prefix + stockKeyPrefix + strconv.FormatInt(itemID, 10)
}
