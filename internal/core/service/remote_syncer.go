package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/paranovaq/game-shop/internal/core/domain"
	"github.com/paranovaq/game-shop/internal/metrics"
	"github.com/paranovaq/game-shop/internal/port"
)

type syncOp string

const (
	syncStock  syncOp = "commit_stock"
	syncUpsert syncOp = "upsert_item"
	syncDelete syncOp = "delete_item"
	syncFetch  syncOp = "fetch_catalog"
)

type syncTask struct {
	op     syncOp
	itemID int64
	stock  int
	item   domain.Item
}

// RemoteSyncer mirrors local catalog mutations to the remote catalog on a
// pool of workers. Tasks are sharded by item ID so updates for one item are
// applied in order; there is no ordering across items. Enqueueing never
// blocks: a full queue drops the task and counts it.
type RemoteSyncer struct {
	remote  port.RemoteCatalog
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	closed bool
	queues []chan syncTask
	wg     sync.WaitGroup
	online atomic.Bool
}

type SyncerConfig struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

// NewRemoteSyncer starts cfg.Workers workers. A nil remote yields a syncer
// that runs the session local-only and discards every task.
func NewRemoteSyncer(remote port.RemoteCatalog, cfg SyncerConfig, logger *zap.Logger, m *metrics.Metrics) *RemoteSyncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New(nil)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}

	r := &RemoteSyncer{
		remote:  remote,
		timeout: cfg.Timeout,
		logger:  logger,
		metrics: m,
	}
	if remote == nil {
		return r
	}

	r.queues = make([]chan syncTask, cfg.Workers)
	for i := range r.queues {
		r.queues[i] = make(chan syncTask, cfg.QueueSize)
		r.wg.Add(1)
		go func(id int, queue <-chan syncTask) {
			defer r.wg.Done()
			r.workerLoop(id, queue)
		}(i, r.queues[i])
	}
	return r
}

// Enabled reports whether a remote catalog is configured.
func (r *RemoteSyncer) Enabled() bool {
	return r != nil && r.remote != nil
}

// Online reports whether the remote was reachable on the last call.
func (r *RemoteSyncer) Online() bool {
	return r.Enabled() && r.online.Load()
}

// FetchCatalog calls the remote synchronously, bounded by the sync timeout.
func (r *RemoteSyncer) FetchCatalog(ctx context.Context) ([]domain.Item, error) {
	if !r.Enabled() {
		return nil, port.ErrNoSnapshot
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	items, err := r.remote.FetchCatalog(ctx)
	r.observe(syncTask{op: syncFetch}, err)
	return items, err
}

func (r *RemoteSyncer) CommitStockChange(itemID int64, newStock int) {
	r.enqueue(syncTask{op: syncStock, itemID: itemID, stock: newStock})
}

func (r *RemoteSyncer) UpsertItem(item domain.Item) {
	r.enqueue(syncTask{op: syncUpsert, itemID: item.ID, item: item})
}

func (r *RemoteSyncer) DeleteItem(itemID int64) {
	r.enqueue(syncTask{op: syncDelete, itemID: itemID})
}

// Close stops accepting tasks, drains the queues and waits for the workers.
func (r *RemoteSyncer) Close() {
	if !r.Enabled() {
		return
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	for _, q := range r.queues {
		close(q)
	}
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *RemoteSyncer) enqueue(task syncTask) {
	if !r.Enabled() {
		return
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.drop(task, "closed")
		return
	}

	select {
	case r.queues[r.shard(task.itemID)] <- task:
	default:
		r.drop(task, "queue full")
	}
}

func (r *RemoteSyncer) shard(itemID int64) int {
	n := int64(len(r.queues))
	i := itemID % n
	if i < 0 {
		i += n
	}
	return int(i)
}

func (r *RemoteSyncer) drop(task syncTask, reason string) {
	r.metrics.SyncDropped.Inc()
	r.logger.Warn("remote sync task dropped",
		zap.String("op", string(task.op)),
		zap.Int64("item_id", task.itemID),
		zap.String("reason", reason),
	)
}

func (r *RemoteSyncer) workerLoop(id int, queue <-chan syncTask) {
	for task := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)

		var err error
		switch task.op {
		case syncStock:
			err = r.remote.CommitStockChange(ctx, task.itemID, task.stock)
		case syncUpsert:
			err = r.remote.UpsertItem(ctx, task.item)
		case syncDelete:
			err = r.remote.DeleteItem(ctx, task.itemID)
		}
		r.observe(task, err)
		if err == nil {
			r.logger.Debug("remote sync applied",
				zap.Int("worker", id),
				zap.String("op", string(task.op)),
				zap.Int64("item_id", task.itemID),
			)
		}

		cancel()
	}
}

// observe flips the online flag. Only transport failures take the session
// offline; a call the server rejects still proves it reachable. Failures are
// logged and counted, never returned to the session.
func (r *RemoteSyncer) observe(task syncTask, err error) {
	if err != nil {
		r.metrics.SyncFailures.WithLabelValues(string(task.op)).Inc()
		r.logger.Warn("remote sync failed",
			zap.String("op", string(task.op)),
			zap.Int64("item_id", task.itemID),
			zap.Error(err),
		)
		if !unreachable(err) {
			return
		}
		if r.online.Swap(false) {
			r.logger.Warn("remote catalog unreachable, continuing local-only")
		}
		r.metrics.RemoteOnline.Set(0)
		return
	}
	if !r.online.Swap(true) {
		r.logger.Info("remote catalog online")
	}
	r.metrics.RemoteOnline.Set(1)
}

func unreachable(err error) bool {
	return errors.Is(err, port.ErrRemoteUnavailable) || errors.Is(err, context.DeadlineExceeded)
}
