package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/paranovaq/game-shop/internal/core/domain"
	"github.com/paranovaq/game-shop/internal/metrics"
)

func newTestSyncer(remote *mockRemote, workers, queueSize int) (*RemoteSyncer, *metrics.Metrics) {
	m := metrics.New(nil)
	cfg := SyncerConfig{Workers: workers, QueueSize: queueSize, Timeout: time.Second}
	if remote == nil {
		return NewRemoteSyncer(nil, cfg, nil, m), m
	}
	return NewRemoteSyncer(remote, cfg, nil, m), m
}

func TestRemoteSyncer_NilIsLocalOnly(t *testing.T) {
	var nilSyncer *RemoteSyncer
	assert.False(t, nilSyncer.Enabled())
	assert.False(t, nilSyncer.Online())
	nilSyncer.CommitStockChange(1, 2)
	nilSyncer.Close()

	syncer, _ := newTestSyncer(nil, 2, 4)
	assert.False(t, syncer.Enabled())
	_, err := syncer.FetchCatalog(context.Background())
	assert.Error(t, err)
	syncer.UpsertItem(game(1, "X", 1000, 1))
	syncer.Close()
}

func TestRemoteSyncer_PreservesPerItemOrder(t *testing.T) {
	remote := newMockRemote()
	syncer, _ := newTestSyncer(remote, 4, 256)

	for stock := 50; stock >= 0; stock-- {
		for id := int64(1); id <= 3; id++ {
			syncer.CommitStockChange(id, stock)
		}
	}
	syncer.Close()

	want := make([]int, 0, 51)
	for stock := 50; stock >= 0; stock-- {
		want = append(want, stock)
	}
	for id := int64(1); id <= 3; id++ {
		assert.Equal(t, want, remote.commitsFor(id), "item %d", id)
	}
	assert.True(t, syncer.Online())
}

func TestRemoteSyncer_FailureMarksOffline(t *testing.T) {
	remote := newMockRemote(game(1, "X", 1000, 5))
	syncer, m := newTestSyncer(remote, 1, 8)
	defer syncer.Close()

	items, err := syncer.FetchCatalog(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.True(t, syncer.Online())

	remote.setFail(true)
	_, err = syncer.FetchCatalog(context.Background())
	assert.Error(t, err)
	assert.False(t, syncer.Online())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncFailures.WithLabelValues(string(syncFetch))))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RemoteOnline))

	remote.setFail(false)
	_, err = syncer.FetchCatalog(context.Background())
	require.NoError(t, err)
	assert.True(t, syncer.Online())
}

func TestRemoteSyncer_RejectedCallKeepsOnline(t *testing.T) {
	remote := newMockRemote(game(1, "X", 1000, 5))
	syncer, m := newTestSyncer(remote, 1, 8)

	_, err := syncer.FetchCatalog(context.Background())
	require.NoError(t, err)
	require.True(t, syncer.Online())

	remote.failWith(status.Error(codes.NotFound, "item 1 not found"))
	syncer.CommitStockChange(1, 3)
	remote.failWith(errInjected)
	syncer.DeleteItem(1)
	syncer.Close()

	assert.True(t, syncer.Online())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncFailures.WithLabelValues(string(syncStock))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncFailures.WithLabelValues(string(syncDelete))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemoteOnline))
}

func TestRemoteSyncer_DeadlineMarksOffline(t *testing.T) {
	remote := newMockRemote(game(1, "X", 1000, 5))
	syncer, _ := newTestSyncer(remote, 1, 8)
	defer syncer.Close()

	_, err := syncer.FetchCatalog(context.Background())
	require.NoError(t, err)

	remote.failWith(context.DeadlineExceeded)
	_, err = syncer.FetchCatalog(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, syncer.Online())
}

func TestRemoteSyncer_FullQueueDrops(t *testing.T) {
	remote := newMockRemote()
	remote.block = make(chan struct{})
	remote.started = make(chan struct{}, 1)
	syncer, m := newTestSyncer(remote, 1, 1)

	syncer.CommitStockChange(1, 3)
	<-remote.started

	syncer.CommitStockChange(1, 2)
	syncer.CommitStockChange(1, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncDropped))

	close(remote.block)
	syncer.Close()
	assert.Equal(t, []int{3, 2}, remote.commitsFor(1))

	syncer.CommitStockChange(1, 0)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SyncDropped))
}

func TestShopService_RemoteFailureKeepsLocalCommit(t *testing.T) {
	ctx := context.Background()
	remote := newMockRemote(game(1, "X", 1000, 5))
	syncer, _ := newTestSyncer(remote, 2, 16)

	p := newMockPersistence()
	svc := NewShopService(Options{Persistence: p, Syncer: syncer})
	svc.Start(ctx)
	assert.True(t, svc.Status().Online)

	remote.setFail(true)
	svc.SetQuantity(ctx, 1, 3)
	receipt, err := svc.CommitCheckout(ctx)
	require.NoError(t, err)
	syncer.Close()

	assert.Equal(t, 3, receipt.ItemsPurchased)
	item, _ := svc.Item(1)
	assert.Equal(t, 2, item.Stock)
	assert.False(t, svc.Status().Online)
	assert.Empty(t, remote.commitsFor(1))
}

func TestShopService_MirrorsMutationsToRemote(t *testing.T) {
	ctx := context.Background()
	remote := newMockRemote(game(1, "X", 1000, 5), game(2, "Y", 2500, 5))
	syncer, _ := newTestSyncer(remote, 2, 16)

	svc := NewShopService(Options{Persistence: newMockPersistence(), Syncer: syncer, Role: domain.RoleAdmin})
	svc.Start(ctx)
	require.Len(t, svc.Catalog(), 2)

	svc.SetQuantity(ctx, 1, 2)
	_, err := svc.CommitCheckout(ctx)
	require.NoError(t, err)
	added, err := svc.AddItem(ctx, domain.Item{Title: "New", Price: 100, Stock: 1})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteItem(ctx, 2))
	syncer.Close()

	assert.Equal(t, []int{3}, remote.commitsFor(1))
	assert.Equal(t, []int64{added.ID}, remote.upserts)
	assert.Equal(t, []int64{2}, remote.deletes)
}

func TestShopService_RemoteUnreachableFallsBackToPersistence(t *testing.T) {
	ctx := context.Background()
	remote := newMockRemote()
	remote.setFail(true)
	syncer, _ := newTestSyncer(remote, 1, 4)
	defer syncer.Close()

	p := newMockPersistence()
	require.NoError(t, p.SaveCatalog(ctx, []domain.Item{game(3, "Saved", 700, 2)}))

	svc := NewShopService(Options{Persistence: p, Syncer: syncer})
	svc.Start(ctx)

	assert.Equal(t, []domain.Item{game(3, "Saved", 700, 2)}, svc.Catalog())
	assert.False(t, svc.Status().Online)
}
