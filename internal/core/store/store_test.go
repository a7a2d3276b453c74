package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paranovaq/game-shop/internal/core/domain"
)

func TestCatalogStore_ReplaceNormalizes(t *testing.T) {
	s := NewCatalogStore([]domain.Item{
		{ID: 3, Title: "C", Stock: -2, Price: -100},
		{Title: "NoID", Stock: 1},
		{ID: 1, Title: "A", Stock: 4, Price: 999},
	})

	items := s.List()
	require.Len(t, items, 3)
	assert.Equal(t, []int64{1, 3, 4}, []int64{items[0].ID, items[1].ID, items[2].ID})
	assert.Equal(t, 0, items[1].Stock)
	assert.Equal(t, domain.Price(0), items[1].Price)
}

func TestCatalogStore_AddAssignsNextID(t *testing.T) {
	s := NewCatalogStore([]domain.Item{{ID: 7, Title: "G"}})

	added := s.Add(domain.Item{Title: "H", Stock: 2})
	assert.Equal(t, int64(8), added.ID)

	empty := NewCatalogStore(nil)
	assert.Equal(t, int64(1), empty.Add(domain.Item{Title: "First"}).ID)
}

func TestCatalogStore_UpdateAndDelete(t *testing.T) {
	s := NewCatalogStore([]domain.Item{{ID: 1, Title: "A", Stock: 4}})

	_, ok := s.Update(domain.Item{ID: 2, Title: "B"})
	assert.False(t, ok)

	updated, ok := s.Update(domain.Item{ID: 1, Title: "A2", Stock: -1})
	require.True(t, ok)
	assert.Equal(t, 0, updated.Stock)

	assert.True(t, s.Delete(1))
	assert.False(t, s.Delete(1))
	assert.Equal(t, 0, s.Len())
}

func TestCatalogStore_StockUpdatesClampAtZero(t *testing.T) {
	s := NewCatalogStore([]domain.Item{{ID: 1, Stock: 4}, {ID: 2, Stock: 2}})

	stock, ok := s.SetStock(1, -3)
	require.True(t, ok)
	assert.Equal(t, 0, stock)
	_, ok = s.SetStock(9, 1)
	assert.False(t, ok)

	applied := s.ApplyStock([]domain.StockChange{
		{ItemID: 1, NewStock: 5},
		{ItemID: 9, NewStock: 1},
		{ItemID: 2, NewStock: -1},
	})
	assert.Equal(t, []domain.StockChange{{ItemID: 1, NewStock: 5}, {ItemID: 2, NewStock: 0}}, applied)
}

func TestCatalogStore_ApplyStockIsAllOrNothingToReaders(t *testing.T) {
	s := NewCatalogStore([]domain.Item{{ID: 1, Stock: 10}, {ID: 2, Stock: 10}})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 9; i >= 0; i-- {
			s.ApplyStock([]domain.StockChange{{ItemID: 1, NewStock: i}, {ItemID: 2, NewStock: i}})
		}
	}()

	for i := 0; i < 200; i++ {
		items := s.List()
		require.Equal(t, items[0].Stock, items[1].Stock)
	}
	wg.Wait()
}

func TestCartStore_ReplaceMergesDuplicates(t *testing.T) {
	s := NewCartStore([]domain.CartLine{
		{ItemID: 2, Quantity: 1},
		{ItemID: 1, Quantity: 0},
		{ItemID: 2, Quantity: 2},
		{ItemID: 3, Quantity: 1},
	})

	assert.Equal(t, []domain.CartLine{{ItemID: 2, Quantity: 3}, {ItemID: 3, Quantity: 1}}, s.Lines())
}

func TestCartStore_SetKeepsOrderAndRemovesNonPositive(t *testing.T) {
	s := NewCartStore(nil)
	s.Set(5, 1)
	s.Set(3, 2)
	s.Set(5, 4)
	assert.Equal(t, []domain.CartLine{{ItemID: 5, Quantity: 4}, {ItemID: 3, Quantity: 2}}, s.Lines())

	s.Set(5, -1)
	assert.Equal(t, []domain.CartLine{{ItemID: 3, Quantity: 2}}, s.Lines())
	assert.Equal(t, 0, s.Quantity(5))

	s.Set(9, 0)
	assert.Equal(t, 1, s.Len())

	s.Remove(3)
	s.Clear()
	assert.Empty(t, s.Lines())
}

func TestCartStore_LinesIsACopy(t *testing.T) {
	s := NewCartStore([]domain.CartLine{{ItemID: 1, Quantity: 1}})

	lines := s.Lines()
	lines[0].Quantity = 99
	assert.Equal(t, 1, s.Quantity(1))
}
