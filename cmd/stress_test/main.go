package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/paranovaq/game-shop/internal/adapter/storage"
	"github.com/paranovaq/game-shop/internal/core/domain"
	"github.com/paranovaq/game-shop/internal/core/service"
)

const (
	itemCount    = 5
	initialStock = 20
	workers      = 16
	opsPerWorker = 500
)

func main() {
	ctx := context.Background()

	seed := make([]domain.Item, 0, itemCount)
	for i := 1; i <= itemCount; i++ {
		seed = append(seed, domain.Item{
			ID:    int64(i),
			Title: fmt.Sprintf("game-%d", i),
			Price: domain.Price(999 * i),
			Stock: initialStock,
		})
	}

	shop := service.NewShopService(service.Options{
		Persistence: storage.NewSnapshotPersistence(storage.NewMemoryAdapter()),
		Role:        domain.RoleAdmin,
		Seed:        seed,
	})
	shop.Start(ctx)

	// Counters
	var sold atomic.Int64
	var commits atomic.Int32
	var rejected atomic.Int32
	var violations atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(id)))

			for i := 0; i < opsPerWorker; i++ {
				itemID := int64(rng.Intn(itemCount) + 1)
				switch rng.Intn(6) {
				case 0, 1:
					_, _ = shop.AddToCart(ctx, itemID)
				case 2:
					shop.SetQuantity(ctx, itemID, rng.Intn(8)-2)
				case 3:
					shop.RemoveFromCart(ctx, itemID)
				case 4:
					receipt, err := shop.CommitCheckout(ctx)
					if err != nil {
						rejected.Add(1)
						continue
					}
					commits.Add(1)
					sold.Add(int64(receipt.ItemsPurchased))
				case 5:
					if _, err := shop.ValidateCheckout(ctx); err == nil {
						if rng.Intn(2) == 0 {
							shop.CancelCheckout()
						} else if receipt, err := shop.ConfirmCheckout(ctx); err == nil {
							commits.Add(1)
							sold.Add(int64(receipt.ItemsPurchased))
						}
					}
				}

				for _, line := range shop.Lines() {
					if line.Invalid || line.Quantity <= 0 {
						violations.Add(1)
						log.Printf("worker %d: line %d qty %d exceeds stock %d", id, line.ItemID, line.Quantity, line.Stock)
					}
				}
			}
		}(w)
	}

	wg.Wait()
	elapsed := time.Since(start)

	remaining := 0
	negative := 0
	for _, item := range shop.Catalog() {
		remaining += item.Stock
		if item.Stock < 0 {
			negative++
		}
	}
	total := itemCount * initialStock

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", total)
	fmt.Printf("Operations:       %d\n", workers*opsPerWorker)
	fmt.Printf("Commits:          %d\n", commits.Load())
	fmt.Printf("Rejected:         %d\n", rejected.Load())
	fmt.Printf("Units Sold:       %d\n", sold.Load())
	fmt.Printf("Remaining Stock:  %d\n", remaining)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if int64(total-remaining) == sold.Load() {
		fmt.Println("PASS: Units sold match stock decrements")
	} else {
		fmt.Printf("FAIL: Sold %d units but stock dropped by %d\n", sold.Load(), total-remaining)
	}

	if negative == 0 && violations.Load() == 0 {
		fmt.Println("PASS: No negative stock and no cart line above stock")
	} else {
		fmt.Printf("FAIL: %d negative stock levels, %d cart violations\n", negative, violations.Load())
	}
}
