package config

import (
	"fmt"

	"github.com/paranovaq/game-shop/internal/core/domain"
)

// SeedItems converts the configured seed catalog into domain items with
// sequential IDs starting at 1.
func (c *CatalogConfig) SeedItems() ([]domain.Item, error) {
	items := make([]domain.Item, 0, len(c.Seed))
	for i, seed := range c.Seed {
		price, err := domain.ParsePrice(seed.Price)
		if err != nil {
			return nil, fmt.Errorf("catalog.seed[%d]: %w", i, err)
		}
		items = append(items, domain.Item{
			ID:          int64(i + 1),
			Title:       seed.Title,
			Genre:       seed.Genre,
			Developer:   seed.Developer,
			ReleaseDate: seed.ReleaseDate,
			Price:       price,
			Stock:       domain.ClampStock(seed.Stock),
		})
	}
	return items, nil
}
