package domain

// Item is a sellable catalog entry. Stock is never negative once stored.
type Item struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	Developer   string `json:"developer"`
	ReleaseDate string `json:"releaseDate"`
	Price       Price  `json:"price"`
	Stock       int    `json:"stock"`
}

// CartLine reserves Quantity units of ItemID in the current session's cart.
// An ItemID appears at most once per cart and Quantity is always positive.
type CartLine struct {
	ItemID   int64 `json:"itemId"`
	Quantity int   `json:"quantity"`
}

// StockChange is an absolute stock assignment for one item.
type StockChange struct {
	ItemID   int64 `json:"itemId"`
	NewStock int   `json:"newStock"`
}

// ClampStock forces a stock or quantity value to be non-negative.
func ClampStock(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// AvailableToAdd reports how many more units of item may be put in the cart
// given inCart units already reserved. A nil item (deleted or unknown) has no
// availability.
func AvailableToAdd(item *Item, inCart int) int {
	if item == nil {
		return 0
	}
	return ClampStock(ClampStock(item.Stock) - inCart)
}

// ClampQuantity forces a requested cart quantity into [0, stock].
func ClampQuantity(requested, stock int) int {
	stock = ClampStock(stock)
	if requested < 0 {
		return 0
	}
	if requested > stock {
		return stock
	}
	return requested
}
