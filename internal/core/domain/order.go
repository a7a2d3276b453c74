package domain

import (
	"fmt"
	"time"
)

type CheckoutState string

const (
	CheckoutIdle       CheckoutState = "idle"
	CheckoutValidating CheckoutState = "validating"
	CheckoutRejected   CheckoutState = "rejected"
	CheckoutConfirming CheckoutState = "confirming"
	CheckoutCommitting CheckoutState = "committing"
	CheckoutCompleted  CheckoutState = "completed"
)

type ViolationReason string

const (
	ReasonCartEmpty         ViolationReason = "cart_empty"
	ReasonItemUnavailable   ViolationReason = "item_unavailable"
	ReasonInsufficientStock ViolationReason = "insufficient_stock"
	ReasonTotalTooLarge     ViolationReason = "total_too_large"
)

// Violation is one reason a checkout attempt cannot proceed.
type Violation struct {
	ItemID    int64           `json:"itemId,omitempty"`
	Title     string          `json:"title,omitempty"`
	Reason    ViolationReason `json:"reason"`
	Requested int             `json:"requested,omitempty"`
	Available int             `json:"available"`
}

func (v Violation) Message() string {
	switch v.Reason {
	case ReasonCartEmpty:
		return "Your cart is empty"
	case ReasonItemUnavailable:
		return fmt.Sprintf("Item %d is no longer available", v.ItemID)
	case ReasonInsufficientStock:
		return fmt.Sprintf("Only %d copies of %s available", v.Available, v.Title)
	case ReasonTotalTooLarge:
		return fmt.Sprintf("Order total for %s is too large", v.Title)
	default:
		return string(v.Reason)
	}
}

type SummaryLine struct {
	ItemID    int64  `json:"itemId"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice Price  `json:"unitPrice"`
	LineTotal Price  `json:"lineTotal"`
}

// Summary is the order presented for confirmation.
type Summary struct {
	Lines      []SummaryLine `json:"lines"`
	TotalItems int           `json:"totalItems"`
	Total      Price         `json:"total"`
}

// FormattedTotal renders the grand total with a currency sign.
func (s Summary) FormattedTotal() string {
	return s.Total.Dollars()
}

// Receipt is returned by a successful checkout commit.
type Receipt struct {
	CheckoutID     string        `json:"checkoutId"`
	ItemsPurchased int           `json:"itemsPurchased"`
	TotalPrice     string        `json:"totalPrice"`
	Message        string        `json:"message"`
	Changes        []StockChange `json:"changes"`
	CompletedAt    time.Time     `json:"completedAt"`
}

// CartLineView is a cart line joined with its catalog entry for display.
type CartLineView struct {
	ItemID    int64  `json:"itemId"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice Price  `json:"unitPrice"`
	LineTotal Price  `json:"lineTotal"`
	Stock     int    `json:"stock"`
	Available int    `json:"available"`
	Invalid   bool   `json:"invalid"`
}
