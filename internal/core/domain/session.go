package domain

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStandard Role = "user"
)

// Signal is the advisory outcome of a cart mutation. Signals are not errors.
type Signal string

const (
	SignalAdded       Signal = "added"
	SignalUpdated     Signal = "updated"
	SignalRemoved     Signal = "removed"
	SignalOutOfStock  Signal = "out_of_stock"
	SignalMaxReached  Signal = "maximum_available_reached"
	SignalUnavailable Signal = "unavailable"
)
