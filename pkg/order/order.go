// Package order holds a customer's in-progress order.
package order

import "github.com/dawoncafe/orderintent/internal/menu"

// Line is one entry of the order: a menu item at a serving temperature,
// with a quantity.
type Line struct {
	ID          string           `json:"id"`
	MenuID      string           `json:"menuId"`
	Name        string           `json:"name"`
	Temperature menu.Temperature `json:"temperature,omitempty"`
	Quantity    int              `json:"quantity"`
	UnitPrice   int              `json:"unitPrice"`
	TotalPrice  int              `json:"totalPrice"`
}

// Store is the mutable order a dialog session works against. The same menu
// item at two temperatures is two distinct lines; adding the same item at
// the same temperature merges into one.
type Store interface {
	// Add puts qty of item at temperature t into the order and returns the
	// resulting line.
	Add(item *menu.Item, t menu.Temperature, qty int) Line

	// Remove deletes the line with the given line ID. It reports whether a
	// line was removed.
	Remove(lineID string) bool

	// RemoveByMenu deletes every line of the given menu item, at any
	// temperature, and reports how many lines were removed.
	RemoveByMenu(menuID string) int

	// SetQuantity changes a line's quantity. A quantity of zero or less
	// removes the line. It reports whether the line existed.
	SetQuantity(lineID string, qty int) bool

	// Clear empties the order.
	Clear()

	// Lines returns the order in insertion order.
	Lines() []Line

	// Total returns the order's total price.
	Total() int

	// Count returns the total number of units across all lines.
	Count() int
}
