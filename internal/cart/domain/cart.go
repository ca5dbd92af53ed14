// Package domain holds the cart state and its transition rules. All
// transitions are pure: they take a cart value and return a new one with
// totals recomputed, so totals can never drift from the item list.
package domain

import (
	catalog "github.com/dejobratic/storefront/internal/catalog/domain"
	"github.com/shopspring/decimal"
)

// LineItem is a product in the cart together with its quantity.
// Quantity is always at least 1; a transition that would drop it to 0
// removes the line item instead.
type LineItem struct {
	catalog.Product
	Quantity int `json:"quantity"`
}

// Cart is the canonical cart state. Items keep insertion order: the order
// a product was first added. TotalItems and TotalPrice are derived sums.
type Cart struct {
	Items      []LineItem      `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Empty returns a cart with no items and zero totals.
func Empty() Cart {
	return Cart{Items: []LineItem{}, TotalPrice: decimal.Zero}
}

// FromItems rebuilds a cart from a stored item list, recomputing totals.
// Line items with a non-positive quantity are dropped and duplicate
// product IDs keep the first occurrence, so a malformed stored list still
// yields a valid cart.
func FromItems(items []LineItem) Cart {
	cart := Empty()
	seen := make(map[int]struct{}, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		cart.Items = append(cart.Items, item)
	}
	return cart.recomputed()
}

// Add increments the quantity of an existing line item by 1, or appends a
// new line item with quantity 1.
func (c Cart) Add(p catalog.Product) Cart {
	items := c.copyItems()
	found := false
	for i := range items {
		if items[i].ID == p.ID {
			items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		items = append(items, LineItem{Product: p, Quantity: 1})
	}
	c.Items = items
	return c.recomputed()
}

// Remove deletes the line item with the given product ID. Absent IDs are
// a no-op, not an error.
func (c Cart) Remove(productID int) Cart {
	items := make([]LineItem, 0, len(c.Items))
	for _, item := range c.Items {
		if item.ID != productID {
			items = append(items, item)
		}
	}
	c.Items = items
	return c.recomputed()
}

// SetQuantity sets an item's quantity to an absolute value. A quantity of
// zero or below removes the item.
func (c Cart) SetQuantity(productID, quantity int) Cart {
	if quantity <= 0 {
		return c.Remove(productID)
	}
	items := c.copyItems()
	for i := range items {
		if items[i].ID == productID {
			items[i].Quantity = quantity
			break
		}
	}
	c.Items = items
	return c.recomputed()
}

// Increment raises an item's quantity by 1. Absent IDs are a no-op.
func (c Cart) Increment(productID int) Cart {
	items := c.copyItems()
	for i := range items {
		if items[i].ID == productID {
			items[i].Quantity++
			break
		}
	}
	c.Items = items
	return c.recomputed()
}

// Decrement lowers an item's quantity by 1, removing the item when its
// quantity was 1. Absent IDs are a no-op.
func (c Cart) Decrement(productID int) Cart {
	for _, item := range c.Items {
		if item.ID == productID {
			if item.Quantity <= 1 {
				return c.Remove(productID)
			}
			return c.SetQuantity(productID, item.Quantity-1)
		}
	}
	return c
}

// Clear empties the cart.
func (Cart) Clear() Cart {
	return Empty()
}

// Find returns the line item for a product ID, if present.
func (c Cart) Find(productID int) (LineItem, bool) {
	for _, item := range c.Items {
		if item.ID == productID {
			return item, true
		}
	}
	return LineItem{}, false
}

func (c Cart) copyItems() []LineItem {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	return items
}

func (c Cart) recomputed() Cart {
	totalItems := 0
	totalPrice := decimal.Zero
	for _, item := range c.Items {
		totalItems += item.Quantity
		totalPrice = totalPrice.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	c.TotalItems = totalItems
	c.TotalPrice = totalPrice
	if c.Items == nil {
		c.Items = []LineItem{}
	}
	return c
}
