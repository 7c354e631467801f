package cart

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ProductSnapshot is the product data captured when a line item is created.
// It is never re-fetched; catalog changes after the add do not touch existing
// line items.
type ProductSnapshot struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Path        string          `json:"path"`
	Stock       int             `json:"stock"`
	CategoryID  uint            `json:"categoryId"`
	Slug        *string         `json:"slug,omitempty"`
}

// LineItem is one distinct product entry in the cart.
type LineItem struct {
	ID       string          `json:"id"`
	Product  ProductSnapshot `json:"product"`
	Quantity int             `json:"quantity"`
	AddedAt  time.Time       `json:"addedAt"`
}

// Cart is the aggregate root. Items keep insertion order and are unique per
// product; both totals are derived from Items and recomputed after every
// mutation, never patched incrementally.
type Cart struct {
	Items      []LineItem      `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{
		Items:      []LineItem{},
		TotalPrice: decimal.Zero,
	}
}

// LineItemID derives the stable line-item id for a product. A given product
// maps to at most one line item.
func LineItemID(productID uint) string {
	return fmt.Sprintf("product-%d", productID)
}

// ProductIDFromLineItemID reverses LineItemID. It returns false for ids that
// were not produced by LineItemID.
func ProductIDFromLineItemID(itemID string) (uint, bool) {
	raw, ok := strings.CutPrefix(itemID, "product-")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// AddItem merges the quantity into an existing line item for the same product,
// or appends a new line item stamped with the current time. Quantity is not
// validated here; callers pass a positive amount (default 1). Stock limits are
// a caller concern.
func (c *Cart) AddItem(product ProductSnapshot, quantity int) {
	itemID := LineItemID(product.ID)

	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items[i].Quantity += quantity
			c.recompute()
			return
		}
	}

	c.Items = append(c.Items, LineItem{
		ID:       itemID,
		Product:  product,
		Quantity: quantity,
		AddedAt:  time.Now().UTC(),
	})
	c.recompute()
}

// RemoveItem drops the matching line item. Removing an absent id is a no-op.
func (c *Cart) RemoveItem(itemID string) {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	c.Items = kept
	c.recompute()
}

// UpdateQuantity sets the line item's quantity to the absolute value given.
// A non-positive quantity deletes the item; the cart never holds a line item
// with quantity < 1. Unknown ids are a no-op.
func (c *Cart) UpdateQuantity(itemID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(itemID)
		return
	}

	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items[i].Quantity = quantity
			c.recompute()
			return
		}
	}
}

// Clear empties the cart and zeroes both totals.
func (c *Cart) Clear() {
	c.Items = []LineItem{}
	c.recompute()
}

// Quantity returns the quantity held for the product, or 0 when absent.
func (c *Cart) Quantity(productID uint) int {
	itemID := LineItemID(productID)
	for _, item := range c.Items {
		if item.ID == itemID {
			return item.Quantity
		}
	}
	return 0
}

// Contains reports whether a line item exists for the product.
func (c *Cart) Contains(productID uint) bool {
	return c.Quantity(productID) > 0
}

// IsEmpty reports whether the cart holds no line items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) recompute() {
	totalItems := 0
	totalPrice := decimal.Zero
	for _, item := range c.Items {
		totalItems += item.Quantity
		totalPrice = totalPrice.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	c.TotalItems = totalItems
	c.TotalPrice = totalPrice
}
