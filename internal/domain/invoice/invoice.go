// Package invoice holds the billing entities and the total computation
// shared by the admin invoice screens.
package invoice

import (
	"fmt"
	"time"

	"github.com/streamlift/panel_core/internal/resource"
)

// LineItem is one billed row. UnitPriceCents is in minor units.
type LineItem struct {
	Description    string `json:"description"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// Amount is the item's extended price in minor units.
func (li LineItem) Amount() int64 {
	return li.Quantity * li.UnitPriceCents
}

// Invoice is a billing document issued to one customer account.
type Invoice struct {
	ID            string     `json:"id"`
	Number        string     `json:"number"`
	UserID        string     `json:"user_id"`
	Status        string     `json:"status"`
	Items         []LineItem `json:"items"`
	TaxCents      int64      `json:"tax_cents"`
	DiscountCents int64      `json:"discount_cents"`
	SubtotalCents int64      `json:"subtotal_cents"`
	TotalCents    int64      `json:"total_cents"`
	IssuedAt      time.Time  `json:"issued_at"`
	DueAt         time.Time  `json:"due_at"`
}

// ListKey addresses the cached admin invoice list.
func ListKey() resource.Key {
	return resource.NewKey("invoices")
}

// Totals is the computed money summary of an invoice, in minor units.
type Totals struct {
	SubtotalCents int64 `json:"subtotal_cents"`
	TaxCents      int64 `json:"tax_cents"`
	DiscountCents int64 `json:"discount_cents"`
	TotalCents    int64 `json:"total_cents"`
}

// ComputeTotals derives the invoice summary from its line items. Any
// negative intermediate or final value is a validation failure, never
// clamped. The function is pure: identical inputs always produce
// identical totals.
func ComputeTotals(items []LineItem, taxCents, discountCents int64) (Totals, error) {
	if taxCents < 0 {
		return Totals{}, fmt.Errorf("tax must not be negative")
	}
	if discountCents < 0 {
		return Totals{}, fmt.Errorf("discount must not be negative")
	}

	var subtotal int64
	for i, li := range items {
		if li.Quantity < 0 {
			return Totals{}, fmt.Errorf("item %d: quantity must not be negative", i)
		}
		if li.UnitPriceCents < 0 {
			return Totals{}, fmt.Errorf("item %d: unit price must not be negative", i)
		}
		subtotal += li.Amount()
	}

	total := subtotal + taxCents - discountCents
	if total < 0 {
		return Totals{}, fmt.Errorf("total must not be negative (got %d)", total)
	}
	return Totals{
		SubtotalCents: subtotal,
		TaxCents:      taxCents,
		DiscountCents: discountCents,
		TotalCents:    total,
	}, nil
}
