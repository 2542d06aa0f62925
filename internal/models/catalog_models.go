package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SharedOwner marks an item as sellable by every seller. Items created
// through the admin surface default to it.
const SharedOwner = "admin"

type Item struct {
	Barcode         string    `json:"barcode"`
	ProductName     string    `json:"product_name"`
	Description     string    `json:"description"`
	PurchasePrice   string    `json:"purchase_price"`
	SellingPrice    string    `json:"selling_price"`
	MinSellingPrice string    `json:"min_selling_price"`
	Quantity        int       `json:"quantity"`
	Owner           string    `json:"owner"`
	AddedDate       time.Time `json:"added_date"`
}

// Normalize fills the defaults the old records left implicit so the rest of
// the engine never needs get-with-default lookups.
func (i *Item) Normalize() {
	i.ProductName = strings.TrimSpace(i.ProductName)
	if i.Owner == "" {
		i.Owner = SharedOwner
	}
	if i.PurchasePrice == "" {
		i.PurchasePrice = "0.00"
	}
	if i.SellingPrice == "" {
		i.SellingPrice = "0.00"
	}
	if i.MinSellingPrice == "" {
		i.MinSellingPrice = "0.00"
	}
}

func (i *Item) Validate() error {
	if i.Barcode == "" {
		return &ValidationError{Field: "barcode", Reason: "must not be empty"}
	}
	if i.ProductName == "" {
		return &ValidationError{Field: "product_name", Reason: "must not be empty"}
	}
	if i.Quantity < 0 {
		return &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	for _, f := range []struct{ name, value string }{
		{"purchase_price", i.PurchasePrice},
		{"selling_price", i.SellingPrice},
		{"min_selling_price", i.MinSellingPrice},
	} {
		if _, err := ParseMoney(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

// ParseMoney parses a non-negative decimal money field.
func ParseMoney(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: field, Reason: "not a decimal amount"}
	}
	if d.IsNegative() {
		return decimal.Zero, &ValidationError{Field: field, Reason: "must not be negative"}
	}
	return d, nil
}

// Money renders a decimal the way the ledgers store it.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
