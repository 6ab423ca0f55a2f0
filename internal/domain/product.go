package domain

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Backups written by the web app carry prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents an item of the catalog with its stock on hand
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Photo        *string         `json:"photo"`
	CostPrice    decimal.Decimal `json:"costPrice"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	Stock        int             `json:"stock"`
}

// OutOfStock reports whether the product can no longer be sold
func (p Product) OutOfStock() bool {
	return p.Stock <= 0
}

// UnitProfit is the margin of one unit sold at list price
func (p Product) UnitProfit() decimal.Decimal {
	return p.SellingPrice.Sub(p.CostPrice)
}
