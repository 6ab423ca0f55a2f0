package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the customer paid for a sale
type PaymentMethod string

const (
	PaymentPix  PaymentMethod = "PIX"
	PaymentCard PaymentMethod = "CARD"
	PaymentCash PaymentMethod = "CASH"
)

// PaymentMethods lists the accepted methods in display order
var PaymentMethods = []PaymentMethod{PaymentPix, PaymentCard, PaymentCash}

// Valid reports whether m is one of the accepted payment methods
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentPix, PaymentCard, PaymentCash:
		return true
	}
	return false
}

// Label returns the name shown to the operator
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentPix:
		return "Pix"
	case PaymentCard:
		return "Cartão"
	case PaymentCash:
		return "Dinheiro"
	}
	return string(m)
}

// Sale records one sale of a product. ProductName, TotalCost and TotalBasePrice
// are captured from the product when the sale is made and never recomputed.
type Sale struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"productId"`
	ProductName    string          `json:"productName"`
	Quantity       int             `json:"quantity"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	TotalCost      decimal.Decimal `json:"totalCost"`
	TotalBasePrice decimal.Decimal `json:"totalBasePrice"`
	Date           time.Time       `json:"date"`
	CustomerName   string          `json:"customerName"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod"`
}

// Profit is the realized revenue minus the cost of goods sold
func (s Sale) Profit() decimal.Decimal {
	return s.TotalPrice.Sub(s.TotalCost)
}

// UnitPrice is the price actually charged per unit
func (s Sale) UnitPrice() decimal.Decimal {
	if s.Quantity == 0 {
		return decimal.Zero
	}
	return s.TotalPrice.Div(decimal.NewFromInt(int64(s.Quantity)))
}
