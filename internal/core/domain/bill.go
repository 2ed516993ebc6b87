package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fixed checkout rates, applied to the cart total.
var (
	TaxRate      = decimal.NewFromFloat(0.10)
	DiscountRate = decimal.NewFromFloat(0.05)
)

type Bill struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order"`
	UserID      string          `json:"user"`
	Items       []ItemRef       `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Taxes       decimal.Decimal `json:"taxes"`
	Discounts   decimal.Decimal `json:"discounts"`
	FinalAmount decimal.Decimal `json:"finalAmount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type Totals struct {
	Total     decimal.Decimal
	Taxes     decimal.Decimal
	Discounts decimal.Decimal
	Final     decimal.Decimal
}

func ComputeTotals(total decimal.Decimal) Totals {
	taxes := total.Mul(TaxRate)
	discounts := total.Mul(DiscountRate)
	return Totals{
		Total:     total,
		Taxes:     taxes,
		Discounts: discounts,
		Final:     total.Add(taxes).Sub(discounts),
	}
}
