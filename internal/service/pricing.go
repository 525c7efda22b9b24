package service

import (
	"fmt"

	"gugarden/internal/model"

	"github.com/shopspring/decimal"
)

var (
	// FreeShippingThreshold is the subtotal at which shipping becomes free.
	FreeShippingThreshold = decimal.NewFromInt(50000)

	// FlatShippingFee is charged below the free shipping threshold.
	FlatShippingFee = decimal.NewFromInt(3000)
)

// QuoteLines prices checkout lines at their effective unit price.
func QuoteLines(lines []model.CheckoutLine) model.Quote {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return quote(subtotal)
}

func quote(subtotal decimal.Decimal) model.Quote {
	fee := FlatShippingFee
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		fee = decimal.Zero
	}
	return model.Quote{Subtotal: subtotal, ShippingFee: fee, Total: subtotal.Add(fee)}
}

// OrderName is the single-line description sent to payment providers.
func OrderName(items []model.OrderItem) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0].ProductName
	default:
		return fmt.Sprintf("%s 외 %d건", items[0].ProductName, len(items)-1)
	}
}
