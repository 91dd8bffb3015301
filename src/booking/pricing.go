package booking

import (
	"terena/src/models"

	"github.com/shopspring/decimal"
)

// Quote is the priced breakdown of a booking. All fields are rounded to two
// decimals, half away from zero.
type Quote struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	ServiceFee         decimal.Decimal `json:"service_fee"`
	Total              decimal.Decimal `json:"total"`
}

var oneHundred = decimal.NewFromInt(100)

// ComputeQuote prices a booking from its duration and the venue policy in
// force at creation time. Pure function, no error conditions: a nil discount
// or one the duration does not reach simply contributes zero.
func ComputeQuote(duration, pricePerHour decimal.Decimal, discount *models.Discount, serviceFee decimal.Decimal) Quote {
	subtotal := duration.Mul(pricePerHour).Round(2)

	pct := decimal.Zero
	if discount != nil && discount.Percentage.IsPositive() && discount.MinDurationHours > 0 {
		if duration.GreaterThanOrEqual(decimal.NewFromInt(int64(discount.MinDurationHours))) {
			pct = discount.Percentage
		}
	}
	discountAmount := subtotal.Mul(pct).Div(oneHundred).Round(2)

	fee := serviceFee.Round(2)
	total := subtotal.Sub(discountAmount).Add(fee)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Quote{
		Subtotal:           subtotal,
		DiscountPercentage: pct,
		DiscountAmount:     discountAmount,
		ServiceFee:         fee,
		Total:              total,
	}
}

// MinorUnits converts a two-decimal money amount to minor currency units for
// the payment gateway.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Round(2).Mul(oneHundred).IntPart()
}
