package booking

import (
	"testing"

	"terena/src/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	v, _ := decimal.NewFromString(s)
	return v
}

func TestComputeQuoteVolumeDiscount(t *testing.T) {
	discount := &models.Discount{Percentage: d("10"), MinDurationHours: 3}

	quote := ComputeQuote(d("3"), d("30.00"), discount, decimal.Zero)

	assert.True(t, quote.Subtotal.Equal(d("90.00")), "subtotal: %s", quote.Subtotal)
	assert.True(t, quote.DiscountPercentage.Equal(d("10")))
	assert.True(t, quote.DiscountAmount.Equal(d("9.00")), "discount: %s", quote.DiscountAmount)
	assert.True(t, quote.Total.Equal(d("81.00")), "total: %s", quote.Total)
}

func TestComputeQuoteBelowDiscountThreshold(t *testing.T) {
	discount := &models.Discount{Percentage: d("10"), MinDurationHours: 3}

	quote := ComputeQuote(d("2"), d("30.00"), discount, decimal.Zero)

	assert.True(t, quote.DiscountAmount.IsZero())
	assert.True(t, quote.DiscountPercentage.IsZero())
	assert.True(t, quote.Total.Equal(d("60.00")))
}

func TestComputeQuoteNilDiscount(t *testing.T) {
	quote := ComputeQuote(d("1.5"), d("30.00"), nil, d("2.50"))

	assert.True(t, quote.Subtotal.Equal(d("45.00")))
	assert.True(t, quote.ServiceFee.Equal(d("2.50")))
	assert.True(t, quote.Total.Equal(d("47.50")))
}

func TestComputeQuoteIgnoresZeroThresholdDiscount(t *testing.T) {
	discount := &models.Discount{Percentage: d("10"), MinDurationHours: 0}

	quote := ComputeQuote(d("5"), d("30.00"), discount, decimal.Zero)

	assert.True(t, quote.DiscountAmount.IsZero())
	assert.True(t, quote.Total.Equal(d("150.00")))
}

func TestComputeQuoteRoundsHalfAwayFromZero(t *testing.T) {
	// 1.5h * 33.33 = 49.995 -> 50.00
	quote := ComputeQuote(d("1.5"), d("33.33"), nil, decimal.Zero)

	assert.Equal(t, "50.00", quote.Subtotal.StringFixed(2))
	assert.Equal(t, "50.00", quote.Total.StringFixed(2))
}

func TestComputeQuoteTotalNeverNegative(t *testing.T) {
	discount := &models.Discount{Percentage: d("200"), MinDurationHours: 1}

	quote := ComputeQuote(d("2"), d("10.00"), discount, decimal.Zero)

	assert.True(t, quote.Total.Equal(decimal.Zero), "total: %s", quote.Total)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(8100), MinorUnits(d("81.00")))
	assert.Equal(t, int64(4750), MinorUnits(d("47.50")))
	assert.Equal(t, int64(1000), MinorUnits(d("9.995")))
}
