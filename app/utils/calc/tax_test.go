package calc

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateTax(t *testing.T) {
	tax := CalculateTax(decimal.RequireFromString("100.00"))
	assert.True(t, tax.Equal(decimal.RequireFromString("45")), "got %s", tax)

	tax = CalculateTax(decimal.RequireFromString("10.50"))
	assert.Equal(t, "4.73", tax.StringFixed(2))
}

func TestCalculateSubTotal(t *testing.T) {
	sub := CalculateSubTotal(decimal.RequireFromString("10.00"), 3)
	assert.True(t, sub.Equal(decimal.RequireFromString("30")))

	assert.True(t, CalculateSubTotal(decimal.RequireFromString("10.00"), 0).IsZero())
}

func TestCalculateGrandTotal(t *testing.T) {
	total := CalculateGrandTotal(
		CalculateSubTotal(decimal.RequireFromString("10.00"), 2),
		CalculateSubTotal(decimal.RequireFromString("5.00"), 1),
	)
	assert.Equal(t, "25.00", total.StringFixed(2))
	assert.True(t, CalculateGrandTotal().IsZero())
}
