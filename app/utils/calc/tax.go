package calc

import "github.com/shopspring/decimal"

var taxRate = decimal.RequireFromString("0.45")

func GetTaxRate() decimal.Decimal {
	return taxRate
}

// CalculateTax returns the tax shown next to a product price.
func CalculateTax(price decimal.Decimal) decimal.Decimal {
	return price.Mul(taxRate)
}

func CalculateSubTotal(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}

func CalculateGrandTotal(subTotals ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, s := range subTotals {
		total = total.Add(s)
	}
	return total
}
