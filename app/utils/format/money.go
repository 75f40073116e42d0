package format

import (
	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

var rupiah = accounting.Accounting{Symbol: "Rp ", Precision: 2, Thousand: ".", Decimal: ","}

// Money renders an amount for the *_display fields, e.g. "Rp 10.000,00".
func Money(amount decimal.Decimal) string {
	return rupiah.FormatMoney(amount)
}

// Amount is the fixed two-decimal string used for every money field in responses.
func Amount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
