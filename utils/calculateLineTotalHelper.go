package utils

import (
	"github.com/shopspring/decimal"
)

// LineKind tells the arithmetic whether a tax term applies.
type LineKind string

const (
	LineKindSales    LineKind = "sales"
	LineKindPurchase LineKind = "purchase"
)

var decimalOneHundred = decimal.NewFromInt(100)

// LineAmount holds one line at full precision. Total is the only rounded field.
type LineAmount struct {
	Net   decimal.Decimal
	Tax   decimal.Decimal
	Total decimal.Decimal
}

type DocumentTotals struct {
	Subtotal decimal.Decimal
	TaxTotal decimal.Decimal
	Total    decimal.Decimal
}

// Round2 rounds half-up to two places. decimal.Round rounds half away from
// zero, which is half-up for the non-negative amounts handled here.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// CalculateLineAmounts computes net = price*qty and, for sales, tax = net*rate/100.
func CalculateLineAmounts(kind LineKind, unitPrice decimal.Decimal, quantity int, taxRatePercent decimal.Decimal) LineAmount {
	net := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	tax := decimal.Zero
	if kind == LineKindSales && !taxRatePercent.IsZero() {
		tax = net.Mul(taxRatePercent).Div(decimalOneHundred)
	}
	return LineAmount{
		Net:   net,
		Tax:   tax,
		Total: Round2(net.Add(tax)),
	}
}

// CalculateLineTotal is round2(price * qty * (1 + rate/100)) for sales and
// round2(price * qty) for purchases.
func CalculateLineTotal(kind LineKind, unitPrice decimal.Decimal, quantity int, taxRatePercent decimal.Decimal) decimal.Decimal {
	return CalculateLineAmounts(kind, unitPrice, quantity, taxRatePercent).Total
}

// AggregateLineAmounts sums unrounded net and tax values and rounds once at the end.
func AggregateLineAmounts(lines []LineAmount) DocumentTotals {
	net := decimal.Zero
	tax := decimal.Zero
	for _, l := range lines {
		net = net.Add(l.Net)
		tax = tax.Add(l.Tax)
	}
	subtotal := Round2(net)
	taxTotal := Round2(tax)
	return DocumentTotals{
		Subtotal: subtotal,
		TaxTotal: taxTotal,
		Total:    Round2(subtotal.Add(taxTotal)),
	}
}
