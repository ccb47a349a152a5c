package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateLineTotal(t *testing.T) {
	cases := []struct {
		name     string
		kind     LineKind
		price    string
		qty      int
		rate     string
		expected string
	}{
		{"sales with tax", LineKindSales, "10.00", 2, "10", "22"},
		{"sales zero tax", LineKindSales, "5.00", 1, "0", "5"},
		{"purchase ignores rate", LineKindPurchase, "3.50", 4, "18", "14"},
		{"zero price", LineKindSales, "0", 1, "0", "0"},
		{"gst 18 percent", LineKindSales, "99.99", 3, "18", "353.96"},
	}
	for _, tc := range cases {
		got := CalculateLineTotal(tc.kind, d(tc.price), tc.qty, d(tc.rate))
		if !got.Equal(d(tc.expected)) {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.expected, got.String())
		}
	}
}

func TestRound2_HalfUp(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"0.005", "0.01"},
		{"0.125", "0.13"},
		{"0.135", "0.14"},
		{"2.675", "2.68"},
		{"0.124999", "0.12"},
	}
	for _, tc := range cases {
		got := Round2(d(tc.in))
		if !got.Equal(d(tc.expected)) {
			t.Fatalf("Round2(%s) expected %s, got %s", tc.in, tc.expected, got.String())
		}
	}
}

func TestAggregateLineAmounts_InvoiceScenario(t *testing.T) {
	lines := []LineAmount{
		CalculateLineAmounts(LineKindSales, d("10.00"), 2, d("10")),
		CalculateLineAmounts(LineKindSales, d("5.00"), 1, d("0")),
	}
	totals := AggregateLineAmounts(lines)
	if !totals.Subtotal.Equal(d("25")) || !totals.TaxTotal.Equal(d("2")) || !totals.Total.Equal(d("27")) {
		t.Fatalf("expected 25/2/27, got %s/%s/%s", totals.Subtotal, totals.TaxTotal, totals.Total)
	}
}

func TestAggregateLineAmounts_PurchaseScenario(t *testing.T) {
	lines := []LineAmount{
		CalculateLineAmounts(LineKindPurchase, d("3.50"), 4, d("0")),
		CalculateLineAmounts(LineKindPurchase, d("1.00"), 10, d("0")),
	}
	totals := AggregateLineAmounts(lines)
	if !totals.Total.Equal(d("24")) || !totals.TaxTotal.IsZero() {
		t.Fatalf("expected total 24 and no tax, got %s/%s", totals.Total, totals.TaxTotal)
	}
}

func TestAggregateLineAmounts_RoundsOnce(t *testing.T) {
	// 0.333 * 1 at 1.5% is 0.0049950 tax per line; rounded per line it would be 0.00
	var lines []LineAmount
	for i := 0; i < 100; i++ {
		lines = append(lines, CalculateLineAmounts(LineKindSales, d("0.333"), 1, d("1.5")))
	}
	totals := AggregateLineAmounts(lines)
	if !totals.TaxTotal.Equal(d("0.5")) {
		t.Fatalf("expected tax total 0.50, got %s", totals.TaxTotal)
	}
	if !totals.Subtotal.Equal(d("33.3")) {
		t.Fatalf("expected subtotal 33.30, got %s", totals.Subtotal)
	}
	if !totals.Total.Equal(totals.Subtotal.Add(totals.TaxTotal)) {
		t.Fatalf("total %s is not subtotal + tax", totals.Total)
	}
}

func TestCalculateLineTotal_Monotonic(t *testing.T) {
	rates := []string{"0", "5", "12.5", "28"}
	prices := []string{"0", "0.01", "1.99", "10", "1234.567"}
	for _, rate := range rates {
		for pi, price := range prices {
			prev := decimal.Zero
			for qty := 1; qty <= 20; qty++ {
				got := CalculateLineTotal(LineKindSales, d(price), qty, d(rate))
				if got.IsNegative() {
					t.Fatalf("negative total for price %s qty %d rate %s", price, qty, rate)
				}
				if got.LessThan(prev) {
					t.Fatalf("total decreased with quantity at price %s rate %s", price, rate)
				}
				prev = got
				if pi > 0 {
					lower := CalculateLineTotal(LineKindSales, d(prices[pi-1]), qty, d(rate))
					if got.LessThan(lower) {
						t.Fatalf("total decreased with price at qty %d rate %s", qty, rate)
					}
				}
			}
		}
	}
}
