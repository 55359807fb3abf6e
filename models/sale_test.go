package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func productWithPrices(linesPerCarton int, costPerCarton string) *Product {
	p := &Product{ID: 1, Name: "Frozen Chicken", LinesPerCarton: linesPerCarton}
	if costPerCarton != "" {
		p.CostPricePerCarton = decimal.NullDecimal{
			Decimal: decimal.RequireFromString(costPerCarton),
			Valid:   true,
		}
	}
	return p
}

func TestBuildSaleItemProfit(t *testing.T) {
	// lines_per_carton=10, cost 100/carton, selling 150/carton, 10 lines:
	// cost 10.00/line, selling 15.00/line, profit (15-10)*10 = 50.00.
	product := productWithPrices(10, "100")
	item := buildSaleItem(product, 10, decimal.NewFromInt(150))

	if !item.UnitCostPricePerLine.Equal(decimal.RequireFromString("10")) {
		t.Errorf("unit cost per line = %s, want 10.00", item.UnitCostPricePerLine)
	}
	if !item.UnitSellingPricePerLine.Equal(decimal.RequireFromString("15")) {
		t.Errorf("unit selling per line = %s, want 15.00", item.UnitSellingPricePerLine)
	}
	if !item.Total.Equal(decimal.RequireFromString("150")) {
		t.Errorf("total = %s, want 150.00", item.Total)
	}
	if !item.Profit.Equal(decimal.RequireFromString("50")) {
		t.Errorf("profit = %s, want 50.00", item.Profit)
	}
}

func TestBuildSaleItemNoCostPrice(t *testing.T) {
	// Without a cost price, profit equals full revenue.
	product := productWithPrices(10, "")
	item := buildSaleItem(product, 5, decimal.NewFromInt(200))

	if !item.UnitCostPricePerLine.IsZero() {
		t.Errorf("unit cost per line = %s, want 0", item.UnitCostPricePerLine)
	}
	if !item.Profit.Equal(item.Total) {
		t.Errorf("profit %s should equal total %s", item.Profit, item.Total)
	}
}

func TestBuildSaleItemNoCartonPackaging(t *testing.T) {
	// lines_per_carton=1: prices are already per line.
	product := productWithPrices(1, "7.50")
	item := buildSaleItem(product, 4, decimal.NewFromInt(12))

	if !item.UnitSellingPricePerLine.Equal(decimal.NewFromInt(12)) {
		t.Errorf("unit selling per line = %s, want 12", item.UnitSellingPricePerLine)
	}
	if !item.Profit.Equal(decimal.RequireFromString("18")) {
		t.Errorf("profit = %s, want 18.00", item.Profit)
	}
}

func TestSaleStatusDerivation(t *testing.T) {
	total := decimal.NewFromInt(100)
	cases := []struct {
		name string
		sale Sale
		want CreditStatus
	}{
		{"cash", Sale{PaymentType: PaymentTypeCash, TotalAmount: total, AmountPaid: total}, CreditStatusPaid},
		{"credit unpaid", Sale{PaymentType: PaymentTypeCredit, TotalAmount: total}, CreditStatusPending},
		{"credit settled", Sale{PaymentType: PaymentTypeCredit, TotalAmount: total, AmountPaid: total}, CreditStatusPaid},
		{"partial", Sale{PaymentType: PaymentTypePartial, TotalAmount: total, AmountPaid: decimal.NewFromInt(40)}, CreditStatusPartial},
		{"partial settled", Sale{PaymentType: PaymentTypePartial, TotalAmount: total, AmountPaid: total}, CreditStatusPaid},
	}
	for _, c := range cases {
		if got := c.sale.Status(); got != c.want {
			t.Errorf("%s: status = %s, want %s", c.name, got, c.want)
		}
	}
}

func TestSaleRemainder(t *testing.T) {
	s := Sale{TotalAmount: decimal.NewFromInt(100), AmountPaid: decimal.NewFromInt(40)}
	if !s.Remainder().Equal(decimal.NewFromInt(60)) {
		t.Errorf("remainder = %s, want 60", s.Remainder())
	}
	overpaid := Sale{TotalAmount: decimal.NewFromInt(100), AmountPaid: decimal.NewFromInt(120)}
	if !overpaid.Remainder().IsZero() {
		t.Errorf("overpaid remainder = %s, want 0", overpaid.Remainder())
	}
}
