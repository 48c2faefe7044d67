package sales

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/matita-boutique/internal/pricing"
)

func TestBuildSaleDetail(t *testing.T) {
	items := []pricing.LineItem{
		{ID: "a", Name: "Agenda", UnitPrice: 10000, Quantity: 2},
		{ID: "b", Name: "Lápiz", UnitPrice: 500, Quantity: 1},
	}
	sel := pricing.Selections{Gift: true, UsePoints: true, PaymentMethod: "cash"}
	comp := pricing.Compute(items, sel, &pricing.LoyaltyAccount{PointsBalance: 400})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	sale := BuildSale("u1", items, sel, comp, now)

	want := "Agenda (x2), Lápiz (x1) + Pack Regalo (✨-400 pts) [Pago: Efectivo en Local]"
	if sale.ItemsDetail != want {
		t.Fatalf("expected %q, got %q", want, sale.ItemsDetail)
	}
	if sale.ItemsCount != 3 {
		t.Fatalf("expected 3 items, got %d", sale.ItemsCount)
	}
	if sale.PointsUsed != 400 || sale.PaymentMethod != "cash" {
		t.Fatalf("unexpected sale %+v", sale)
	}
	if !sale.Total.Equal(decimal.NewFromInt(22300)) {
		t.Fatalf("expected total 22300, got %s", sale.Total)
	}
	if sale.ID == "" || !sale.Date.Equal(now) {
		t.Fatalf("expected id and date, got %+v", sale)
	}
}

func TestBuildSaleDefaultsPaymentAndOmitsExtras(t *testing.T) {
	items := []pricing.LineItem{{ID: "a", Name: "Cuaderno", UnitPrice: 3000, Quantity: 1}}
	sel := pricing.Selections{UsePoints: true, PaymentMethod: "crypto"}
	comp := pricing.Compute(items, sel, nil)

	sale := BuildSale("", items, sel, comp, time.Now())
	want := "Cuaderno (x1) [Pago: Transferencia / Alias]"
	if sale.ItemsDetail != want {
		t.Fatalf("expected %q, got %q", want, sale.ItemsDetail)
	}
	if sale.PaymentMethod != pricing.DefaultPaymentMethod {
		t.Fatalf("expected default payment method, got %s", sale.PaymentMethod)
	}
}
