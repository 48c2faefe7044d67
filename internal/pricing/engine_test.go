package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestComputeSubtotalIgnoresOrder(t *testing.T) {
	items := []LineItem{
		{ID: "a", UnitPrice: 5000, Quantity: 2},
		{ID: "b", UnitPrice: 1250, Quantity: 3},
		{ID: "c", UnitPrice: 99, Quantity: 1},
	}
	reversed := []LineItem{items[2], items[1], items[0]}
	want := Money(5000*2 + 1250*3 + 99)
	if got := ComputeSubtotal(items); got != want {
		t.Fatalf("expected subtotal %d, got %d", want, got)
	}
	if got := ComputeSubtotal(reversed); got != want {
		t.Fatalf("expected reversed subtotal %d, got %d", want, got)
	}
	if got := ComputeSubtotal(nil); got != 0 {
		t.Fatalf("expected empty subtotal 0, got %d", got)
	}
}

func TestResolveCouponCatalog(t *testing.T) {
	catalog := []Coupon{{Code: "SAVE10", DiscountRate: dec("0.10")}}
	c, err := ResolveCoupon("SAVE10", 10000, catalog)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !c.DiscountRate.Equal(dec("0.1")) {
		t.Fatalf("expected rate 0.1, got %s", c.DiscountRate)
	}

	padded, err := ResolveCoupon("  save10 ", 10000, catalog)
	if err != nil {
		t.Fatalf("resolve padded: %v", err)
	}
	if padded.Code != c.Code || !padded.DiscountRate.Equal(c.DiscountRate) {
		t.Fatalf("normalised lookup mismatch: %+v vs %+v", padded, c)
	}

	again, err := ResolveCoupon("SAVE10", 10000, catalog)
	if err != nil || !again.DiscountRate.Equal(c.DiscountRate) {
		t.Fatalf("expected identical rate on reapply, got %v (%v)", again.DiscountRate, err)
	}
}

func TestResolveCouponNotFound(t *testing.T) {
	_, err := ResolveCoupon("NOPE", 10000, []Coupon{{Code: "SAVE10", DiscountRate: dec("0.1")}})
	if !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected ErrCouponNotFound, got %v", err)
	}
	if _, err := ResolveCoupon("   ", 10000, nil); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected ErrCouponNotFound for blank code, got %v", err)
	}
}

func TestResolveCouponWelcomeBoundary(t *testing.T) {
	_, err := ResolveCoupon("bienvenida", MinPurchaseForWelcome-1, nil)
	if !errors.Is(err, ErrCouponIneligible) {
		t.Fatalf("expected ErrCouponIneligible, got %v", err)
	}
	var ineligible *IneligibleError
	if !errors.As(err, &ineligible) || ineligible.MinPurchase != MinPurchaseForWelcome {
		t.Fatalf("expected threshold %d in error, got %v", MinPurchaseForWelcome, err)
	}

	c, err := ResolveCoupon("BIENVENIDA", MinPurchaseForWelcome, nil)
	if err != nil {
		t.Fatalf("expected welcome coupon at threshold, got %v", err)
	}
	if !c.DiscountRate.Equal(dec("0.15")) {
		t.Fatalf("expected 0.15, got %s", c.DiscountRate)
	}
}

func TestResolveCouponWelcomeIgnoresCatalog(t *testing.T) {
	catalog := []Coupon{{Code: "BIENVENIDA", DiscountRate: dec("0.9")}}
	c, err := ResolveCoupon("BIENVENIDA", 20000, catalog)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !c.DiscountRate.Equal(WelcomeRate) {
		t.Fatalf("expected fixed welcome rate, got %s", c.DiscountRate)
	}
	if _, err := ResolveCoupon("BIENVENIDA", 100, catalog); !errors.Is(err, ErrCouponIneligible) {
		t.Fatalf("catalog entry must not bypass threshold, got %v", err)
	}
}

func TestResolvePointsRedemption(t *testing.T) {
	cases := []struct {
		name      string
		account   *LoyaltyAccount
		subtotal  Money
		requested bool
		value     string
		points    int64
	}{
		{name: "guest", account: nil, subtotal: 10000, requested: true, value: "0", points: 0},
		{name: "toggle off", account: &LoyaltyAccount{PointsBalance: 500}, subtotal: 10000, requested: false, value: "0", points: 0},
		{name: "capped", account: &LoyaltyAccount{PointsBalance: 100000}, subtotal: 10000, requested: true, value: "5000", points: 10000},
		{name: "balance bound", account: &LoyaltyAccount{PointsBalance: 300}, subtotal: 10000, requested: true, value: "150", points: 300},
		{name: "odd subtotal", account: &LoyaltyAccount{PointsBalance: 100000}, subtotal: 5001, requested: true, value: "2500.5", points: 5001},
		{name: "empty cart", account: &LoyaltyAccount{PointsBalance: 100}, subtotal: 0, requested: true, value: "0", points: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolvePointsRedemption(tc.account, tc.subtotal, tc.requested)
			if !got.Value.Equal(dec(tc.value)) {
				t.Fatalf("expected value %s, got %s", tc.value, got.Value)
			}
			if got.Points != tc.points {
				t.Fatalf("expected %d points, got %d", tc.points, got.Points)
			}
		})
	}
}

func TestRedemptionNeverExceedsCap(t *testing.T) {
	for _, subtotal := range []Money{0, 1, 999, 10000, 123457} {
		for _, balance := range []int64{0, 1, 50, 20000, 1_000_000} {
			got := ResolvePointsRedemption(&LoyaltyAccount{PointsBalance: balance}, subtotal, true)
			limit := decimal.NewFromInt(subtotal).Mul(RedemptionCap)
			if got.Value.GreaterThan(limit) {
				t.Fatalf("subtotal %d balance %d: redeemed %s over cap %s", subtotal, balance, got.Value, limit)
			}
		}
	}
}

func TestComputeTotalNeverNegative(t *testing.T) {
	rates := []string{"0", "0.15", "0.5", "1"}
	for _, subtotal := range []Money{0, 1, 5000, 99999} {
		for _, rate := range rates {
			for _, gift := range []Money{0, GiftWrapPrice} {
				reduction := CouponReduction(subtotal, dec(rate))
				points := decimal.NewFromInt(subtotal).Mul(RedemptionCap)
				total := ComputeTotal(subtotal, reduction, points, gift)
				if total.IsNegative() {
					t.Fatalf("negative total for subtotal %d rate %s gift %d: %s", subtotal, rate, gift, total)
				}
			}
		}
	}
	if got := ComputeTotal(100, dec("500"), dec("500"), 0); !got.IsZero() {
		t.Fatalf("expected floor at zero, got %s", got)
	}
}

func TestComputeScenarios(t *testing.T) {
	save10 := &Coupon{Code: "SAVE10", DiscountRate: dec("0.10")}
	welcome := &Coupon{Code: WelcomeCouponCode, DiscountRate: WelcomeRate}
	cases := []struct {
		name      string
		items     []LineItem
		sel       Selections
		account   *LoyaltyAccount
		subtotal  Money
		reduction string
		points    int64
		total     string
	}{
		{
			name:     "plain cart",
			items:    []LineItem{{ID: "p1", UnitPrice: 5000, Quantity: 2}},
			subtotal: 10000, reduction: "0", total: "10000",
		},
		{
			name:     "catalog coupon",
			items:    []LineItem{{ID: "p1", UnitPrice: 5000, Quantity: 2}},
			sel:      Selections{Coupon: save10},
			subtotal: 10000, reduction: "1000", total: "9000",
		},
		{
			name:     "welcome coupon",
			items:    []LineItem{{ID: "p1", UnitPrice: 20000, Quantity: 1}},
			sel:      Selections{Coupon: welcome},
			subtotal: 20000, reduction: "3000", total: "17000",
		},
		{
			name:     "points capped at half",
			items:    []LineItem{{ID: "p1", UnitPrice: 10000, Quantity: 1}},
			sel:      Selections{UsePoints: true},
			account:  &LoyaltyAccount{PointsBalance: 100000},
			subtotal: 10000, reduction: "0", points: 10000, total: "5000",
		},
		{
			name:     "gift wrap",
			items:    []LineItem{{ID: "p1", UnitPrice: 8000, Quantity: 1}},
			sel:      Selections{Gift: true},
			subtotal: 8000, reduction: "0", total: "10000",
		},
		{
			name:     "everything stacked",
			items:    []LineItem{{ID: "p1", UnitPrice: 2500, Quantity: 2}},
			sel:      Selections{Coupon: save10, Gift: true, UsePoints: true},
			account:  &LoyaltyAccount{PointsBalance: 2000},
			subtotal: 5000, reduction: "500", points: 2000, total: "5500",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Compute(tc.items, tc.sel, tc.account)
			if got.Subtotal != tc.subtotal {
				t.Fatalf("expected subtotal %d, got %d", tc.subtotal, got.Subtotal)
			}
			if !got.CouponReduction.Equal(dec(tc.reduction)) {
				t.Fatalf("expected reduction %s, got %s", tc.reduction, got.CouponReduction)
			}
			if got.PointsRedeemedCount != tc.points {
				t.Fatalf("expected %d points, got %d", tc.points, got.PointsRedeemedCount)
			}
			if !got.Total.Equal(dec(tc.total)) {
				t.Fatalf("expected total %s, got %s", tc.total, got.Total)
			}
		})
	}
}

func TestComputeDoesNotMutateItems(t *testing.T) {
	items := []LineItem{{ID: "p1", Name: "Cuaderno", UnitPrice: 1000, Quantity: 3}}
	snapshot := items[0]
	_ = Compute(items, Selections{Gift: true, UsePoints: true}, &LoyaltyAccount{PointsBalance: 10})
	if items[0] != snapshot {
		t.Fatalf("items mutated: %+v", items[0])
	}
}
