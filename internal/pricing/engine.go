package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value stored in whole currency units.
type Money = int64

const (
	// WelcomeCouponCode is the promotional code honoured outside the coupon catalog.
	WelcomeCouponCode = "BIENVENIDA"
	// MinPurchaseForWelcome is the minimum subtotal required by the welcome coupon.
	MinPurchaseForWelcome Money = 15000
	// GiftWrapPrice is the flat surcharge added when gift wrapping is selected.
	GiftWrapPrice Money = 2000
)

var (
	// WelcomeRate is the discount granted by the welcome coupon.
	WelcomeRate = decimal.RequireFromString("0.15")
	// PointValue is the currency value of a single loyalty point.
	PointValue = decimal.RequireFromString("0.5")
	// RedemptionCap is the share of the raw subtotal that points may cover.
	RedemptionCap = decimal.RequireFromString("0.5")
)

var (
	// ErrCouponNotFound is returned when a code matches neither the catalog nor the welcome coupon.
	ErrCouponNotFound = errors.New("coupon not found")
	// ErrCouponIneligible is returned when the welcome coupon is used below its minimum purchase.
	ErrCouponIneligible = errors.New("coupon not eligible")
)

// IneligibleError carries the threshold the caller has to show alongside ErrCouponIneligible.
type IneligibleError struct {
	Code        string
	MinPurchase Money
}

func (e *IneligibleError) Error() string {
	return fmt.Sprintf("coupon %s requires a minimum purchase of %d", e.Code, e.MinPurchase)
}

// Unwrap allows errors.Is(err, ErrCouponIneligible).
func (e *IneligibleError) Unwrap() error { return ErrCouponIneligible }

// LineItem describes a product snapshot and the requested quantity.
type LineItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice Money  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

// LineTotal returns unit price times quantity.
func (it LineItem) LineTotal() Money {
	return it.UnitPrice * Money(it.Quantity)
}

// Coupon is a named percentage discount.
type Coupon struct {
	Code         string          `json:"code"`
	DiscountRate decimal.Decimal `json:"discountRate"`
}

// LoyaltyAccount is the redeemable balance of an authenticated member.
type LoyaltyAccount struct {
	PointsBalance int64 `json:"pointsBalance"`
}

// Redemption is the outcome of applying loyalty points to a purchase.
type Redemption struct {
	Value  decimal.Decimal `json:"value"`
	Points int64           `json:"points"`
}

// NormalizeCode upper-cases and trims a user supplied coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ComputeSubtotal sums unit price times quantity across the provided items.
func ComputeSubtotal(items []LineItem) Money {
	var subtotal Money
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		subtotal += it.LineTotal()
	}
	return subtotal
}

// ResolveCoupon finds the discount rate for code. Only the welcome coupon depends on subtotal.
func ResolveCoupon(code string, subtotal Money, catalog []Coupon) (Coupon, error) {
	normalized := NormalizeCode(code)
	if normalized == WelcomeCouponCode {
		if subtotal < MinPurchaseForWelcome {
			return Coupon{}, &IneligibleError{Code: WelcomeCouponCode, MinPurchase: MinPurchaseForWelcome}
		}
		return Coupon{Code: WelcomeCouponCode, DiscountRate: WelcomeRate}, nil
	}
	if normalized == "" {
		return Coupon{}, ErrCouponNotFound
	}
	for _, c := range catalog {
		if NormalizeCode(c.Code) == normalized {
			return Coupon{Code: normalized, DiscountRate: c.DiscountRate}, nil
		}
	}
	return Coupon{}, ErrCouponNotFound
}

// CouponReduction applies rate to the subtotal. Rates outside [0,1] are clamped.
func CouponReduction(subtotal Money, rate decimal.Decimal) decimal.Decimal {
	if subtotal <= 0 || !rate.IsPositive() {
		return decimal.Zero
	}
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		rate = decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(subtotal).Mul(rate)
}

// ResolvePointsRedemption caps redeemed value at half of the raw subtotal.
func ResolvePointsRedemption(account *LoyaltyAccount, subtotal Money, requested bool) Redemption {
	if account == nil || !requested || account.PointsBalance <= 0 || subtotal <= 0 {
		return Redemption{Value: decimal.Zero}
	}
	balanceValue := decimal.NewFromInt(account.PointsBalance).Mul(PointValue)
	capValue := decimal.NewFromInt(subtotal).Mul(RedemptionCap)
	value := decimal.Min(balanceValue, capValue)
	return Redemption{
		Value:  value,
		Points: value.Div(PointValue).IntPart(),
	}
}

// ComputeTotal combines the components and floors the result at zero.
func ComputeTotal(subtotal Money, couponReduction, pointsValue decimal.Decimal, giftSurcharge Money) decimal.Decimal {
	total := decimal.NewFromInt(subtotal).
		Sub(couponReduction).
		Sub(pointsValue).
		Add(decimal.NewFromInt(giftSurcharge))
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// Selections are the independent checkout toggles that feed a computation.
type Selections struct {
	Coupon        *Coupon `json:"coupon,omitempty"`
	Gift          bool    `json:"gift"`
	GiftNote      string  `json:"giftNote,omitempty"`
	UsePoints     bool    `json:"usePoints"`
	PaymentMethod string  `json:"paymentMethod"`
}

// Computation is the itemised result for a cart snapshot. It is never persisted.
type Computation struct {
	Subtotal            Money           `json:"subtotal"`
	CouponCode          string          `json:"couponCode,omitempty"`
	CouponRate          decimal.Decimal `json:"couponRate"`
	CouponReduction     decimal.Decimal `json:"couponReduction"`
	PointsRedeemedValue decimal.Decimal `json:"pointsRedeemedValue"`
	PointsRedeemedCount int64           `json:"pointsRedeemedCount"`
	GiftSurcharge       Money           `json:"giftSurcharge"`
	Total               decimal.Decimal `json:"total"`
}

// Compute derives the full computation from a cart snapshot, the selections and an optional account.
func Compute(items []LineItem, sel Selections, account *LoyaltyAccount) Computation {
	subtotal := ComputeSubtotal(items)
	out := Computation{
		Subtotal:        subtotal,
		CouponRate:      decimal.Zero,
		CouponReduction: decimal.Zero,
	}
	if sel.Coupon != nil {
		out.CouponCode = sel.Coupon.Code
		out.CouponRate = sel.Coupon.DiscountRate
		out.CouponReduction = CouponReduction(subtotal, sel.Coupon.DiscountRate)
	}
	redemption := ResolvePointsRedemption(account, subtotal, sel.UsePoints)
	out.PointsRedeemedValue = redemption.Value
	out.PointsRedeemedCount = redemption.Points
	if sel.Gift {
		out.GiftSurcharge = GiftWrapPrice
	}
	out.Total = ComputeTotal(subtotal, out.CouponReduction, out.PointsRedeemedValue, out.GiftSurcharge)
	return out
}

// CouponApplied reports whether the computation carries a positive coupon discount.
func (c Computation) CouponApplied() bool {
	return c.CouponRate.IsPositive()
}

// PointsUsed reports whether any loyalty points were redeemed.
func (c Computation) PointsUsed() bool {
	return c.PointsRedeemedValue.IsPositive()
}
