// Package checkout turns a client-held checkout session into a priced order, the summary
// sent through the messaging handoff, and a queued sales record.
package checkout

import (
	"strings"

	"github.com/noah-isme/matita-boutique/internal/pricing"
)

// MaxGiftNote bounds the dedication printed on the summary.
const MaxGiftNote = 500

// Session is every input of a checkout in one serialisable value. Clients keep it between
// requests and send it back whole; the server never stores it.
type Session struct {
	Items         []pricing.LineItem `json:"items" validate:"max=100"`
	AppliedCoupon *pricing.Coupon    `json:"appliedCoupon,omitempty"`
	Gift          bool               `json:"gift"`
	GiftNote      string             `json:"giftNote,omitempty" validate:"max=500"`
	UsePoints     bool               `json:"usePoints"`
	PaymentMethod string             `json:"paymentMethod,omitempty"`
	Recipient     string             `json:"recipient,omitempty" validate:"max=120"`
}

// Selections projects the session onto the pricing toggles.
func (s Session) Selections() pricing.Selections {
	sel := pricing.Selections{
		Coupon:        s.AppliedCoupon,
		Gift:          s.Gift,
		UsePoints:     s.UsePoints,
		PaymentMethod: s.PaymentMethod,
	}
	if s.Gift {
		sel.GiftNote = strings.TrimSpace(s.GiftNote)
	}
	if sel.PaymentMethod == "" {
		sel.PaymentMethod = pricing.DefaultPaymentMethod
	}
	return sel
}

// WithCoupon returns a copy of the session with c replacing any applied coupon.
func (s Session) WithCoupon(c pricing.Coupon) Session {
	s.AppliedCoupon = &c
	return s
}
