// Package sales records completed checkouts for the back office. Sales are written by a
// background task so a slow database never blocks the customer handoff.
package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/matita-boutique/internal/pricing"
)

// Sale is one submitted checkout as listed in the admin panel.
type Sale struct {
	ID            string          `json:"id"`
	Date          time.Time       `json:"date"`
	Total         decimal.Decimal `json:"total"`
	ItemsCount    int             `json:"itemsCount"`
	ItemsDetail   string          `json:"itemsDetail"`
	UserID        string          `json:"userId,omitempty"`
	PaymentMethod string          `json:"paymentMethod"`
	PointsUsed    int64           `json:"pointsUsed"`
}

// Stats aggregates recorded revenue.
type Stats struct {
	Count   int64           `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// BuildSale snapshots a computed checkout into a sale row.
func BuildSale(userID string, items []pricing.LineItem, sel pricing.Selections, comp pricing.Computation, now time.Time) Sale {
	method, ok := pricing.LookupPaymentMethod(sel.PaymentMethod)
	if !ok {
		method, _ = pricing.LookupPaymentMethod(pricing.DefaultPaymentMethod)
	}
	count := 0
	for _, it := range items {
		if it.Quantity > 0 {
			count += it.Quantity
		}
	}
	return Sale{
		ID:            uuid.NewString(),
		Date:          now.UTC(),
		Total:         comp.Total,
		ItemsCount:    count,
		ItemsDetail:   ItemsDetail(items, comp, method.Label),
		UserID:        userID,
		PaymentMethod: method.ID,
		PointsUsed:    comp.PointsRedeemedCount,
	}
}

// ItemsDetail renders the one-line description stored with a sale, for example
// "Agenda (x2), Lápiz (x1) + Pack Regalo (✨-400 pts) [Pago: Efectivo en Local]".
func ItemsDetail(items []pricing.LineItem, comp pricing.Computation, paymentLabel string) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (x%d)", it.Name, it.Quantity))
	}
	var b strings.Builder
	b.WriteString(strings.Join(parts, ", "))
	if comp.GiftSurcharge > 0 {
		b.WriteString(" + Pack Regalo")
	}
	if comp.PointsRedeemedCount > 0 {
		fmt.Fprintf(&b, " (✨-%d pts)", comp.PointsRedeemedCount)
	}
	fmt.Fprintf(&b, " [Pago: %s]", paymentLabel)
	return b.String()
}
