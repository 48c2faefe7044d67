package pricing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentMethod is an offline settlement option presented at checkout.
type PaymentMethod struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Detail string `json:"detail"`
}

// DefaultPaymentMethod is selected when the session does not name one.
const DefaultPaymentMethod = "transfer"

var paymentMethods = []PaymentMethod{
	{ID: "transfer", Label: "Transferencia / Alias", Detail: "Alias: Matita.2020.mp o Matita.2023"},
	{ID: "cash", Label: "Efectivo en Local", Detail: "10% de cortesía extra"},
	{ID: "card", Label: "Tarjeta de Crédito/Débito", Detail: "En el local vía Posnet"},
}

// PaymentMethods returns the supported payment options in display order.
func PaymentMethods() []PaymentMethod {
	out := make([]PaymentMethod, len(paymentMethods))
	copy(out, paymentMethods)
	return out
}

// LookupPaymentMethod finds a payment method by id.
func LookupPaymentMethod(id string) (PaymentMethod, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		id = DefaultPaymentMethod
	}
	for _, pm := range paymentMethods {
		if pm.ID == id {
			return pm, true
		}
	}
	return PaymentMethod{}, false
}

// GuestRecipient is printed when the order has no member name.
const GuestRecipient = "Invitado"

// Template renders order summaries for the messaging handoff.
type Template struct {
	StoreName     string
	PickupAddress string
}

// DefaultTemplate is used by RenderOrderSummary.
var DefaultTemplate = Template{
	StoreName:     "MATITA BOUTIQUE",
	PickupAddress: "Simón Bolivar 1206, La Calera",
}

// RenderOrderSummary renders the summary with DefaultTemplate.
func RenderOrderSummary(items []LineItem, sel Selections, comp Computation, recipient string) string {
	return DefaultTemplate.Render(items, sel, comp, recipient)
}

// Render builds the human readable order text handed to the messaging collaborator.
func (t Template) Render(items []LineItem, sel Selections, comp Computation, recipient string) string {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		recipient = GuestRecipient
	}
	var b strings.Builder
	b.WriteString("*✨ RESERVA " + t.storeName() + " ✨*\n")
	b.WriteString("--------------------------------\n")
	b.WriteString("Socio: " + recipient + "\n\n")

	lines := make([]string, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		lines = append(lines, "📦 *"+it.Name+"* (x"+itoa(int64(it.Quantity))+") - "+FormatPrice(decimal.NewFromInt(it.LineTotal())))
	}
	b.WriteString(strings.Join(lines, "\n"))

	if sel.Gift {
		b.WriteString("\n\n🎁 *REGALO:* Pack Premium")
		if note := strings.TrimSpace(sel.GiftNote); note != "" {
			b.WriteString("\n📜 *DEDICATORIA:* \"" + note + "\"")
		}
	}
	if comp.PointsUsed() {
		b.WriteString("\n\n✨ *CLUB MATITA:* -" + FormatPrice(comp.PointsRedeemedValue))
	}
	if comp.CouponApplied() {
		b.WriteString("\n🎫 *DESCUENTO:* -" + FormatPrice(comp.CouponReduction))
	}

	label := sel.PaymentMethod
	if pm, ok := LookupPaymentMethod(sel.PaymentMethod); ok {
		label = pm.Label
	}
	b.WriteString("\n\n💳 *MÉTODO DE PAGO:* " + label + "\n")
	b.WriteString("💰 *TOTAL A ABONAR:* " + FormatPrice(comp.Total))
	if addr := strings.TrimSpace(t.PickupAddress); addr != "" {
		b.WriteString("\n\n_Retiro en: " + addr + "._")
	}
	return b.String()
}

func (t Template) storeName() string {
	if name := strings.TrimSpace(t.StoreName); name != "" {
		return strings.ToUpper(name)
	}
	return DefaultTemplate.StoreName
}

// FormatPrice renders an amount the es-AR way: rounded to whole units with dot thousands.
func FormatPrice(amount decimal.Decimal) string {
	rounded := amount.Round(0).IntPart()
	sign := ""
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}
	digits := itoa(rounded)
	var grouped strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		grouped.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if grouped.Len() > 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteString(digits[i : i+3])
	}
	return sign + "$ " + grouped.String()
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
