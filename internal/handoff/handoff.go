// Package handoff builds the deep link that passes a rendered order summary to the store's
// messaging account. Delivery happens on the customer's device and is not observable here.
package handoff

import (
	"errors"
	"net/url"
	"strings"
)

// DefaultBaseURL is the WhatsApp click-to-chat endpoint.
const DefaultBaseURL = "https://wa.me"

// ErrNoRecipient is returned when no destination number is configured.
var ErrNoRecipient = errors.New("handoff: recipient number is required")

// Builder produces click-to-chat links for one store number.
type Builder struct {
	BaseURL string
	Number  string
}

// Link returns <base>/<number>?text=<escaped text>. The number keeps digits only.
func (b Builder) Link(text string) (string, error) {
	number := digits(b.Number)
	if number == "" {
		return "", ErrNoRecipient
	}
	base := strings.TrimRight(strings.TrimSpace(b.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return base + "/" + number + "?text=" + EscapeText(text), nil
}

// EscapeText percent-encodes text the way browsers encode a URI component: spaces become
// %20 rather than '+', and every reserved character is escaped.
func EscapeText(text string) string {
	return strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
