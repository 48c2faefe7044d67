// Package cart keeps member bags in sync with the server.
// Guest bags live on the client and only reach the server at checkout or merge time.
package cart

import "github.com/noah-isme/matita-boutique/internal/pricing"

// Line is one product in a member bag, joined with its current catalog data.
type Line struct {
	ProductID string        `json:"productId"`
	Name      string        `json:"name"`
	UnitPrice pricing.Money `json:"unitPrice"`
	ImageURL  string        `json:"imageUrl"`
	Stock     int           `json:"stock"`
	Quantity  int           `json:"quantity"`
}

// Bag is an ordered set of lines keyed by product.
type Bag []Line

// Find returns the index of productID, or -1.
func (b Bag) Find(productID string) int {
	for i, l := range b {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// Count returns the total number of units.
func (b Bag) Count() int {
	n := 0
	for _, l := range b {
		n += l.Quantity
	}
	return n
}

// LineItems converts the bag into pricing inputs.
func (b Bag) LineItems() []pricing.LineItem {
	out := make([]pricing.LineItem, 0, len(b))
	for _, l := range b {
		out = append(out, pricing.LineItem{ID: l.ProductID, Name: l.Name, UnitPrice: l.UnitPrice, Quantity: l.Quantity})
	}
	return out
}

// withAdded returns a copy with qty more units of product. New lines start at qty and no
// line grows past MaxQuantity.
func (b Bag) withAdded(product Line, qty int) Bag {
	out := append(Bag(nil), b...)
	if i := out.Find(product.ProductID); i >= 0 {
		out[i].Quantity = min(out[i].Quantity+qty, MaxQuantity)
		return out
	}
	product.Quantity = min(qty, MaxQuantity)
	return append(out, product)
}

// withAdjusted returns a copy with delta applied to product, clamped to [1, MaxQuantity].
func (b Bag) withAdjusted(productID string, delta int) Bag {
	out := append(Bag(nil), b...)
	if i := out.Find(productID); i >= 0 {
		out[i].Quantity = min(max(out[i].Quantity+delta, 1), MaxQuantity)
	}
	return out
}

// without returns a copy lacking product.
func (b Bag) without(productID string) Bag {
	out := make(Bag, 0, len(b))
	for _, l := range b {
		if l.ProductID != productID {
			out = append(out, l)
		}
	}
	return out
}
