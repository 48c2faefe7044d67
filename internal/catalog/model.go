package catalog

import (
	"strings"
	"time"
)

// Category names the storefront shelves.
type Category string

const (
	CategorySchool    Category = "Escolar"
	CategoryOffice    Category = "Oficina"
	CategoryTechnical Category = "Técnica"
	CategoryHaberdash Category = "Mercería"
	CategoryToys      Category = "Juguetería"
	CategoryGiftShop  Category = "Regalería"
)

var categories = []Category{
	CategorySchool, CategoryOffice, CategoryTechnical,
	CategoryHaberdash, CategoryToys, CategoryGiftShop,
}

// Categories returns the shelf list in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory matches name case-insensitively against the known shelves.
func ParseCategory(name string) (Category, bool) {
	trimmed := strings.TrimSpace(name)
	for _, c := range categories {
		if strings.EqualFold(string(c), trimmed) {
			return c, true
		}
	}
	return "", false
}

// Product is a catalog entry. Prices are whole pesos.
type Product struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CuratorNote string    `json:"curatorNote,omitempty" db:"curator_note"`
	Price       int64     `json:"price" db:"price"`
	OldPrice    *int64    `json:"oldPrice,omitempty" db:"old_price"`
	Category    string    `json:"category" db:"category"`
	ImageURL    string    `json:"imageUrl" db:"image_url"`
	Gallery     []string  `json:"gallery" db:"gallery"`
	IsNew       bool      `json:"isNew" db:"is_new"`
	IsVideo     bool      `json:"isVideo" db:"is_video"`
	Stock       int       `json:"stock" db:"stock"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool { return p.Stock > 0 }

// ProductInput is the admin payload for creating or replacing a product.
type ProductInput struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=4000"`
	CuratorNote string   `json:"curatorNote" validate:"max=1000"`
	Price       int64    `json:"price" validate:"gte=0"`
	OldPrice    *int64   `json:"oldPrice" validate:"omitempty,gte=0"`
	Category    string   `json:"category" validate:"required"`
	ImageURL    string   `json:"imageUrl" validate:"omitempty,url"`
	Gallery     []string `json:"gallery" validate:"omitempty,dive,url"`
	IsNew       bool     `json:"isNew"`
	IsVideo     bool     `json:"isVideo"`
	Stock       int      `json:"stock" validate:"gte=0"`
}

// ListParams captures filters for product listing.
type ListParams struct {
	Category string
	NewOnly  bool
	Query    string
	Page     int
	Limit    int
}

// ListResult contains list data and pagination metadata.
type ListResult struct {
	Items []Product `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}
