package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/noah-isme/matita-boutique/internal/db"
)

// ErrUnknownProduct is returned when a cart write references a missing product.
var ErrUnknownProduct = errors.New("cart: unknown product")

// Repository is the persistence contract the service depends on.
type Repository interface {
	Lines(ctx context.Context, userID string) ([]Line, error)
	Add(ctx context.Context, userID, productID string, qty int) error
	Adjust(ctx context.Context, userID, productID string, delta int) error
	Remove(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error
}

// Store implements Repository on the cart_items table.
type Store struct {
	q db.Querier
}

// NewStore constructs a Postgres backed cart store.
func NewStore(q db.Querier) *Store {
	return &Store{q: q}
}

func (s *Store) Lines(ctx context.Context, userID string) ([]Line, error) {
	rows, err := s.q.Query(ctx, `SELECT c.product_id::text, p.name, p.price, p.image_url, p.stock, c.quantity
		FROM cart_items c JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at, c.product_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Line, error) {
		var l Line
		err := row.Scan(&l.ProductID, &l.Name, &l.UnitPrice, &l.ImageURL, &l.Stock, &l.Quantity)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan cart: %w", err)
	}
	return lines, nil
}

// Add inserts the product with qty or increases the existing quantity by qty, capped at
// MaxQuantity.
func (s *Store) Add(ctx context.Context, userID, productID string, qty int) error {
	_, err := s.q.Exec(ctx, `INSERT INTO cart_items (user_id, product_id, quantity) VALUES ($1, $2, LEAST($3, $4))
		ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = LEAST(cart_items.quantity + EXCLUDED.quantity, $4)`,
		userID, productID, qty, MaxQuantity)
	if db.IsForeignKeyViolation(err) {
		return ErrUnknownProduct
	}
	if err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

// Adjust applies delta to an existing line, keeping the quantity between one and MaxQuantity.
func (s *Store) Adjust(ctx context.Context, userID, productID string, delta int) error {
	tag, err := s.q.Exec(ctx, `UPDATE cart_items SET quantity = LEAST(GREATEST(quantity + $3, 1), $4)
		WHERE user_id = $1 AND product_id = $2`, userID, productID, delta, MaxQuantity)
	if err != nil {
		return fmt.Errorf("adjust cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUnknownProduct
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, userID, productID string) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID); err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, userID string) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
