package favorites

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/noah-isme/matita-boutique/internal/db"
)

var ErrUnknownProduct = errors.New("favorites: unknown product")

type Repository interface {
	List(ctx context.Context, userID string) ([]string, error)
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) error
}

type Store struct {
	q db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{q: q}
}

func (s *Store) List(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.q.Query(ctx, `SELECT product_id::text FROM user_favorites WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (s *Store) Add(ctx context.Context, userID, productID string) error {
	_, err := s.q.Exec(ctx, `INSERT INTO user_favorites (user_id, product_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, productID)
	if db.IsForeignKeyViolation(err) {
		return ErrUnknownProduct
	}
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, userID, productID string) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM user_favorites WHERE user_id = $1 AND product_id = $2`, userID, productID); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}
