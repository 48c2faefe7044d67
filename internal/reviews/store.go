package reviews

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/noah-isme/matita-boutique/internal/db"
)

var (
	// ErrNotFound is returned when a review id does not exist.
	ErrNotFound = errors.New("reviews: not found")
	// ErrUnknownProduct is returned when a review targets a product that does not exist.
	ErrUnknownProduct = errors.New("reviews: unknown product")
)

// Review is a rating left on a product.
type Review struct {
	ID        string    `json:"id" db:"id"`
	ProductID string    `json:"productId" db:"product_id"`
	UserID    *string   `json:"userId,omitempty" db:"user_id"`
	UserName  string    `json:"userName" db:"user_name"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Stats summarises the ratings of a product.
type Stats struct {
	Count   int64   `json:"count"`
	Average float64 `json:"average"`
}

// Repository is the persistence contract the service depends on.
type Repository interface {
	List(ctx context.Context, productID string, limit, offset int) ([]Review, error)
	Insert(ctx context.Context, r Review) (Review, error)
	Stats(ctx context.Context, productID string) (Stats, error)
	Delete(ctx context.Context, id string) error
}

// Store implements Repository on Postgres.
type Store struct {
	q db.Querier
}

// NewStore constructs a Postgres backed review store.
func NewStore(q db.Querier) *Store {
	return &Store{q: q}
}

const reviewColumns = `id::text AS id, product_id::text AS product_id, user_id::text AS user_id,
	user_name, rating::int AS rating, comment, created_at`

// List returns reviews newest first. An empty productID lists across the catalog.
func (s *Store) List(ctx context.Context, productID string, limit, offset int) ([]Review, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if productID == "" {
		rows, err = s.q.Query(ctx, `SELECT `+reviewColumns+` FROM reviews
			ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	} else {
		rows, err = s.q.Query(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE product_id = $1
			ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`, productID, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[Review])
	if err != nil {
		return nil, fmt.Errorf("scan reviews: %w", err)
	}
	return out, nil
}

func (s *Store) Insert(ctx context.Context, r Review) (Review, error) {
	err := s.q.QueryRow(ctx, `INSERT INTO reviews (product_id, user_id, user_name, rating, comment)
		VALUES ($1, $2, $3, $4, $5) RETURNING id::text, created_at`,
		r.ProductID, r.UserID, r.UserName, r.Rating, r.Comment).Scan(&r.ID, &r.CreatedAt)
	if db.IsForeignKeyViolation(err) {
		return Review{}, ErrUnknownProduct
	}
	if err != nil {
		return Review{}, fmt.Errorf("insert review: %w", err)
	}
	return r, nil
}

func (s *Store) Stats(ctx context.Context, productID string) (Stats, error) {
	var st Stats
	err := s.q.QueryRow(ctx, `SELECT count(*), COALESCE(avg(rating), 0)::float8 FROM reviews WHERE product_id = $1`,
		productID).Scan(&st.Count, &st.Average)
	if err != nil {
		return Stats{}, fmt.Errorf("review stats: %w", err)
	}
	return st, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
