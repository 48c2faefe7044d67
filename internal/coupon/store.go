package coupon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/matita-boutique/internal/db"
)

var (
	// ErrNotFound is returned when a coupon id does not exist.
	ErrNotFound = errors.New("coupon: not found")
	// ErrDuplicateCode is returned when the code is already taken.
	ErrDuplicateCode = errors.New("coupon: duplicate code")
)

// Record is a stored coupon as administered.
type Record struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	Discount  decimal.Decimal `json:"discount"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Percent returns the discount as a whole percentage for display.
func (r Record) Percent() int64 {
	return r.Discount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Repository is the persistence contract the service depends on.
type Repository interface {
	List(ctx context.Context) ([]Record, error)
	Create(ctx context.Context, code string, rate decimal.Decimal) (Record, error)
	Delete(ctx context.Context, id string) error
}

// Store implements Repository on Postgres.
type Store struct {
	q db.Querier
}

// NewStore constructs a Postgres backed coupon store.
func NewStore(q db.Querier) *Store {
	return &Store{q: q}
}

func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.q.Query(ctx, `SELECT id::text, code, discount::text, created_at FROM coupons ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var (
			rec  Record
			rate string
		)
		if err := rows.Scan(&rec.ID, &rec.Code, &rate, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		if rec.Discount, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("parse coupon %s discount: %w", rec.Code, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, code string, rate decimal.Decimal) (Record, error) {
	rec := Record{Code: code, Discount: rate}
	err := s.q.QueryRow(ctx, `INSERT INTO coupons (code, discount) VALUES ($1, $2::numeric)
		RETURNING id::text, created_at`, code, rate.String()).Scan(&rec.ID, &rec.CreatedAt)
	if db.IsUniqueViolation(err) {
		return Record{}, ErrDuplicateCode
	}
	if err != nil {
		return Record{}, fmt.Errorf("insert coupon: %w", err)
	}
	return rec, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
