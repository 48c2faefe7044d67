package loyalty

import (
	"context"
	"errors"
	"fmt"

	"github.com/noah-isme/matita-boutique/internal/db"
)

// ErrNotFound is returned when no profile exists for the member id.
var ErrNotFound = errors.New("loyalty: profile not found")

// Repository is the persistence contract the service depends on.
type Repository interface {
	Get(ctx context.Context, id string) (Member, error)
	List(ctx context.Context, limit, offset int) ([]Member, int64, error)
	SetPoints(ctx context.Context, id string, points int64) (Member, error)
	Delete(ctx context.Context, id string) error
}

// Store implements Repository on the profiles table.
type Store struct {
	q db.Querier
}

// NewStore constructs a Postgres backed profile store.
func NewStore(q db.Querier) *Store {
	return &Store{q: q}
}

func (s *Store) Get(ctx context.Context, id string) (Member, error) {
	var m Member
	err := s.q.QueryRow(ctx, `SELECT id::text, name, email, points FROM profiles WHERE id = $1`, id).
		Scan(&m.ID, &m.Name, &m.Email, &m.Points)
	if db.IsNotFound(err) {
		return Member{}, ErrNotFound
	}
	if err != nil {
		return Member{}, fmt.Errorf("get profile: %w", err)
	}
	return m, nil
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]Member, int64, error) {
	var total int64
	if err := s.q.QueryRow(ctx, `SELECT count(*) FROM profiles`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}
	rows, err := s.q.Query(ctx, `SELECT id::text, name, email, points FROM profiles
		ORDER BY points DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()
	var out []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Points); err != nil {
			return nil, 0, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

func (s *Store) SetPoints(ctx context.Context, id string, points int64) (Member, error) {
	var m Member
	err := s.q.QueryRow(ctx, `UPDATE profiles SET points = $2 WHERE id = $1
		RETURNING id::text, name, email, points`, id, points).Scan(&m.ID, &m.Name, &m.Email, &m.Points)
	if db.IsNotFound(err) {
		return Member{}, ErrNotFound
	}
	if err != nil {
		return Member{}, fmt.Errorf("set points: %w", err)
	}
	return m, nil
}

// Deduct subtracts points in a single statement, flooring the balance at zero. The sales
// store runs it inside the transaction that records the sale.
func (s *Store) Deduct(ctx context.Context, id string, points int64) (int64, error) {
	var balance int64
	err := s.q.QueryRow(ctx, `UPDATE profiles SET points = GREATEST(points - $2, 0) WHERE id = $1
		RETURNING points`, id, points).Scan(&balance)
	if db.IsNotFound(err) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("deduct points: %w", err)
	}
	return balance, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
