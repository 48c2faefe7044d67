package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/matita-boutique/internal/db"
	"github.com/noah-isme/matita-boutique/internal/loyalty"
)

// ErrNotFound is returned when a sale id does not exist.
var ErrNotFound = errors.New("sales: not found")

// Repository is the persistence contract for sales.
type Repository interface {
	Record(ctx context.Context, s Sale, points int64) (Recorded, error)
	List(ctx context.Context, limit, offset int) ([]Sale, int64, error)
	Stats(ctx context.Context) (Stats, error)
	Delete(ctx context.Context, id string) error
}

// Recorded reports what a Record call changed.
type Recorded struct {
	Inserted bool
	// Deducted is false when no points were requested or the buyer has no profile.
	Deducted bool
	Balance  int64
}

// Store implements Repository on Postgres.
type Store struct {
	conn db.Conn
}

// NewStore constructs a Postgres backed sales store.
func NewStore(conn db.Conn) *Store {
	return &Store{conn: conn}
}

// Record inserts the sale and spends the redeemed points in one transaction. A replayed sale
// id changes nothing, so the task can be retried until both writes commit together.
func (s *Store) Record(ctx context.Context, sale Sale, points int64) (Recorded, error) {
	var out Recorded
	err := pgx.BeginFunc(ctx, s.conn, func(tx pgx.Tx) error {
		out = Recorded{}
		var userID *string
		if sale.UserID != "" {
			userID = &sale.UserID
		}
		tag, err := tx.Exec(ctx, `INSERT INTO sales (id, user_id, total, items_count, items_detail, payment_method, points_used, date)
			VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8) ON CONFLICT (id) DO NOTHING`,
			sale.ID, userID, sale.Total.StringFixed(2), sale.ItemsCount, sale.ItemsDetail, sale.PaymentMethod, sale.PointsUsed, sale.Date)
		if err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}
		if out.Inserted = tag.RowsAffected() > 0; !out.Inserted || points <= 0 || sale.UserID == "" {
			return nil
		}
		balance, err := loyalty.NewStore(tx).Deduct(ctx, sale.UserID, points)
		switch {
		case errors.Is(err, loyalty.ErrNotFound):
			return nil
		case err != nil:
			return err
		}
		out.Deducted, out.Balance = true, balance
		return nil
	})
	if err != nil {
		return Recorded{}, err
	}
	return out, nil
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]Sale, int64, error) {
	var total int64
	if err := s.conn.QueryRow(ctx, `SELECT count(*) FROM sales`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sales: %w", err)
	}
	rows, err := s.conn.Query(ctx, `SELECT id::text, COALESCE(user_id::text, ''), total::text, items_count, items_detail,
		payment_method, points_used, date FROM sales ORDER BY date DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var out []Sale
	for rows.Next() {
		var (
			sale  Sale
			total string
		)
		if err := rows.Scan(&sale.ID, &sale.UserID, &total, &sale.ItemsCount, &sale.ItemsDetail,
			&sale.PaymentMethod, &sale.PointsUsed, &sale.Date); err != nil {
			return nil, 0, fmt.Errorf("scan sale: %w", err)
		}
		if sale.Total, err = decimal.NewFromString(total); err != nil {
			return nil, 0, fmt.Errorf("parse sale %s total: %w", sale.ID, err)
		}
		out = append(out, sale)
	}
	return out, total, rows.Err()
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var (
		st      Stats
		revenue string
	)
	if err := s.conn.QueryRow(ctx, `SELECT count(*), COALESCE(sum(total), 0)::text FROM sales`).Scan(&st.Count, &revenue); err != nil {
		return Stats{}, fmt.Errorf("sales stats: %w", err)
	}
	var err error
	if st.Revenue, err = decimal.NewFromString(revenue); err != nil {
		return Stats{}, fmt.Errorf("parse revenue: %w", err)
	}
	return st, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.conn.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
