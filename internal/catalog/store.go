package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/noah-isme/matita-boutique/internal/db"
)

// ErrNotFound is returned when a product id does not exist.
var ErrNotFound = errors.New("catalog: product not found")

// Repository is the persistence contract the service depends on.
type Repository interface {
	List(ctx context.Context, params ListParams) ([]Product, int64, error)
	Get(ctx context.Context, id string) (Product, error)
	GetMany(ctx context.Context, ids []string) ([]Product, error)
	Create(ctx context.Context, in ProductInput) (Product, error)
	Update(ctx context.Context, id string, in ProductInput) (Product, error)
	Delete(ctx context.Context, id string) error
}

// Store implements Repository on Postgres.
type Store struct {
	q db.Querier
}

// NewStore constructs a Postgres backed product store.
func NewStore(q db.Querier) *Store {
	return &Store{q: q}
}

const productColumns = `id::text AS id, name, description, curator_note, price, old_price, category,
	image_url, gallery, is_new, is_video, stock, created_at`

const listFilter = `WHERE ($1 = '' OR category = $1)
	AND (NOT $2::boolean OR is_new)
	AND ($3 = '' OR name ILIKE '%' || $3 || '%')`

func (s *Store) List(ctx context.Context, params ListParams) ([]Product, int64, error) {
	var total int64
	if err := s.q.QueryRow(ctx, `SELECT count(*) FROM products `+listFilter,
		params.Category, params.NewOnly, params.Query).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	offset := (params.Page - 1) * params.Limit
	if offset < 0 {
		offset = 0
	}
	rows, err := s.q.Query(ctx, `SELECT `+productColumns+` FROM products `+listFilter+`
		ORDER BY is_new DESC, created_at DESC, id LIMIT $4 OFFSET $5`,
		params.Category, params.NewOnly, params.Query, params.Limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[Product])
	if err != nil {
		return nil, 0, fmt.Errorf("scan products: %w", err)
	}
	return items, total, nil
}

func (s *Store) Get(ctx context.Context, id string) (Product, error) {
	rows, err := s.q.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err != nil {
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Product])
	if db.IsNotFound(err) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("scan product: %w", err)
	}
	return p, nil
}

func (s *Store) GetMany(ctx context.Context, ids []string) ([]Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.q.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Product])
}

func (s *Store) Create(ctx context.Context, in ProductInput) (Product, error) {
	rows, err := s.q.Query(ctx, `INSERT INTO products
		(name, description, curator_note, price, old_price, category, image_url, gallery, is_new, is_video, stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+productColumns,
		in.Name, in.Description, in.CuratorNote, in.Price, in.OldPrice, in.Category,
		in.ImageURL, galleryOrEmpty(in.Gallery), in.IsNew, in.IsVideo, in.Stock)
	if err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Product])
}

func (s *Store) Update(ctx context.Context, id string, in ProductInput) (Product, error) {
	rows, err := s.q.Query(ctx, `UPDATE products SET
		name = $2, description = $3, curator_note = $4, price = $5, old_price = $6, category = $7,
		image_url = $8, gallery = $9, is_new = $10, is_video = $11, stock = $12
		WHERE id = $1
		RETURNING `+productColumns,
		id, in.Name, in.Description, in.CuratorNote, in.Price, in.OldPrice, in.Category,
		in.ImageURL, galleryOrEmpty(in.Gallery), in.IsNew, in.IsVideo, in.Stock)
	if err != nil {
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Product])
	if db.IsNotFound(err) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func galleryOrEmpty(g []string) []string {
	if g == nil {
		return []string{}
	}
	return g
}
