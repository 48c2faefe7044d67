package cart

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/matita-boutique/internal/catalog"
	"github.com/noah-isme/matita-boutique/internal/common"
	"github.com/noah-isme/matita-boutique/internal/optimistic"
)

// MaxQuantity caps the units of one product in a cart. Checkout rejects larger lines.
const MaxQuantity = 99

// ProductLookup resolves product ids to catalog entries.
type ProductLookup interface {
	Lookup(ctx context.Context, ids []string) (map[string]catalog.Product, error)
}

// Result is the settled bag after a change.
type Result = optimistic.Result[Bag]

// Service applies bag changes optimistically against the store.
type Service struct {
	repo     Repository
	products ProductLookup
}

// NewService constructs a cart service.
func NewService(repo Repository, products ProductLookup) *Service {
	return &Service{repo: repo, products: products}
}

// Get returns the member bag.
func (s *Service) Get(ctx context.Context, userID string) (Bag, error) {
	lines, err := s.repo.Lines(ctx, userID)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		return Bag{}, nil
	}
	return Bag(lines), nil
}

func (s *Service) reload(userID string) func(context.Context) (Bag, error) {
	return func(ctx context.Context) (Bag, error) { return s.Get(ctx, userID) }
}

// Add puts qty units of productID in the bag, inserting the line if needed.
func (s *Service) Add(ctx context.Context, userID, productID string, qty int) (Result, error) {
	if qty == 0 {
		qty = 1
	}
	if qty < 1 || qty > MaxQuantity {
		return Result{}, common.NewAppError("VALIDATION_ERROR", "quantity out of range", http.StatusUnprocessableEntity, nil).
			WithDetails(map[string]string{"quantity": "range"})
	}
	product, err := s.product(ctx, productID)
	if err != nil {
		return Result{}, err
	}
	current, err := s.Get(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	line := Line{ProductID: product.ID, Name: product.Name, UnitPrice: product.Price, ImageURL: product.ImageURL, Stock: product.Stock}
	return s.apply(ctx, userID, current,
		func(b Bag) Bag { return b.withAdded(line, qty) },
		func(ctx context.Context, _ Bag) error { return s.repo.Add(ctx, userID, productID, qty) },
	)
}

// UpdateQuantity applies delta to a line. The quantity never drops below one; use Remove instead.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID string, delta int) (Result, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if current.Find(productID) < 0 {
		return Result{}, notInCart()
	}
	if delta == 0 {
		return Result{State: current, Outcome: optimistic.Committed}, nil
	}
	return s.apply(ctx, userID, current,
		func(b Bag) Bag { return b.withAdjusted(productID, delta) },
		func(ctx context.Context, _ Bag) error { return s.repo.Adjust(ctx, userID, productID, delta) },
	)
}

// Remove drops a line. Removing an absent product is a no-op.
func (s *Service) Remove(ctx context.Context, userID, productID string) (Result, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	return s.apply(ctx, userID, current,
		func(b Bag) Bag { return b.without(productID) },
		func(ctx context.Context, _ Bag) error { return s.repo.Remove(ctx, userID, productID) },
	)
}

// Clear empties the bag.
func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.repo.Clear(ctx, userID)
}

// MergeLine is a guest bag entry submitted at sign in.
type MergeLine struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"min=1,max=99"`
}

// Merge folds a guest bag into the member bag. Unknown products are skipped.
func (s *Service) Merge(ctx context.Context, userID string, lines []MergeLine) (Bag, error) {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	known, err := s.products.Lookup(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		if _, ok := known[l.ProductID]; !ok {
			zerolog.Ctx(ctx).Debug().Str("product_id", l.ProductID).Msg("skip unknown product on merge")
			continue
		}
		if err := s.repo.Add(ctx, userID, l.ProductID, l.Quantity); err != nil && !errors.Is(err, ErrUnknownProduct) {
			return nil, err
		}
	}
	return s.Get(ctx, userID)
}

func (s *Service) apply(ctx context.Context, userID string, current Bag, change func(Bag) Bag, write func(context.Context, Bag) error) (Result, error) {
	res, err := optimistic.Apply(ctx, current, change, write, s.reload(userID))
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("outcome", res.Outcome.String()).Msg("cart write failed")
		if errors.Is(err, ErrUnknownProduct) {
			return res, common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, err)
		}
		return res, &SyncError{Result: res, Err: err}
	}
	return res, nil
}

func (s *Service) product(ctx context.Context, productID string) (catalog.Product, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return catalog.Product{}, common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, err)
	}
	found, err := s.products.Lookup(ctx, []string{productID})
	if err != nil {
		return catalog.Product{}, err
	}
	p, ok := found[productID]
	if !ok {
		return catalog.Product{}, common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, nil)
	}
	return p, nil
}

func notInCart() error {
	return common.NewAppError("NOT_FOUND", "product is not in the cart", http.StatusNotFound, nil)
}

// SyncError reports a change that could not be persisted along with the state the client should show.
type SyncError struct {
	Result Result
	Err    error
}

func (e *SyncError) Error() string { return "cart: sync failed: " + e.Err.Error() }

func (e *SyncError) Unwrap() error { return e.Err }
