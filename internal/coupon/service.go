// Package coupon administers the coupon catalog and resolves codes against it.
package coupon

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/matita-boutique/internal/cache"
	"github.com/noah-isme/matita-boutique/internal/common"
	"github.com/noah-isme/matita-boutique/internal/obs"
	"github.com/noah-isme/matita-boutique/internal/pricing"
)

const catalogKey = "all"

// CreateInput is the admin payload. Percent is entered as a whole number and stored as a rate.
type CreateInput struct {
	Code    string `json:"code" validate:"required,max=40"`
	Percent int    `json:"percent" validate:"required,min=1,max=100"`
}

// Service resolves and administers coupons.
type Service struct {
	repo  Repository
	cache *cache.JSON
}

// NewService constructs a coupon service. The cache may be nil.
func NewService(repo Repository, c *cache.JSON) *Service {
	return &Service{repo: repo, cache: c}
}

// Catalog returns the pricing view of every coupon, cached as a whole.
func (s *Service) Catalog(ctx context.Context) ([]pricing.Coupon, error) {
	var cached []pricing.Coupon
	if ok, err := s.cache.Get(ctx, catalogKey, &cached); err == nil && ok {
		return cached, nil
	} else if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("coupon cache read")
	}
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]pricing.Coupon, 0, len(records))
	for _, r := range records {
		out = append(out, pricing.Coupon{Code: pricing.NormalizeCode(r.Code), DiscountRate: r.Discount})
	}
	if err := s.cache.Set(ctx, catalogKey, out); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("coupon cache write")
	}
	return out, nil
}

// Resolve validates code against subtotal using the current catalog.
func (s *Service) Resolve(ctx context.Context, code string, subtotal pricing.Money) (pricing.Coupon, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		obs.IncCouponValidation("error")
		return pricing.Coupon{}, err
	}
	c, err := pricing.ResolveCoupon(code, subtotal, catalog)
	switch {
	case err == nil:
		obs.IncCouponValidation("applied")
	case errors.Is(err, pricing.ErrCouponIneligible):
		obs.IncCouponValidation("ineligible")
	default:
		obs.IncCouponValidation("not_found")
	}
	return c, err
}

// List returns stored coupons for administration.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	records, err := s.repo.List(ctx)
	if records == nil && err == nil {
		records = []Record{}
	}
	return records, err
}

// Create stores a new coupon. The welcome code is reserved.
func (s *Service) Create(ctx context.Context, in CreateInput) (Record, error) {
	if err := common.Validator().Struct(in); err != nil {
		return Record{}, common.NewAppError("VALIDATION_ERROR", "invalid coupon", http.StatusUnprocessableEntity, err).
			WithDetails(common.ValidationDetails(err))
	}
	code := pricing.NormalizeCode(in.Code)
	if code == "" {
		return Record{}, common.NewAppError("VALIDATION_ERROR", "invalid coupon", http.StatusUnprocessableEntity, nil).
			WithDetails(map[string]string{"code": "required"})
	}
	if code == pricing.WelcomeCouponCode {
		return Record{}, common.NewAppError("CONFLICT", "coupon code is reserved", http.StatusConflict, nil)
	}
	rate := decimal.NewFromInt(int64(in.Percent)).Div(decimal.NewFromInt(100))
	rec, err := s.repo.Create(ctx, code, rate)
	if errors.Is(err, ErrDuplicateCode) {
		return Record{}, common.NewAppError("CONFLICT", "coupon code already exists", http.StatusConflict, err)
	}
	if err != nil {
		return Record{}, err
	}
	s.invalidate(ctx)
	return rec, nil
}

// Delete removes a coupon by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.NewAppError("NOT_FOUND", "coupon not found", http.StatusNotFound, err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return common.NewAppError("NOT_FOUND", "coupon not found", http.StatusNotFound, err)
		}
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("coupon cache invalidate")
	}
}

// AsAppError converts a pricing coupon error into the API error shape.
// Ineligible errors carry the minimum purchase so clients can explain the rejection.
func AsAppError(err error) error {
	var ineligible *pricing.IneligibleError
	switch {
	case errors.As(err, &ineligible):
		return common.NewAppError("COUPON_INELIGIBLE", ineligible.Error(), http.StatusUnprocessableEntity, err).
			WithDetails(map[string]any{"code": ineligible.Code, "minPurchase": ineligible.MinPurchase})
	case errors.Is(err, pricing.ErrCouponNotFound):
		return common.NewAppError("COUPON_NOT_FOUND", "coupon not found", http.StatusNotFound, err)
	}
	return err
}
