package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/matita-boutique/internal/cache"
	"github.com/noah-isme/matita-boutique/internal/common"
)

// Service orchestrates catalog queries and caching.
type Service struct {
	repo         Repository
	cache        *cache.JSON
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Repository   Repository
	Cache        *cache.JSON
	DefaultLimit int
	MaxLimit     int
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Repository == nil {
		return nil, errors.New("catalog: repository is required")
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 100
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 24
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Service{repo: cfg.Repository, cache: cfg.Cache, defaultLimit: defaultLimit, maxLimit: maxLimit}, nil
}

// ParseListParams normalises raw query values into typed filters.
func (s *Service) ParseListParams(values url.Values) (ListParams, error) {
	params := ListParams{Page: 1, Limit: s.defaultLimit}
	if raw := strings.TrimSpace(values.Get("category")); raw != "" {
		cat, ok := ParseCategory(raw)
		if !ok {
			return params, badRequest("category", "unknown category")
		}
		params.Category = string(cat)
	}
	if raw := strings.TrimSpace(values.Get("new")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return params, badRequest("new", "new must be true or false")
		}
		params.NewOnly = b
	}
	params.Query = strings.TrimSpace(values.Get("q"))
	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return params, badRequest("page", "page must be a positive integer")
		}
		params.Page = page
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return params, badRequest("limit", "limit must be a positive integer")
		}
		params.Limit = min(limit, s.maxLimit)
	}
	return params, nil
}

// List returns a filtered page of products, served from cache when possible.
func (s *Service) List(ctx context.Context, params ListParams) (ListResult, error) {
	key := listCacheKey(params)
	var cached ListResult
	if ok, err := s.cache.Get(ctx, key, &cached); err == nil && ok {
		return cached, nil
	} else if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("catalog cache read")
	}
	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return ListResult{}, err
	}
	if items == nil {
		items = []Product{}
	}
	result := ListResult{Items: items, Total: total, Page: params.Page, Limit: params.Limit}
	if err := s.cache.Set(ctx, key, result); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("catalog cache write")
	}
	return result, nil
}

// Get returns a single product.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	if err := validateID(id); err != nil {
		return Product{}, err
	}
	key := "product:" + id
	var cached Product
	if ok, err := s.cache.Get(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, mapError(err)
	}
	_ = s.cache.Set(ctx, key, p)
	return p, nil
}

// Lookup resolves ids to products, silently skipping ids that no longer exist.
func (s *Service) Lookup(ctx context.Context, ids []string) (map[string]Product, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	products, err := s.repo.GetMany(ctx, valid)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// Create adds a product and invalidates cached listings.
func (s *Service) Create(ctx context.Context, in ProductInput) (Product, error) {
	if err := normalizeInput(&in); err != nil {
		return Product{}, err
	}
	p, err := s.repo.Create(ctx, in)
	if err != nil {
		return Product{}, err
	}
	s.invalidate(ctx)
	return p, nil
}

// Update replaces a product and invalidates cached listings.
func (s *Service) Update(ctx context.Context, id string, in ProductInput) (Product, error) {
	if err := validateID(id); err != nil {
		return Product{}, err
	}
	if err := normalizeInput(&in); err != nil {
		return Product{}, err
	}
	p, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return Product{}, mapError(err)
	}
	s.invalidate(ctx)
	return p, nil
}

// Delete removes a product and invalidates cached listings.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapError(err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("catalog cache invalidate")
	}
}

func normalizeInput(in *ProductInput) error {
	if err := common.Validator().Struct(in); err != nil {
		return common.NewAppError("VALIDATION_ERROR", "invalid product", http.StatusUnprocessableEntity, err).
			WithDetails(common.ValidationDetails(err))
	}
	cat, ok := ParseCategory(in.Category)
	if !ok {
		return badRequest("category", "unknown category")
	}
	in.Category = string(cat)
	in.Name = strings.TrimSpace(in.Name)
	if in.OldPrice != nil && *in.OldPrice <= in.Price {
		in.OldPrice = nil
	}
	return nil
}

func listCacheKey(p ListParams) string {
	return fmt.Sprintf("list:%s|%t|%s|%d|%d", p.Category, p.NewOnly, strings.ToLower(p.Query), p.Page, p.Limit)
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, err)
	}
	return nil
}

func mapError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, err)
	}
	return err
}

func badRequest(field, message string) error {
	return common.NewAppError("BAD_REQUEST", message, http.StatusBadRequest, nil).
		WithDetails(map[string]string{field: message})
}
