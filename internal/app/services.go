package app

import (
	"github.com/noah-isme/matita-boutique/internal/cache"
	"github.com/noah-isme/matita-boutique/internal/cart"
	"github.com/noah-isme/matita-boutique/internal/catalog"
	"github.com/noah-isme/matita-boutique/internal/checkout"
	"github.com/noah-isme/matita-boutique/internal/coupon"
	"github.com/noah-isme/matita-boutique/internal/favorites"
	"github.com/noah-isme/matita-boutique/internal/handoff"
	"github.com/noah-isme/matita-boutique/internal/loyalty"
	"github.com/noah-isme/matita-boutique/internal/pricing"
	"github.com/noah-isme/matita-boutique/internal/reviews"
	"github.com/noah-isme/matita-boutique/internal/sales"
)

// Services holds the domain services built on top of Dependencies.
type Services struct {
	Catalog    *catalog.Service
	Cart       *cart.Service
	Favorites  *favorites.Service
	Reviews    *reviews.Service
	Coupons    *coupon.Service
	Loyalty    *loyalty.Service
	Sales      *sales.Service
	SaleWorker *sales.Worker
	Checkout   *checkout.Service
}

// Services wires every store to the shared pool and caches to the shared Redis client.
func (d *Dependencies) Services() (*Services, error) {
	cfg := d.Config
	catalogSvc, err := catalog.NewService(catalog.ServiceConfig{
		Repository: catalog.NewStore(d.DB),
		Cache:      cache.NewJSON(d.Redis, "catalog", cfg.CatalogCacheTTL),
	})
	if err != nil {
		return nil, err
	}
	loyaltySvc := loyalty.NewService(loyalty.NewStore(d.DB))
	couponSvc := coupon.NewService(coupon.NewStore(d.DB), cache.NewJSON(d.Redis, "coupons", cfg.CouponCacheTTL))
	cartSvc := cart.NewService(cart.NewStore(d.DB), catalogSvc)
	salesStore := sales.NewStore(d.DB)

	return &Services{
		Catalog:   catalogSvc,
		Cart:      cartSvc,
		Favorites: favorites.NewService(favorites.NewStore(d.DB)),
		Reviews:   reviews.NewService(reviews.NewStore(d.DB), loyaltySvc),
		Coupons:   couponSvc,
		Loyalty:   loyaltySvc,
		Sales:     sales.NewService(salesStore),
		SaleWorker: &sales.Worker{
			Repo:   salesStore,
			Logger: d.Logger.With().Str("component", "sales").Logger(),
		},
		Checkout: checkout.NewService(checkout.ServiceConfig{
			Products: catalogSvc,
			Coupons:  couponSvc,
			Members:  loyaltySvc,
			Sales:    sales.Enqueuer{Client: d.TaskClient, Queue: cfg.SalesQueue},
			Carts:    cartSvc,
			Handoff:  handoff.Builder{BaseURL: cfg.HandoffBaseURL, Number: cfg.HandoffWhatsAppNumber},
			Template: pricing.Template{StoreName: cfg.StoreName, PickupAddress: cfg.PickupAddress},
		}),
	}, nil
}
