package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/noah-isme/matita-boutique/internal/app"
	"github.com/noah-isme/matita-boutique/internal/auth"
	"github.com/noah-isme/matita-boutique/internal/cart"
	"github.com/noah-isme/matita-boutique/internal/catalog"
	"github.com/noah-isme/matita-boutique/internal/checkout"
	"github.com/noah-isme/matita-boutique/internal/common"
	"github.com/noah-isme/matita-boutique/internal/config"
	"github.com/noah-isme/matita-boutique/internal/coupon"
	"github.com/noah-isme/matita-boutique/internal/favorites"
	"github.com/noah-isme/matita-boutique/internal/health"
	"github.com/noah-isme/matita-boutique/internal/loyalty"
	"github.com/noah-isme/matita-boutique/internal/obs"
	"github.com/noah-isme/matita-boutique/internal/ratelimit"
	"github.com/noah-isme/matita-boutique/internal/reviews"
	"github.com/noah-isme/matita-boutique/internal/sales"
	"github.com/noah-isme/matita-boutique/internal/security"
)

func main() {
	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	deps, err := app.New(startCtx, cfg, "api")
	cancel()
	if err != nil {
		panic(err)
	}
	logger := deps.Logger
	defer deps.Close(context.Background())

	svcs, err := deps.Services()
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise services")
	}

	verifier, err := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise token verifier")
	}
	authMiddleware := auth.Middleware{Verifier: verifier, AdminRole: cfg.AdminRole}

	checkoutLimiter, err := ratelimit.NewRedisLimiter(deps.Redis, cfg.CheckoutRateLimit, "ratelimit")
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise checkout rate limiter")
	}
	rateLimit := ratelimit.Handler{
		Limiter: checkoutLimiter,
		Scope:   "checkout",
		OnError: func(err error) { logger.Warn().Err(err).Msg("rate limiter unavailable") },
	}
	idem := common.Idem{R: deps.Redis, TTL: cfg.IdempotencyTTL}

	var httpMetrics *obs.HTTPMetrics
	if cfg.Obs.EnablePrometheus {
		httpMetrics = obs.NewHTTPMetrics(cfg.Obs.MetricsNamespace, nil, deps.MetricsRegistry)
	}

	catalogHandler := catalog.NewHandler(svcs.Catalog)
	cartHandler := cart.NewHandler(svcs.Cart)
	favoritesHandler := favorites.NewHandler(svcs.Favorites)
	reviewsHandler := reviews.NewHandler(svcs.Reviews, cfg.ReviewsDefaultPage)
	couponHandler := coupon.NewHandler(svcs.Coupons)
	loyaltyHandler := loyalty.NewHandler(svcs.Loyalty)
	salesHandler := sales.NewHandler(svcs.Sales)
	checkoutHandler := &checkout.Handler{Svc: svcs.Checkout}
	healthHandler := health.Handler{Checker: health.Probe{DB: deps.DB, Redis: deps.Redis}}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Obs.EnableTracing {
		r.Use(obs.TracingMiddleware)
	}
	r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", common.IdempotencyHeader},
		ExposedHeaders:   []string{"X-Total-Count", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(security.Headers{HSTS: cfg.IsProduction()}.Middleware)
	r.Use(security.BodyLimit{Max: security.DefaultMaxBody}.Middleware)

	if cfg.Obs.EnablePrometheus {
		r.Handle("/metrics", obs.MetricsHandler(deps.MetricsRegistry))
	}
	r.Route("/health", healthHandler.Routes)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(authMiddleware.Authenticate)

		catalogHandler.Routes(v)
		reviewsHandler.Routes(v, authMiddleware.RequireAuth)
		v.Post("/coupons/validate", couponHandler.Validate)
		v.Route("/checkout", func(c chi.Router) {
			checkoutHandler.Routes(c, idem.Middleware, rateLimit.Middleware)
		})

		v.Group(func(member chi.Router) {
			member.Use(authMiddleware.RequireAuth)
			member.Get("/club/me", loyaltyHandler.Me)
			member.With(idem.Middleware).Route("/cart", cartHandler.Routes)
			member.Route("/favorites", favoritesHandler.Routes)
		})

		v.Route("/admin", func(admin chi.Router) {
			admin.Use(authMiddleware.RequireAuth)
			admin.Use(authMiddleware.RequireAdmin)
			catalogHandler.AdminRoutes(admin)
			couponHandler.AdminRoutes(admin)
			loyaltyHandler.AdminRoutes(admin)
			salesHandler.AdminRoutes(admin)
			reviewsHandler.AdminRoutes(admin)
		})
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go shutdownOnSignal(ctx, srv, logger)

	health.SetReady(true)
	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
	logger.Info().Msg("server stopped")
}

func shutdownOnSignal(ctx context.Context, srv *http.Server, logger zerolog.Logger) {
	<-ctx.Done()
	health.SetReady(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
