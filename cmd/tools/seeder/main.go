package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/matita-boutique/internal/catalog"
	"github.com/noah-isme/matita-boutique/internal/common"
	"github.com/noah-isme/matita-boutique/internal/config"
	"github.com/noah-isme/matita-boutique/internal/coupon"
	"github.com/noah-isme/matita-boutique/internal/db"
	"github.com/noah-isme/matita-boutique/internal/obs"
)

func ptr(v int64) *int64 { return &v }

var products = []catalog.ProductInput{
	{Name: "Agenda Matita 2026", Description: "Agenda semanal tapa dura, papel 90 g.", CuratorNote: "La favorita del local.", Price: 18500, OldPrice: ptr(21000), Category: "Escolar", IsNew: true, Stock: 25},
	{Name: "Set de Lápices Acuarelables x24", Description: "Minas suaves, incluye pincel.", Price: 12900, Category: "Técnica", Stock: 15},
	{Name: "Cuaderno A5 Punteado", Description: "Tapa de cartón reciclado, 96 hojas.", Price: 6800, Category: "Oficina", Stock: 40},
	{Name: "Kit de Bordado Inicial", Description: "Bastidor, hilos y agujas.", Price: 9400, Category: "Mercería", IsNew: true, Stock: 10},
	{Name: "Rompecabezas de Madera 100 piezas", Description: "Ilustraciones de aves serranas.", Price: 15200, Category: "Juguetería", Stock: 8},
	{Name: "Caja Regalo Boutique", Description: "Selección de papelería con moño.", CuratorNote: "Ideal para cumpleaños.", Price: 24000, Category: "Regalería", Stock: 6},
}

var coupons = []coupon.CreateInput{
	{Code: "MATITA10", Percent: 10},
	{Code: "CLUB20", Percent: 20},
}

func main() {
	force := flag.Bool("force", false, "insert products even when the catalog is not empty")
	flag.Parse()

	cfg := config.MustLoad()
	logger := obs.NewLogger("matita-seeder", "console", cfg.Obs.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx = logger.WithContext(ctx)

	pool, err := db.Connect(ctx, cfg.DatabaseURL, "matita-seeder")
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	catalogSvc, err := catalog.NewService(catalog.ServiceConfig{Repository: catalog.NewStore(pool)})
	if err != nil {
		logger.Fatal().Err(err).Msg("catalog service")
	}
	seedCatalog(ctx, catalogSvc, *force, logger)
	seedCoupons(ctx, coupon.NewService(coupon.NewStore(pool), nil), logger)

	logger.Info().Msg("seeding completed")
}

func seedCatalog(ctx context.Context, svc *catalog.Service, force bool, logger zerolog.Logger) {
	existing, err := svc.List(ctx, catalog.ListParams{Page: 1, Limit: 1})
	if err != nil {
		logger.Fatal().Err(err).Msg("list products")
	}
	if existing.Total > 0 && !force {
		logger.Info().Int64("products", existing.Total).Msg("catalog already seeded")
		return
	}
	for _, in := range products {
		p, err := svc.Create(ctx, in)
		if err != nil {
			logger.Fatal().Err(err).Str("product", in.Name).Msg("create product")
		}
		logger.Info().Str("id", p.ID).Str("product", p.Name).Msg("product created")
	}
}

func seedCoupons(ctx context.Context, svc *coupon.Service, logger zerolog.Logger) {
	for _, in := range coupons {
		_, err := svc.Create(ctx, in)
		var appErr *common.AppError
		switch {
		case errors.As(err, &appErr) && appErr.HTTPStatus == http.StatusConflict:
			logger.Info().Str("coupon", in.Code).Msg("coupon exists")
		case err != nil:
			logger.Fatal().Err(err).Str("coupon", in.Code).Msg("create coupon")
		default:
			logger.Info().Str("coupon", in.Code).Msg("coupon created")
		}
	}
}
