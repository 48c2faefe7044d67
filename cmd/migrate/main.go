package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	migrate "github.com/golang-migrate/migrate/v4"

	"github.com/noah-isme/matita-boutique/internal/config"
	"github.com/noah-isme/matita-boutique/internal/db"
	"github.com/noah-isme/matita-boutique/internal/obs"
)

func main() {
	steps := flag.Int("steps", 0, "number of migrations to roll back with down (0 means all)")
	flag.Parse()
	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "up"
	}

	cfg := config.MustLoad()
	logger := obs.NewLogger("matita-migrate", cfg.Obs.LogFormat, cfg.Obs.LogLevel)

	m, err := db.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise migrator")
	}
	defer func() { _, _ = m.Close() }()

	switch cmd {
	case "up":
		err = db.RunMigrations(m)
	case "down":
		if *steps > 0 {
			err = m.Steps(-*steps)
		} else {
			err = m.Down()
		}
		if errors.Is(err, migrate.ErrNoChange) {
			err = nil
		}
	case "version":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			fmt.Println("no migrations applied")
			return
		}
		err = verr
		if err == nil {
			fmt.Printf("version %d (dirty=%t)\n", version, dirty)
		}
	default:
		fmt.Fprintf(os.Stderr, "usage: migrate [-steps N] up|down|version\n")
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal().Err(err).Str("command", cmd).Msg("migrate")
	}
	logger.Info().Str("command", cmd).Msg("migrate complete")
}
