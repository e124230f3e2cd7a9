// Package main applies the combat result schema to the configured database.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeon/internal/config"
	"github.com/cory-johannsen/dungeon/internal/observability"
	"github.com/cory-johannsen/dungeon/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	dir := flag.String("dir", "migrations", "path to the migrations directory")
	direction := flag.String("direction", "up", "migration direction: up, down or version")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	if !cfg.Database.Enabled {
		logger.Warn("database.enabled is false; migrating anyway", zap.String("host", cfg.Database.Host))
	}

	mg, err := postgres.NewMigrator(cfg.Database.DSN(), *dir)
	if err != nil {
		logger.Fatal("opening migrations", zap.Error(err))
	}
	defer mg.Close()

	var changed bool
	switch *direction {
	case "up":
		changed, err = mg.Up(*steps)
	case "down":
		changed, err = mg.Down(*steps)
	case "version":
	default:
		logger.Fatal("invalid direction", zap.String("direction", *direction))
	}
	if err != nil {
		logger.Fatal("migration failed", zap.String("direction", *direction), zap.Error(err))
	}

	version, dirty, err := mg.Version()
	if err != nil {
		logger.Fatal("reading schema version", zap.Error(err))
	}
	elapsed := time.Since(start)
	if changed {
		fmt.Fprintf(os.Stdout, "migrated %s to version=%d dirty=%v [%s]\n", *direction, version, dirty, elapsed)
	} else {
		fmt.Fprintf(os.Stdout, "no changes (version=%d dirty=%v) [%s]\n", version, dirty, elapsed)
	}
}
