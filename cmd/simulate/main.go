// Package main provides the combat simulator binary: it plays automatic
// encounters against the shipped content and optionally records the results.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeon/internal/config"
	"github.com/cory-johannsen/dungeon/internal/game/combat"
	"github.com/cory-johannsen/dungeon/internal/game/dice"
	"github.com/cory-johannsen/dungeon/internal/observability"
	"github.com/cory-johannsen/dungeon/internal/simulation"
	"github.com/cory-johannsen/dungeon/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	runs := flag.Int("runs", 0, "number of encounters to play (0 = simulation.runs)")
	seed := flag.Uint64("seed", 0, "dice seed (0 = simulation.seed)")
	quiet := flag.Bool("quiet", false, "print only the summary, not each combat log")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *runs > 0 {
		cfg.Simulation.Runs = *runs
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	contentStart := time.Now()
	content, err := simulation.LoadContent(cfg.Content.Dir)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("items", len(content.Items)),
		zap.Int("affixes", len(content.Affixes)),
		zap.Int("enemies", len(content.Enemies.IDs())),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	var src dice.Source
	if cfg.Simulation.Seed != 0 {
		src = dice.NewSeededSource(cfg.Simulation.Seed)
	} else {
		src = dice.NewCryptoSource()
	}

	runner, err := simulation.NewRunner(content, cfg, src, logger)
	if err != nil {
		logger.Fatal("creating runner", zap.Error(err))
	}
	defer runner.Close()

	var repo *postgres.CombatResultRepository
	if cfg.Database.Enabled {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		repo = postgres.NewCombatResultRepository(pool.DB())
		logger.Info("database connected", zap.String("host", cfg.Database.Host))
	}

	tally := make(map[combat.Outcome]int)
	for i := 0; i < cfg.Simulation.Runs; i++ {
		m, res, err := runner.Run(ctx)
		if err != nil {
			logger.Fatal("simulation failed", zap.Int("run", i+1), zap.Error(err))
		}
		tally[res.Outcome]++
		if !*quiet {
			printLog(os.Stdout, m.Log())
			if err := printResult(os.Stdout, res); err != nil {
				logger.Error("printing result", zap.Error(err))
			}
		}
		if repo != nil {
			_, err := repo.Save(ctx, postgres.CombatRecord{
				Result:      res,
				DungeonTier: cfg.Simulation.DungeonTier,
				Seed:        cfg.Simulation.Seed,
			})
			if err != nil {
				logger.Error("saving combat result", zap.String("combat", res.CombatID), zap.Error(err))
			}
		}
	}

	fmt.Fprintf(os.Stdout, "%d run(s): %d victory, %d defeat, %d escape [%s]\n",
		cfg.Simulation.Runs, tally[combat.OutcomeVictory], tally[combat.OutcomeDefeat],
		tally[combat.OutcomeEscape], time.Since(start))
}

func printLog(w io.Writer, entries []combat.LogEntry) {
	for _, e := range entries {
		fmt.Fprintf(w, "[turn %2d] %-8s %s\n", e.Turn, e.Type, e.Message)
	}
}

func printResult(w io.Writer, res combat.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
