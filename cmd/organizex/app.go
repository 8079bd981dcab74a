package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jeffanddom/organizex/internal/checksum"
	"github.com/jeffanddom/organizex/internal/coordinator"
	"github.com/jeffanddom/organizex/internal/database"
	"github.com/jeffanddom/organizex/internal/logging"
	"github.com/jeffanddom/organizex/internal/migrate"
	"github.com/jeffanddom/organizex/internal/quest"
	"github.com/jeffanddom/organizex/internal/rewards"
	"github.com/jeffanddom/organizex/internal/scanner"
	"github.com/jeffanddom/organizex/internal/storage"
)

// app holds the services shared by every command
type app struct {
	db          *database.Database
	rewards     *rewards.Engine
	quests      *quest.Engine
	coordinator *coordinator.Coordinator
	logger      *slog.Logger
}

func newLogger() (*slog.Logger, error) {
	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// openDatabase connects and applies pending migrations
func openDatabase(logger logging.Logger) (*database.Database, error) {
	db, err := database.FromURL(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migrate.AutoMigrate(db.DB(), db.Dialect(), logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// openApp wires the engines and makes sure the reward catalogs and the
// current quests exist
func openApp(ctx context.Context) (*app, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}

	db, err := openDatabase(logger)
	if err != nil {
		return nil, err
	}

	rw := rewards.NewEngine(db, nil, logger)
	quests := quest.NewEngine(db, rw, quest.Config{
		DailyCount:  cfg.Quests.DailyCount,
		WeeklyCount: cfg.Quests.WeeklyCount,
	}, logger)
	coord := coordinator.New(db, quests, rw, coordinator.Config{
		MaxConcurrentOps: cfg.Scanner.MaxConcurrentOps,
		Scanner: scanner.Config{
			ChecksumAlgorithm: checksum.Algorithm(cfg.Scanner.ChecksumAlgorithm),
			ParallelWorkers:   cfg.Scanner.Workers,
		},
		Aliases: storage.DefaultAliases(cfg.Folders),
	}, logger)

	if err := coord.Bootstrap(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &app{db: db, rewards: rw, quests: quests, coordinator: coord, logger: logger}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
