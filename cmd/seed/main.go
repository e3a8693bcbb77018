// Seed tool: populates the database with users, follows, posts, likes and
// comments for local development. Connection settings come from the same
// environment as the server.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/anonto42/odinbook/backend/internal/repositories"
	"github.com/anonto42/odinbook/backend/internal/seed"
	"github.com/anonto42/odinbook/backend/pkg/config"
	"github.com/anonto42/odinbook/backend/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	var (
		numUsers int
		password string
		reset    bool
		seedVal  int64
	)
	flag.IntVar(&numUsers, "users", 10, "number of users to create")
	flag.StringVar(&password, "password", "password123", "password shared by every seeded user")
	flag.BoolVar(&reset, "reset", false, "delete existing data first")
	flag.Int64Var(&seedVal, "seed", 0, "random seed (0 picks one from the clock)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.IsProduction() {
		zl.Fatal("refusing to seed a production database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := config.OpenPostgres(cfg.PostgresConnStr)
	if err != nil {
		zl.Fatal("connect to PostgreSQL", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := repositories.Migrate(db); err != nil {
		zl.Fatal("auto migrate models", zap.Error(err))
	}

	seeder := seed.New(db, zl)
	if reset {
		if err := seeder.Reset(ctx); err != nil {
			zl.Fatal("reset", zap.Error(err))
		}
	}

	if seedVal == 0 {
		seedVal = time.Now().UnixNano()
	}
	start := time.Now()
	sum, err := seeder.Run(ctx, seed.Options{
		Users:      numUsers,
		Password:   password,
		BcryptCost: cfg.BcryptCost,
		Rand:       rand.New(rand.NewSource(seedVal)),
	})
	if err != nil {
		zl.Fatal("seed failed", zap.Error(err))
	}
	zl.Info("seeding finished",
		zap.Int64("seed", seedVal),
		zap.Int("users", sum.Users),
		zap.Int("follows", sum.Follows),
		zap.Int("posts", sum.Posts),
		zap.Int("likes", sum.Likes),
		zap.Int("comments", sum.Comments),
		zap.Duration("took", time.Since(start).Truncate(time.Millisecond)),
	)
}
