package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/oksasatya/tradesync/config"
	"github.com/oksasatya/tradesync/internal/application"
	"github.com/oksasatya/tradesync/internal/domain/entity"
	pginfra "github.com/oksasatya/tradesync/internal/infrastructure/postgres"
	"github.com/oksasatya/tradesync/pkg/helpers"
)

const (
	demoName     = "Demo Trader"
	demoEmail    = "demo@tradesync.local"
	demoPassword = "password123"
)

var demoNotes = []application.CreateNoteInput{
	{Ticker: "btc", EntryPrice: decimal.RequireFromString("64000"), PositionType: entity.Long, Body: "Breakout above weekly range, stop under 61k."},
	{Ticker: "eth", EntryPrice: decimal.RequireFromString("3150.25"), PositionType: entity.Short, Body: "Rejected at resistance, funding overheated."},
	{Ticker: "aapl", EntryPrice: decimal.RequireFromString("189.40"), PositionType: entity.Long, Body: "Earnings gap fill, scaling in."},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	users := pginfra.NewUserRepository(pool)
	auth := application.NewAuthService(users, helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL), nil, cfg, logger)

	res, err := auth.Register(ctx, demoName, demoEmail, demoPassword)
	if errors.Is(err, application.ErrUserExists) {
		u, gerr := users.GetByEmail(ctx, demoEmail)
		if gerr != nil {
			log.Fatalf("failed to load demo user: %v", gerr)
		}
		fmt.Printf("demo user already seeded: id=%s email=%s\n", u.ID, u.Email)
		return
	}
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", res.User.ID, demoEmail, demoPassword)

	notes := application.NewNoteService(pginfra.NewNoteRepository(pool), nil, nil, logger)
	for _, in := range demoNotes {
		n, err := notes.Create(ctx, res.User.ID, in)
		if err != nil {
			log.Fatalf("failed to seed note %s: %v", in.Ticker, err)
		}
		fmt.Printf("seeded note: id=%s ticker=%s\n", n.ID, n.Ticker)
	}
	fmt.Printf("token: %s\n", res.Token)
}
