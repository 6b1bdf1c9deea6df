// Command migrate applies the embedded database migrations.
//
// Usage:
//
//	migrate [up|down|status|reset]
//
// The default command is up. Requires DATABASE_DSN (or a config file) to be set.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/heartmarshall/expense-ledger/internal/adapter/postgres"
	"github.com/heartmarshall/expense-ledger/internal/app"
	"github.com/heartmarshall/expense-ledger/internal/config"
	"github.com/heartmarshall/expense-ledger/migrations"
)

func main() {
	flag.Parse()
	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		logger.Error("set dialect", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := goose.RunContext(ctx, command, db, "."); err != nil {
		logger.Error("migrate", slog.String("command", command), slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("migrations done", slog.String("command", command))
}
