package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joao-fontenele/minimarket-pos/internal/catalog"
	"github.com/joao-fontenele/minimarket-pos/internal/config"
	"github.com/joao-fontenele/minimarket-pos/internal/telemetry"
	"github.com/joao-fontenele/minimarket-pos/internal/users"
	"github.com/joao-fontenele/minimarket-pos/internal/views"
)

const seedPassword = "123456"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	reset := flag.Bool("reset", false, "delete orders, products and users before seeding products")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: seed [-reset] products | seed users <count>")
		flag.PrintDefaults()
	}
	flag.Parse()
	args := flag.Args()

	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.RequirePostgres(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := telemetry.OpenDB(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	switch args[0] {
	case "products":
		repo := catalog.NewRepository(db)
		if *reset {
			if err := repo.Reset(ctx); err != nil {
				logger.Error("failed to reset database", "error", err)
				os.Exit(1)
			}
			logger.Info("database cleared")
		}

		res, err := catalog.SeedDemo(ctx, repo)
		if err != nil {
			logger.Error("failed to seed products", "error", err)
			os.Exit(1)
		}
		logger.Info("products seeded", "products", res.Products, "categories", res.Categories)

	case "users":
		if len(args) < 2 {
			logger.Error("usage: seed users <count>")
			os.Exit(1)
		}
		count, err := strconv.Atoi(args[1])
		if err != nil || count < 1 {
			logger.Error("count must be a positive integer", "count", args[1])
			os.Exit(1)
		}

		res, err := users.Seed(ctx, users.NewRepository(db), count, seedPassword)
		if err != nil {
			logger.Error("failed to seed users", "error", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		for _, u := range res.Users {
			_ = enc.Encode(views.NewUser(u))
		}
		logger.Info("users seeded", "created", res.Created, "existing", res.Existing)

	default:
		logger.Error("unknown command", "command", args[0])
		os.Exit(1)
	}
}
