package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/rotadesk/rota/backend/internal/config"
	"github.com/rotadesk/rota/backend/internal/seed"
	"github.com/rotadesk/rota/backend/internal/storage"
	"github.com/rotadesk/rota/backend/internal/utils"
)

func main() {
	var op string
	var n int
	var csvPath string
	var week string
	var companyName string

	flag.StringVar(&op, "op", "", "operation to run (company, roster, users, timeoff, shifts, demo)")
	flag.IntVar(&n, "n", 5, "number of records to insert")
	flag.StringVar(&csvPath, "csv", "", "roster CSV with the header name,email,role,positions")
	flag.StringVar(&week, "week", "", "any day of the target week as YYYY-MM-DD, defaults to the current week")
	flag.StringVar(&companyName, "name", "Demo Hospitality", "company name")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.Store.Driver == "memory" {
		logger.Error("the memory store is seeded by the api at startup")
		os.Exit(1)
	}

	ctx := context.Background()
	backend, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Error("failed to open the store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	ref := time.Now().In(cfg.Location())
	if week != "" {
		ref, err = utils.ParseDay(week, cfg.Location())
		if err != nil {
			logger.Error("week must be a date like 2025-03-10", slog.String("week", week))
			return
		}
	}

	companyID := cfg.Seed.CompanyID

	password, generated := seed.Password(cfg.Seed.User.Password)
	if generated {
		logger.Info("SEED_USER_PASSWORD is not set, seeded users get a generated password", slog.String("password", password))
	}

	switch op {
	case "":
		logger.Error("no operation given")
	case "company":
		if err := seed.Company(ctx, backend, companyID, companyName, seed.DefaultLocations); err != nil {
			logger.Error("failed to seed the company", slog.String("error", err.Error()))
		}
	case "roster":
		if csvPath == "" {
			logger.Error("-csv is required for the roster operation")
			return
		}
		file, err := os.Open(csvPath)
		if err != nil {
			logger.Error("failed to open the roster", slog.String("error", err.Error()))
			return
		}
		defer file.Close()

		if _, err := seed.Roster(ctx, backend, companyID, file, password); err != nil {
			logger.Error("failed to import the roster", slog.String("error", err.Error()))
		}
	case "users":
		if n <= 0 {
			logger.Error("the number of users must be positive")
			return
		}
		seed.Users(ctx, backend, companyID, n, password, cfg.Seed.EmailDomain)
	case "timeoff":
		if _, err := seed.TimeOff(ctx, backend, companyID, ref); err != nil {
			logger.Error("failed to seed time off", slog.String("error", err.Error()))
		}
	case "shifts":
		if n <= 0 {
			logger.Error("the number of shifts must be positive")
			return
		}
		if committed, err := seed.Shifts(ctx, backend, companyID, ref, n); err != nil {
			logger.Error("failed to seed shifts", slog.Int("committed", committed), slog.String("error", err.Error()))
		}
	case "demo":
		err := seed.Demo(ctx, backend, seed.DemoOptions{
			CompanyID:   companyID,
			Password:    password,
			EmailDomain: cfg.Seed.EmailDomain,
			Users:       n,
			Shifts:      n * 3,
			Now:         ref,
		})
		if err != nil {
			logger.Error("failed to seed the demo company", slog.String("error", err.Error()))
		}
	default:
		logger.Error("unknown operation", slog.String("op", op))
	}
}
