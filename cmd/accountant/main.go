// Command accountant runs the personal finance API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/theaccountant/accountant"
	"github.com/theaccountant/accountant/internal/config"
	"github.com/theaccountant/accountant/internal/handler"
	"github.com/theaccountant/accountant/internal/server"
	"github.com/theaccountant/accountant/internal/store"
	"github.com/theaccountant/accountant/password"
	"github.com/theaccountant/accountant/session"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "accountant",
		Short: "Personal finance API server",
	}
	root.AddCommand(serveCmd())
	return root
}

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	return cmd
}

func serve(cfg config.Config) error {
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := store.Open(cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := store.CreateSchema(ctx, db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	users := store.NewUsers(db)
	categories := store.NewCategories(db)
	incomes := store.NewIncomes(db)
	loans := store.NewLoans(db)

	hasher, err := password.NewArgon2(password.DefaultConfig())
	if err != nil {
		return err
	}

	metrics := accountant.NewMetrics(true)
	auth, err := accountant.New(accountant.Config{SessionTTL: cfg.SessionTTL.Std()}, accountant.Deps{
		Users:     users,
		Passwords: hasher,
		Sessions:  session.NewStore(redisClient, cfg.RedisPrefix),
		Logger:    logger,
		Metrics:   metrics,
	})
	if err != nil {
		return err
	}

	converter := handler.FixedRateConverter{Rates: defaultRates()}
	router := server.NewRouter(auth, metrics, server.Handlers{
		User:     handler.NewUser(users, categories, incomes, loans, auth, hasher, logger),
		Category: handler.NewCategory(categories),
		Income:   handler.NewIncome(incomes, users, converter, logger),
		Loan:     handler.NewLoan(loans),
	})

	return server.New(cfg.Listen, router, logger).Run(ctx)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// defaultRates covers common currencies against a USD base. Replace the
// converter wiring to pull live rates.
func defaultRates() map[string]float64 {
	return map[string]float64{
		"USD": 1.0,
		"EUR": 1.08,
		"GBP": 1.27,
		"HUF": 0.0028,
		"CHF": 1.12,
		"PLN": 0.25,
	}
}
