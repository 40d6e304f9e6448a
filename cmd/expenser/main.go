// Command expenser serves the expense report API and manages its schema.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/grantlemons/expenser/internal/config"
	"github.com/grantlemons/expenser/internal/crypto"
	"github.com/grantlemons/expenser/internal/httpapi"
	"github.com/grantlemons/expenser/internal/limiter"
	"github.com/grantlemons/expenser/internal/logging"
	"github.com/grantlemons/expenser/internal/migrate"
	"github.com/grantlemons/expenser/internal/repository/postgres"
	"github.com/grantlemons/expenser/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const shutdownGrace = 10 * time.Second

func main() {
	var cfgPath string

	root := &cobra.Command{
		Use:           "expenser",
		Short:         "Expense report service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", os.Getenv("EXPENSER_CONFIG"), "YAML config file (env EXPENSER_CONFIG)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfgPath)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(cfgPath)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			v, err := migrate.Up(cmd.Context(), cfg.Database.URL, migrate.Options{})
			if err != nil {
				return fmt.Errorf("migrate up: %w", err)
			}
			log.Info("migrations applied", zap.Int64("version", v))
			return nil
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "expenser:", err)
		stop()
		os.Exit(1)
	}
}

// setup loads .env (if any), the config and the logger.
func setup(cfgPath string) (*config.Config, *zap.Logger, error) {
	_ = godotenv.Load()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Dev)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func serve(ctx context.Context, cfgPath string) error {
	cfg, log, err := setup(cfgPath)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if err := cfg.ValidateServe(); err != nil {
		return err
	}
	log.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Server.Addr),
	)

	if cfg.Database.Migrate {
		v, err := migrate.Up(ctx, cfg.Database.URL, migrate.Options{})
		if err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		log.Info("schema migrated", zap.Int64("version", v))
	}

	db, err := postgres.New(ctx, cfg.Database.URL, postgres.Options{MaxConns: cfg.Database.MaxConns})
	if err != nil {
		return err
	}
	defer db.Close()

	// Repositories
	users := postgres.NewUserRepo(db)
	access := postgres.NewAccessRepo(db)
	repos := service.Repos{
		Reports:  postgres.NewReportRepo(db),
		Items:    postgres.NewLineItemRepo(db),
		Proofs:   postgres.NewProofRepo(db),
		Access:   access,
		Resolver: access,
	}

	lim := limiter.NewPG(db, limiter.Options{
		MaxFails: cfg.Login.MaxFails,
		Window:   cfg.Login.Window,
		BlockFor: cfg.Login.BlockFor,
	})

	// Services
	auth := service.NewAuthService(users, crypto.NewArgon2id(crypto.DefaultParams), []byte(cfg.JWT.Key), cfg.JWT.AccessTTL, lim)
	api := httpapi.New(httpapi.Deps{
		Auth:    auth,
		Users:   service.NewUserService(users),
		Reports: service.NewReportService(repos),
		Ready:   db.Ready,
	}, httpapi.Options{
		RequestTimeout:     cfg.Server.RequestTimeout,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Info:               httpapi.Info{Name: "expenser", Version: version, Description: "Expense reports with shared access"},
	}, log)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			log.Warn("graceful shutdown", zap.Error(err))
			_ = srv.Close()
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	}

	log.Info("shutdown complete")
	return nil
}
