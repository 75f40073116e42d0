package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rakhulsr/go-storefront/app/configs"
	"github.com/Rakhulsr/go-storefront/app/db/seeders"
	"github.com/Rakhulsr/go-storefront/app/models/migrations"
	"github.com/Rakhulsr/go-storefront/app/routes"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/Rakhulsr/go-storefront/app/utils/sessions"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	newKeysFile     = ".env.new_keys"
	shutdownTimeout = 10 * time.Second
)

// RunCli runs the command tree. Without a subcommand the API server starts.
func RunCli() {
	cmd := NewCommand()
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func NewCommand() *cli.Command {
	return &cli.Command{
		Name:   "storefront",
		Usage:  "Storefront REST API",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP API server",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "Run database migration",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withDatabase(func(db *gorm.DB, cfg *configs.Config, logger *zap.Logger) error {
						if err := migrations.AutoMigrate(db); err != nil {
							return err
						}
						logger.Info("Migration complete")
						return nil
					})
				},
			},
			{
				Name:  "seed",
				Usage: "Seed the protected product and demo catalog data",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "products", Value: 20, Usage: "number of demo products to create"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					products := int(c.Int("products"))
					return withDatabase(func(db *gorm.DB, cfg *configs.Config, logger *zap.Logger) error {
						if err := seeders.DBSeed(db, products, logger); err != nil {
							return err
						}
						logger.Info("Seeding complete", zap.Int("products", products))
						return nil
					})
				},
			},
			{
				Name:  "generate-keys",
				Usage: "Generate new session authentication and encryption keys for .env",
				Action: func(ctx context.Context, c *cli.Command) error {
					if err := configs.GenerateSessionKeys(os.Stdout, newKeysFile); err != nil {
						return err
					}
					log.Printf("Key generation complete. The keys were also written to %s; copy them to your .env file.", newKeysFile)
					return nil
				},
			},
		},
	}
}

func setup() (*configs.Config, *zap.Logger, error) {
	cfg := configs.LoadEnv()
	logger, err := configs.NewLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, logger, nil
}

func withDatabase(fn func(db *gorm.DB, cfg *configs.Config, logger *zap.Logger) error) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := configs.OpenConnection(cfg.DB, logger)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	return fn(db, cfg, logger)
}

func serve(ctx context.Context, c *cli.Command) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable not set")
	}

	keys, err := configs.LoadSessionKeys(cfg.Auth)
	if err != nil {
		return err
	}
	if cfg.Auth.AppAuthKey == "" {
		logger.Warn("APP_AUTH_KEY/APP_ENC_KEY not set; using ephemeral session keys")
	}

	db, err := configs.OpenConnection(cfg.DB, logger)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	notifier := services.NewAsyncNotifier(services.NewOrderNotifier(cfg.Email, logger))
	deps := routes.Dependencies{
		Config:   cfg,
		DB:       db,
		Logger:   logger,
		Sessions: sessions.NewCookieSessionStore(cfg.Auth.CookieSecure, keys.AuthKey, keys.EncKey),
		CSRFKey:  csrfKey(keys.AuthKey),
		Notifier: notifier,
	}
	if cfg.Midtrans.Enabled() {
		deps.Gateway = services.NewMidtransGateway(cfg.Midtrans)
		logger.Info("Midtrans payments enabled", zap.Bool("production", cfg.Midtrans.Production))
	}

	router, err := routes.NewRouter(deps)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := notifier.Wait(shutdownCtx); err != nil {
		logger.Warn("Pending order notifications were not delivered", zap.Error(err))
	}
	logger.Info("Server stopped")
	return nil
}

// csrfKey takes the first 32 bytes of the session auth key.
func csrfKey(authKey []byte) []byte {
	if len(authKey) > 32 {
		return authKey[:32]
	}
	return authKey
}
