package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/authn"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/config"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/db"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/logging"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server/endpoints"
)

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8000"
}

func defaultPortInt() int {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return 8000
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the pwstore application server",
	Long: `Run the pwstore application server.

To run the server requires the environment variables PWSTORE_TOKEN_SECRET and
DATABASE_URL.

By default, database migrations are run on startup. Use --no-migrate to skip.
Changes to pwstore.yml are applied without a restart.`,
	Run: func(cmd *cobra.Command, args []string) {
		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")

		if err := runServer(host, port, noMigrate); err != nil {
			fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

func runServer(host, port string, noMigrate bool) error {
	// Validate required environment variables first (fail fast)
	secret, ok := os.LookupEnv("PWSTORE_TOKEN_SECRET")
	if !ok {
		return errors.New("PWSTORE_TOKEN_SECRET environment variable is required")
	}
	dbURL := db.URL()
	if dbURL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, level, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	database, err := db.Connect(db.Config{URL: dbURL, Debug: cfg.LogLevel == "debug"})
	if err != nil {
		return err
	}

	if !noMigrate {
		logger.Info("running database migrations")
		upgrade := migrateUp
		if db.IsSQLite(dbURL) {
			// an in-memory database only exists on this connection
			upgrade = func() error { return db.AutoMigrate(database) }
		}
		if err := upgrade(); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	tokens, err := authn.NewTokens([]byte(secret), cfg.TokenLifetime())
	if err != nil {
		return err
	}

	s := server.NewServer(database, cfg, tokens, logger, host, port)
	endpoints.RegisterAll(s)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		err := config.Watch(ctx, logger, func(c *config.PwstoreConfig) {
			s.ApplyConfig(c)
			if err := logging.SetLevel(level, c.LogLevel); err != nil {
				logger.Warn("log level not applied", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("config watch disabled", zap.Error(err))
		}
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.CurrentConfig().ShutdownGrace())
	defer cancel()
	return s.Shutdown(shutdownCtx)
}
