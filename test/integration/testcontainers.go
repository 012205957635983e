package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/db"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server"
)

const (
	// tokenSecret signs the bearer tokens of the server under test.
	tokenSecret = "integration-token-secret-0123456789abcdef"
	serverPort  = "18080"
)

const usage = `set PWSTORE_BINARY or PWSTORE_INLINE=1

binary mode:
  go build -o pwstore ./cmd/pwstore
  INTEGRATION_TEST=1 PWSTORE_BINARY=$(pwd)/pwstore go test -v ./test/integration/...

inline mode:
  INTEGRATION_TEST=1 PWSTORE_INLINE=1 go test -v ./test/integration/...`

// TestContext is one PostgreSQL container plus one pwstore server shared by
// every scenario of a run.
type TestContext struct {
	DB          *gorm.DB
	RawDB       *sql.DB
	Container   testcontainers.Container
	ServerURL   string
	DatabaseURL string
	TokenSecret []byte
	HTTPClient  *http.Client

	ServerProcess *exec.Cmd
	InlineServer  *server.Server

	// cleanups run in reverse order on Close
	cleanups []func(context.Context)
}

// NewTestContext starts PostgreSQL, applies the migrations and brings up a
// server, either the binary at PWSTORE_BINARY or an in-process one when
// PWSTORE_INLINE=1.
func NewTestContext(ctx context.Context) (_ *TestContext, err error) {
	inline := os.Getenv("PWSTORE_INLINE") == "1"
	binaryPath := os.Getenv("PWSTORE_BINARY")
	switch {
	case inline:
		log.Println("Using inline server mode")
	case binaryPath == "":
		return nil, errors.New(usage)
	default:
		if _, err := os.Stat(binaryPath); err != nil {
			return nil, fmt.Errorf("PWSTORE_BINARY path does not exist: %s", binaryPath)
		}
		log.Printf("Using binary: %s", binaryPath)
	}

	root, err := findProjectRoot()
	if err != nil {
		return nil, err
	}

	tc := &TestContext{
		ServerURL:   "http://127.0.0.1:" + serverPort,
		TokenSecret: []byte(tokenSecret),
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
	}
	defer func() {
		if err != nil {
			tc.Close(ctx)
		}
	}()

	if err := tc.startPostgres(ctx); err != nil {
		return nil, err
	}
	if err := runMigrations(filepath.Join(root, "db", "migrations"), tc.DatabaseURL); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	tc.DB, err = db.Connect(db.Config{URL: tc.DatabaseURL})
	if err != nil {
		return nil, err
	}
	if tc.RawDB, err = tc.DB.DB(); err != nil {
		return nil, err
	}
	tc.onClose(func(context.Context) { _ = tc.RawDB.Close() })

	if inline {
		err = tc.startInline()
	} else {
		err = tc.startProcess(binaryPath)
	}
	if err != nil {
		return nil, err
	}

	if err := waitForServer(tc.ServerURL, 30*time.Second); err != nil {
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}
	return tc, nil
}

func (tc *TestContext) onClose(fn func(context.Context)) {
	tc.cleanups = append(tc.cleanups, fn)
}

func (tc *TestContext) startPostgres(ctx context.Context) error {
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("pwstore_test"),
		tcpostgres.WithUsername("pwstore"),
		tcpostgres.WithPassword("pwstore"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to start postgres container: %w", err)
	}
	tc.Container = container
	tc.onClose(func(ctx context.Context) { _ = container.Terminate(ctx) })

	tc.DatabaseURL, err = container.ConnectionString(ctx, "sslmode=disable")
	return err
}

func (tc *TestContext) startInline() error {
	s, err := startInlineServer(tc.DB, tc.TokenSecret, serverPort)
	if err != nil {
		return fmt.Errorf("failed to start inline server: %w", err)
	}
	tc.InlineServer = s
	tc.onClose(func(ctx context.Context) {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	})
	return nil
}

func (tc *TestContext) startProcess(binaryPath string) error {
	cmd, cancel, err := startBinary(binaryPath, tc.DatabaseURL, tokenSecret, serverPort)
	if err != nil {
		return fmt.Errorf("failed to start server binary: %w", err)
	}
	tc.ServerProcess = cmd
	tc.onClose(func(context.Context) {
		cancel()
		_ = cmd.Wait()
	})
	return nil
}

// Reset empties every table between scenarios.
func (tc *TestContext) Reset() error {
	return tc.DB.Exec(`TRUNCATE group_password, group_user, groups, password_user, passwords, users RESTART IDENTITY CASCADE`).Error
}

// Close releases everything NewTestContext acquired.
func (tc *TestContext) Close(ctx context.Context) {
	for i := len(tc.cleanups) - 1; i >= 0; i-- {
		tc.cleanups[i](ctx)
	}
	tc.cleanups = nil
}

// waitForServer polls the root endpoint until it answers 200.
func waitForServer(serverURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	for deadline := time.Now().Add(timeout); time.Now().Before(deadline); time.Sleep(100 * time.Millisecond) {
		resp, err := client.Get(serverURL + "/")
		if err != nil {
			continue
		}
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return nil
		}
	}
	return fmt.Errorf("server did not become ready within %v", timeout)
}

func findProjectRoot() (string, error) {
	for _, dir := range []string{"../..", "..", "."} {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Abs(dir)
		}
	}
	return "", errors.New("project root not found (looking for go.mod)")
}

// runMigrations applies the SQL migrations the same way `pwstore db migrate`
// does, into the same migrations table.
func runMigrations(dir, dbURL string) error {
	u, err := url.Parse(dbURL)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("x-migrations-table", "pwstore_schema_migrations")
	u.RawQuery = q.Encode()

	m, err := migrate.New("file://"+dir, u.String())
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
