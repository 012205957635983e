package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/authn"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/config"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/logging"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server/endpoints"
)

// startInlineServer runs the server in-process on the test database.
func startInlineServer(db *gorm.DB, secret []byte, port string) (*server.Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, _, err := logging.New("warn", "console")
	if err != nil {
		return nil, err
	}
	tokens, err := authn.NewTokens(secret, cfg.TokenLifetime())
	if err != nil {
		return nil, err
	}

	s := server.NewServer(db, cfg, tokens, logger, "127.0.0.1", port)
	endpoints.RegisterAll(s)

	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("inline server stopped", zap.Error(err))
		}
	}()
	return s, nil
}

// startBinary starts the pwstore server binary
func startBinary(binaryPath, dbURL, secret, port string) (*exec.Cmd, context.CancelFunc, error) {
	ctx, cancel := context.WithCancel(context.Background())

	// the schema is already migrated by the harness
	cmd := exec.CommandContext(ctx, binaryPath, "server", "--no-migrate", "-b", "127.0.0.1", "-p", port)
	cmd.Env = append(os.Environ(),
		"DATABASE_URL="+dbURL,
		"PWSTORE_TOKEN_SECRET="+secret,
		"PWSTORE_LOG_LEVEL=warn",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed to start binary: %w", err)
	}

	return cmd, cancel, nil
}
