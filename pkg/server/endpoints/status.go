package endpoints

import (
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server/store"
)

// Version is the server version reported by GET /. It is set at build
// time with -ldflags "-X .../endpoints.Version=...".
var Version = "0.1.0"

// HealthResponse represents the response from /health
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// RegisterStatusEndpoints registers the status and health endpoints
func RegisterStatusEndpoints(s *server.Server) {
	// GET / - Status (no auth required)
	s.Router.HandleFunc("/", handleStatus()).Methods("GET")

	// GET /health - Database connectivity (no auth required)
	s.Router.HandleFunc("/health", handleHealth(s.HealthStore, s.Logger)).Methods("GET")
}

func handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := os.Getenv("PWSTORE_VERSION_DISPLAY")
		if version == "" {
			version = Version
		}
		respondWithJSON(w, http.StatusOK, map[string]string{"version": version})
	}
}

func handleHealth(healthStore store.HealthStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := healthStore.CheckConnectivity(r.Context()); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			respondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status: "error",
				Error:  "database connectivity check failed",
			})
			return
		}
		respondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}
