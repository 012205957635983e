package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/authn"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/config"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server/middleware"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server/store"
	gormstore "github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server/store/gorm"
)

// APIPrefix is the path prefix of the authenticated API.
const APIPrefix = "/api/v1"

type Server struct {
	Router *mux.Router
	DB     *gorm.DB
	Config *config.PwstoreConfig
	Logger *zap.Logger
	Tokens *authn.Tokens

	PasswordsStore store.PasswordsStore
	GroupsStore    store.GroupsStore
	UsersStore     store.UsersStore
	AuthzStore     store.AuthzStore
	HealthStore    store.HealthStore

	TokenMiddleware *middleware.TokenAuthenticator

	api   *mux.Router
	srv   *http.Server
	cfgMu sync.RWMutex
}

func NewServer(
	db *gorm.DB,
	cfg *config.PwstoreConfig,
	tokens *authn.Tokens,
	logger *zap.Logger,
	host string,
	port string,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	users := gormstore.NewUsersStore(db)
	tokenMiddleware := middleware.NewTokenAuthenticator(tokens, users, logger)

	router := mux.NewRouter().UseEncodedPath()
	api := router.PathPrefix(APIPrefix).Subrouter()
	api.Use(tokenMiddleware.Middleware)

	srv := &http.Server{
		Handler:      wrapHandler(router, cfg),
		Addr:         net.JoinHostPort(host, port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Router: router,
		DB:     db,
		Config: cfg,
		Logger: logger,
		Tokens: tokens,

		PasswordsStore: gormstore.NewPasswordsStore(db, logger),
		GroupsStore:    gormstore.NewGroupsStore(db, logger),
		UsersStore:     users,
		AuthzStore:     gormstore.NewAuthzStore(db),
		HealthStore:    gormstore.NewHealthStore(db),

		TokenMiddleware: tokenMiddleware,

		api: api,
		srv: srv,
	}
}

// wrapHandler adds access logging, CORS and, for trusted proxies,
// X-Forwarded-For handling around the router.
func wrapHandler(router http.Handler, cfg *config.PwstoreConfig) http.Handler {
	h := router
	if cfg != nil && len(cfg.AllowedOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(cfg.AllowedOrigins),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "Accept"}),
		)(h)
	}
	if cfg != nil && len(cfg.TrustedProxies) > 0 {
		proxied := handlers.ProxyHeaders(h)
		inner := h
		h = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err == nil && cfg.IsTrustedProxy(host) {
				proxied.ServeHTTP(w, r)
				return
			}
			inner.ServeHTTP(w, r)
		})
	}
	return handlers.LoggingHandler(os.Stdout, h)
}

// CurrentConfig returns the configuration in effect.
func (s *Server) CurrentConfig() *config.PwstoreConfig {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.Config
}

// ApplyConfig swaps in a reloaded configuration. The token lifetime takes
// effect for tokens issued afterwards; listener, CORS and proxy settings
// need a restart.
func (s *Server) ApplyConfig(cfg *config.PwstoreConfig) {
	s.cfgMu.Lock()
	s.Config = cfg
	s.cfgMu.Unlock()

	if s.Tokens != nil {
		s.Tokens.SetTTL(cfg.TokenLifetime())
	}
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// APIRouter returns the subrouter for authenticated routes under APIPrefix.
func (s *Server) APIRouter() *mux.Router {
	return s.api
}

func (s *Server) Start() error {
	s.Logger.Info("server listening", zap.String("addr", s.srv.Addr))
	return s.srv.ListenAndServe()
}

// StartWithListener serves on an existing listener.
func (s *Server) StartWithListener(l net.Listener) error {
	s.Logger.Info("server listening", zap.String("addr", l.Addr().String()))
	return s.srv.Serve(l)
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("server shutting down")
	return s.srv.Shutdown(ctx)
}
