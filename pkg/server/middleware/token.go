package middleware

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"regexp"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/authn"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/identity"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server/store"
)

var bearerRegex = regexp.MustCompile(`^Bearer\s+(\S+)$`)

// TokenAuthenticator is middleware that validates bearer tokens and loads
// the user they were issued to.
type TokenAuthenticator struct {
	Tokens *authn.Tokens
	Users  store.UsersStore
	Logger *zap.Logger
}

// NewTokenAuthenticator creates a new token authenticator middleware
func NewTokenAuthenticator(tokens *authn.Tokens, users store.UsersStore, logger *zap.Logger) *TokenAuthenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenAuthenticator{Tokens: tokens, Users: users, Logger: logger}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// Middleware returns an HTTP middleware that validates bearer tokens and
// stores the caller's identity in the request context.
func (a *TokenAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if len(authHeader) == 0 {
			unauthorized(w, "Authorization missing")
			return
		}

		tokenMatches := bearerRegex.FindStringSubmatch(authHeader)
		if len(tokenMatches) != 2 {
			unauthorized(w, "Malformed authorization header")
			return
		}

		claims, err := a.Tokens.Parse(tokenMatches[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				unauthorized(w, "Token expired")
				return
			}
			unauthorized(w, "Invalid token")
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			unauthorized(w, "Invalid token")
			return
		}

		user, err := a.Users.FindUser(r.Context(), userID)
		if err != nil {
			if !errors.Is(err, store.ErrUserNotFound) {
				a.Logger.Error("token user lookup failed", zap.Uint("user_id", userID), zap.Error(err))
			}
			unauthorized(w, "Unauthenticated.")
			return
		}

		id := identity.FromUser(user).WithRemoteIP(remoteIP(r))
		if claims.IssuedAt != nil && claims.ExpiresAt != nil {
			id.WithToken(claims.IssuedAt.Time, claims.ExpiresAt.Time)
		}

		next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), id)))
	})
}

func remoteIP(r *http.Request) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}
