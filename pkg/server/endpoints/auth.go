package endpoints

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/authn"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/model"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server/store"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/validation"
)

type registerRequest struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8,eqfield=PasswordConfirmation"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned by login and registration.
type TokenResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// RegisterAuthEndpoints registers the public login and registration routes
func RegisterAuthEndpoints(s *server.Server) {
	authenticator := authn.NewAuthenticator(s.UsersStore)
	registrationEnabled := func() bool {
		cfg := s.CurrentConfig()
		return cfg == nil || cfg.IsRegistrationEnabled()
	}

	s.Router.HandleFunc("/auth/register", handleRegister(authenticator, s.Tokens, registrationEnabled, s.Logger)).Methods("POST")
	s.Router.HandleFunc("/auth/login", handleLogin(authenticator, s.Tokens, s.Logger)).Methods("POST")
}

func respondWithToken(w http.ResponseWriter, r *http.Request, logger *zap.Logger, tokens *authn.Tokens, code int, user *model.User) {
	token, expiresAt, err := tokens.Issue(user)
	if err != nil {
		respondWithStoreError(w, r, logger, err)
		return
	}
	respondWithData(w, code, TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		User:      userResponse(user),
	})
}

func handleRegister(authenticator *authn.Authenticator, tokens *authn.Tokens, enabled func() bool, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !enabled() {
			respondWithMessage(w, http.StatusForbidden, "Registration is disabled.")
			return
		}

		var req registerRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Malformed JSON body")
			return
		}
		if err := validation.Struct(req); err != nil {
			respondWithStoreError(w, r, logger, err)
			return
		}

		user, err := authenticator.Register(r.Context(), authn.Registration{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Role:     model.RoleUser,
		})
		if err != nil {
			if errors.Is(err, store.ErrDuplicateEmail) {
				respondWithValidation(w, http.StatusUnprocessableEntity, validation.Errors{
					"email": {"The email has already been taken."},
				})
				return
			}
			respondWithStoreError(w, r, logger, err)
			return
		}

		logger.Info("user registered", zap.Uint("user_id", user.ID))
		respondWithToken(w, r, logger, tokens, http.StatusCreated, user)
	}
}

func handleLogin(authenticator *authn.Authenticator, tokens *authn.Tokens, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Malformed JSON body")
			return
		}
		if err := validation.Struct(req); err != nil {
			respondWithStoreError(w, r, logger, err)
			return
		}

		user, err := authenticator.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, store.ErrInvalidCredentials) {
				respondWithValidation(w, http.StatusUnprocessableEntity, validation.Errors{
					"email": {"These credentials do not match our records."},
				})
				return
			}
			respondWithStoreError(w, r, logger, err)
			return
		}

		respondWithToken(w, r, logger, tokens, http.StatusOK, user)
	}
}
