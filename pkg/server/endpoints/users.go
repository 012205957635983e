package endpoints

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/identity"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/model"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server/store"
)

// UserResponse is the current user as returned by GET /user and by the
// auth endpoints.
type UserResponse struct {
	ID    uint     `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles"`
}

func userResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Roles: identity.FromUser(u).Roles(),
	}
}

// RegisterUsersEndpoints registers the user routes on the API router
func RegisterUsersEndpoints(s *server.Server) {
	api := s.APIRouter()

	api.HandleFunc("/user", handleCurrentUser()).Methods("GET")
	api.HandleFunc("/users", handleListUsers(s.UsersStore, s.Logger)).Methods("GET")
}

func handleCurrentUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		respondWithData(w, http.StatusOK, UserResponse{
			ID:    actor.UserID,
			Name:  actor.Name,
			Email: actor.Email,
			Roles: actor.Roles(),
		})
	}
}

// handleListUsers lists the users a password can be shared with.
func handleListUsers(users store.UsersStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		list, err := users.ListShareableUsers(r.Context(), actor.UserID)
		if err != nil {
			respondWithStoreError(w, r, logger, err)
			return
		}
		if list == nil {
			list = []store.UserSummary{}
		}
		respondWithData(w, http.StatusOK, list)
	}
}
