package endpoints

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server/store"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/validation"
)

type groupRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

// RegisterGroupsEndpoints registers the group routes on the API router
func RegisterGroupsEndpoints(s *server.Server) {
	groups := s.GroupsStore
	authz := s.AuthzStore
	logger := s.Logger
	api := s.APIRouter()

	api.HandleFunc("/groups", handleListGroups(groups, logger)).Methods("GET")
	api.HandleFunc("/groups", handleCreateGroup(groups, logger)).Methods("POST")
	api.HandleFunc("/groups/{id:[0-9]+}", handleShowGroup(groups, authz, logger)).Methods("GET")
	api.HandleFunc("/groups/{id:[0-9]+}", handleUpdateGroup(groups, authz, logger)).Methods("PUT", "PATCH")
	api.HandleFunc("/groups/{id:[0-9]+}", handleDeleteGroup(groups, authz, logger)).Methods("DELETE")
}

// ownedGroupVar resolves the group id route variable. It answers 404 unless
// the group exists and 403 unless the actor owns it.
func ownedGroupVar(w http.ResponseWriter, r *http.Request, groups store.GroupsStore, authz store.AuthzStore, logger *zap.Logger, actorID uint) (uint, bool) {
	id, ok := idVar(r, "id")
	if !ok {
		respondWithStoreError(w, r, logger, store.ErrGroupNotFound)
		return 0, false
	}

	exists, err := groups.GroupExists(r.Context(), id)
	if err != nil {
		respondWithStoreError(w, r, logger, err)
		return 0, false
	}
	if !exists {
		respondWithStoreError(w, r, logger, store.ErrGroupNotFound)
		return 0, false
	}

	if !authz.OwnsGroup(r.Context(), actorID, id) {
		respondWithMessage(w, http.StatusForbidden, msgUnauthorized)
		return 0, false
	}
	return id, true
}

// decodeGroupRequest reads and validates a group body, including the
// per-owner unique name rule.
func decodeGroupRequest(w http.ResponseWriter, r *http.Request, groups store.GroupsStore, logger *zap.Logger, ownerID, ignoreID uint) (*groupRequest, bool) {
	var req groupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithMessage(w, http.StatusBadRequest, "Malformed JSON body")
		return nil, false
	}

	errs := validation.Errors{}
	if err := collectErrors(errs, validation.Struct(req)); err != nil {
		respondWithStoreError(w, r, logger, err)
		return nil, false
	}
	if req.Name != "" {
		unique := validation.UniqueName(r.Context(), groups.GroupNameTaken, ownerID, req.Name, ignoreID)
		if err := collectErrors(errs, unique); err != nil {
			respondWithStoreError(w, r, logger, err)
			return nil, false
		}
	}
	if len(errs) > 0 {
		respondWithValidation(w, http.StatusUnprocessableEntity, errs)
		return nil, false
	}
	return &req, true
}

func handleListGroups(groups store.GroupsStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		list, err := groups.ListGroups(r.Context(), actor)
		if err != nil {
			respondWithStoreError(w, r, logger, err)
			return
		}
		if list == nil {
			list = []store.Group{}
		}
		respondWithData(w, http.StatusOK, list)
	}
}

func handleCreateGroup(groups store.GroupsStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		req, ok := decodeGroupRequest(w, r, groups, logger, actor.UserID, 0)
		if !ok {
			return
		}

		group, err := groups.CreateGroup(r.Context(), actor, req.Name)
		if err != nil {
			respondWithStoreError(w, r, logger, err)
			return
		}
		respondWithData(w, http.StatusCreated, group)
	}
}

func handleShowGroup(groups store.GroupsStore, authz store.AuthzStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		id, ok := ownedGroupVar(w, r, groups, authz, logger, actor.UserID)
		if !ok {
			return
		}

		group, err := groups.FetchGroup(r.Context(), id)
		if err != nil {
			respondWithStoreError(w, r, logger, err)
			return
		}
		respondWithData(w, http.StatusOK, group)
	}
}

func handleUpdateGroup(groups store.GroupsStore, authz store.AuthzStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		id, ok := ownedGroupVar(w, r, groups, authz, logger, actor.UserID)
		if !ok {
			return
		}
		req, ok := decodeGroupRequest(w, r, groups, logger, actor.UserID, id)
		if !ok {
			return
		}

		group, err := groups.RenameGroup(r.Context(), id, req.Name)
		if err != nil {
			respondWithStoreError(w, r, logger, err)
			return
		}
		respondWithData(w, http.StatusOK, group)
	}
}

func handleDeleteGroup(groups store.GroupsStore, authz store.AuthzStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		id, ok := ownedGroupVar(w, r, groups, authz, logger, actor.UserID)
		if !ok {
			return
		}

		if err := groups.DeleteGroup(r.Context(), id); err != nil {
			respondWithStoreError(w, r, logger, err)
			return
		}
		respondWithData(w, http.StatusOK, id)
	}
}
