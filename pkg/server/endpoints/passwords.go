package endpoints

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/reassign"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server/store"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/validation"
)

type createPasswordRequest struct {
	Name         string `json:"name" validate:"required,max=50"`
	Password     string `json:"password" validate:"required,max=50"`
	Description  string `json:"description" validate:"max=500"`
	ToGroupID    *int64 `json:"toGroupId"`
	Group        *int64 `json:"group"`
	AllowedUsers []uint `json:"allowedUsers"`
}

// groupID returns the requested group, preferring toGroupId. Zero means
// ungrouped.
func (req createPasswordRequest) groupID() uint {
	target := req.ToGroupID
	if target == nil {
		target = req.Group
	}
	if target == nil || *target <= 0 {
		return 0
	}
	return uint(*target)
}

type updatePasswordRequest struct {
	Name         string `json:"name" validate:"required,max=50"`
	Password     string `json:"password" validate:"max=50"`
	Description  string `json:"description" validate:"max=500"`
	ToGroupID    *int64 `json:"toGroupId"`
	AllowedUsers []uint `json:"allowedUsers"`
}

type changeGroupRequest struct {
	PasswordID  *uint `json:"password_id"`
	FromGroupID *uint `json:"from_group_id"`
	ToGroupID   *uint `json:"to_group_id"`
}

type togglePermittedRequest struct {
	Permitted *bool `json:"permitted"`
}

// RegisterPasswordsEndpoints registers the password routes on the API router
func RegisterPasswordsEndpoints(s *server.Server) {
	passwords := s.PasswordsStore
	users := s.UsersStore
	authz := s.AuthzStore
	logger := s.Logger
	api := s.APIRouter()

	api.HandleFunc("/passwords", handleListPasswords(passwords, logger)).Methods("GET")
	api.HandleFunc("/passwords", handleCreatePassword(passwords, users, authz, logger)).Methods("POST")
	api.HandleFunc("/passwords/groups", handleChangePasswordGroup(passwords, authz, logger)).Methods("PATCH")
	api.HandleFunc("/passwords/{id:[0-9]+}", handleShowPassword(passwords, authz, logger)).Methods("GET")
	api.HandleFunc("/passwords/{id:[0-9]+}", handleUpdatePassword(passwords, users, authz, logger)).Methods("PUT", "PATCH")
	api.HandleFunc("/passwords/{id:[0-9]+}", handleDeletePassword(passwords, authz, logger)).Methods("DELETE")
	api.HandleFunc("/passwords/{id:[0-9]+}/allowed_users", handleAllowedUsers(passwords, authz, logger)).Methods("GET")
	api.HandleFunc("/passwords/{passwordId:[0-9]+}/users/{userId:[0-9]+}", handleTogglePermitted(passwords, authz, logger)).Methods("PATCH")
}

// collectErrors merges validation failures into errs and returns any other
// error.
func collectErrors(errs validation.Errors, err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		errs.Merge(verrs)
		return nil
	}
	return err
}

// checkAllowedUsers fails on ids that match no user.
func checkAllowedUsers(ctx context.Context, users store.UsersStore, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	missing, err := users.MissingUserIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return validation.Errors{"allowedUsers": {"The selected allowed users is invalid."}}
	}
	return nil
}

// passwordVar resolves a password id route variable, answering 404 unless
// the password exists.
func passwordVar(w http.ResponseWriter, r *http.Request, passwords store.PasswordsStore, logger *zap.Logger, name string) (uint, bool) {
	id, ok := idVar(r, name)
	if !ok {
		respondWithStoreError(w, r, logger, store.ErrPasswordNotFound)
		return 0, false
	}
	return id, passwordFound(w, r, passwords, logger, id)
}

// passwordFound answers 404 unless the password exists.
func passwordFound(w http.ResponseWriter, r *http.Request, passwords store.PasswordsStore, logger *zap.Logger, id uint) bool {
	exists, err := passwords.PasswordExists(r.Context(), id)
	if err != nil {
		respondWithStoreError(w, r, logger, err)
		return false
	}
	if !exists {
		respondWithStoreError(w, r, logger, store.ErrPasswordNotFound)
		return false
	}
	return true
}

func handleListPasswords(passwords store.PasswordsStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		view, err := passwords.ListVisible(r.Context(), actor)
		if err != nil {
			respondWithStoreError(w, r, logger, err)
			return
		}
		respondWithData(w, http.StatusOK, view)
	}
}

func handleCreatePassword(passwords store.PasswordsStore, users store.UsersStore, authz store.AuthzStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		ctx := r.Context()

		var req createPasswordRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Malformed JSON body")
			return
		}

		errs := validation.Errors{}
		if err := collectErrors(errs, validation.Struct(req)); err != nil {
			respondWithStoreError(w, r, logger, err)
			return
		}
		if err := collectErrors(errs, checkAllowedUsers(ctx, users, req.AllowedUsers)); err != nil {
			respondWithStoreError(w, r, logger, err)
			return
		}
		if len(errs) > 0 {
			respondWithValidation(w, http.StatusUnprocessableEntity, errs)
			return
		}

		err := validation.UniqueName(ctx, passwords.PasswordNameTaken, actor.UserID, req.Name, 0)
		if err != nil {
			var verrs validation.Errors
			if errors.As(err, &verrs) {
				respondWithValidation(w, http.StatusConflict, verrs)
				return
			}
			respondWithStoreError(w, r, logger, err)
			return
		}

		groupID := req.groupID()
		if groupID > 0 && !authz.OwnsGroup(ctx, actor.UserID, groupID) {
			respondWithMessage(w, http.StatusForbidden, msgUnauthorized)
			return
		}

		created, err := passwords.CreatePassword(ctx, actor, store.NewPassword{
			Name:         req.Name,
			Password:     req.Password,
			Description:  req.Description,
			GroupID:      groupID,
			AllowedUsers: req.AllowedUsers,
		})
		if err != nil {
			respondWithStoreError(w, r, logger, err)
			return
		}
		respondWithData(w, http.StatusCreated, created)
	}
}

func handleShowPassword(passwords store.PasswordsStore, authz store.AuthzStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		id, ok := passwordVar(w, r, passwords, logger, "id")
		if !ok {
			return
		}

		if !authz.CanViewPassword(r.Context(), actor, id) {
			respondWithMessage(w, http.StatusForbidden, msgUnauthorized)
			return
		}

		detail, err := passwords.FetchPassword(r.Context(), actor, id)
		if err != nil {
			respondWithStoreError(w, r, logger, err)
			return
		}
		respondWithData(w, http.StatusOK, detail)
	}
}

func handleUpdatePassword(passwords store.PasswordsStore, users store.UsersStore, authz store.AuthzStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		ctx := r.Context()

		id, ok := passwordVar(w, r, passwords, logger, "id")
		if !ok {
			return
		}
		if !authz.OwnsPassword(ctx, actor.UserID, id) {
			respondWithMessage(w, http.StatusForbidden, msgUnauthorized)
			return
		}

		var req updatePasswordRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Malformed JSON body")
			return
		}

		errs := validation.Errors{}
		if err := collectErrors(errs, validation.Struct(req)); err != nil {
			respondWithStoreError(w, r, logger, err)
			return
		}

		target := reassign.KeepGroup
		if req.ToGroupID != nil {
			switch v := *req.ToGroupID; {
			case v > 0 || v == reassign.KeepGroup || v == reassign.Ungroup:
				target = v
			default:
				errs.Add("toGroupId", "The to group id field is invalid.")
			}
		}

		if req.Name != "" {
			unique := validation.UniqueName(ctx, passwords.PasswordNameTaken, actor.UserID, req.Name, id)
			if err := collectErrors(errs, unique); err != nil {
				respondWithStoreError(w, r, logger, err)
				return
			}
		}
		if err := collectErrors(errs, checkAllowedUsers(ctx, users, req.AllowedUsers)); err != nil {
			respondWithStoreError(w, r, logger, err)
			return
		}
		if len(errs) > 0 {
			respondWithValidation(w, http.StatusUnprocessableEntity, errs)
			return
		}

		if target > 0 && !authz.OwnsGroup(ctx, actor.UserID, uint(target)) {
			respondWithMessage(w, http.StatusForbidden, msgUnauthorized)
			return
		}

		// An absent allowedUsers keeps the current sharing.
		allowed := req.AllowedUsers
		if allowed == nil {
			current, err := passwords.AllowedUsers(ctx, actor, id)
			if err != nil {
				respondWithStoreError(w, r, logger, err)
				return
			}
			allowed = current
		}

		updated, err := passwords.UpdatePassword(ctx, actor, id, store.PasswordChanges{
			Name:         req.Name,
			Password:     req.Password,
			Description:  req.Description,
			ToGroupID:    target,
			AllowedUsers: allowed,
		})
		if err != nil {
			respondWithStoreError(w, r, logger, err)
			return
		}
		respondWithData(w, http.StatusOK, updated)
	}
}

func handleDeletePassword(passwords store.PasswordsStore, authz store.AuthzStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		id, ok := passwordVar(w, r, passwords, logger, "id")
		if !ok {
			return
		}
		if !authz.OwnsPassword(r.Context(), actor.UserID, id) {
			respondWithMessage(w, http.StatusForbidden, msgUnauthorized)
			return
		}

		if err := passwords.DeletePassword(r.Context(), id); err != nil {
			respondWithStoreError(w, r, logger, err)
			return
		}
		respondWithData(w, http.StatusOK, id)
	}
}

func handleChangePasswordGroup(passwords store.PasswordsStore, authz store.AuthzStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		var req changeGroupRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Malformed JSON body")
			return
		}
		if req.PasswordID == nil || *req.PasswordID == 0 {
			respondWithValidation(w, http.StatusUnprocessableEntity, validation.Errors{
				"password_id": {"The password id field is required."},
			})
			return
		}
		id := *req.PasswordID

		if !passwordFound(w, r, passwords, logger, id) {
			return
		}
		if !authz.CanChangeGroup(r.Context(), actor.UserID, id, req.FromGroupID, req.ToGroupID) {
			respondWithMessage(w, http.StatusForbidden, msgUnauthorized)
			return
		}

		// Neither group given surfaces as reassign.ErrNoTransition, a 500.
		if err := passwords.ChangeGroup(r.Context(), id, req.FromGroupID, req.ToGroupID); err != nil {
			respondWithStoreError(w, r, logger, err)
			return
		}
		respondWithData(w, http.StatusOK, map[string]string{"message": "success"})
	}
}

func handleTogglePermitted(passwords store.PasswordsStore, authz store.AuthzStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		passwordID, ok := passwordVar(w, r, passwords, logger, "passwordId")
		if !ok {
			return
		}
		userID, ok := idVar(r, "userId")
		if !ok {
			respondWithStoreError(w, r, logger, store.ErrUserNotFound)
			return
		}
		if !authz.OwnsPassword(r.Context(), actor.UserID, passwordID) {
			respondWithMessage(w, http.StatusForbidden, msgUnauthorized)
			return
		}

		var req togglePermittedRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithMessage(w, http.StatusBadRequest, "Malformed JSON body")
			return
		}
		if req.Permitted == nil {
			respondWithValidation(w, http.StatusUnprocessableEntity, validation.Errors{
				"permitted": {"The permitted field is required."},
			})
			return
		}

		toggle, err := passwords.SetPermitted(r.Context(), passwordID, userID, *req.Permitted)
		if err != nil {
			respondWithStoreError(w, r, logger, err)
			return
		}
		if toggle == nil {
			respondWithData(w, http.StatusOK, []interface{}{})
			return
		}
		respondWithData(w, http.StatusOK, toggle)
	}
}

func handleAllowedUsers(passwords store.PasswordsStore, authz store.AuthzStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		id, ok := passwordVar(w, r, passwords, logger, "id")
		if !ok {
			return
		}
		if !authz.OwnsPassword(r.Context(), actor.UserID, id) {
			respondWithMessage(w, http.StatusForbidden, msgUnauthorized)
			return
		}

		ids, err := passwords.AllowedUsers(r.Context(), actor, id)
		if err != nil {
			respondWithStoreError(w, r, logger, err)
			return
		}
		if ids == nil {
			ids = []uint{}
		}
		respondWithData(w, http.StatusOK, ids)
	}
}
