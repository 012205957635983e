package endpoints

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/identity"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server/store"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/validation"
)

const (
	msgUnauthorized = "This action is unauthorized."
	msgServerError  = "Server Error"
)

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithData(w http.ResponseWriter, code int, data interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"data": data})
}

func respondWithMessage(w http.ResponseWriter, code int, message string) {
	respondWithError(w, code, map[string]string{"message": message})
}

// respondWithValidation writes field errors as {message, errors}.
func respondWithValidation(w http.ResponseWriter, code int, errs validation.Errors) {
	respondWithJSON(w, code, map[string]interface{}{
		"message": errs.Message(),
		"errors":  errs,
	})
}

// respondWithStoreError maps store and validation errors onto statuses.
// Anything unrecognised is logged and reported as a generic 500.
func respondWithStoreError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		respondWithValidation(w, http.StatusUnprocessableEntity, verrs)
	case errors.Is(err, store.ErrPasswordNotFound),
		errors.Is(err, store.ErrGroupNotFound),
		errors.Is(err, store.ErrUserNotFound):
		respondWithMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrForbidden):
		respondWithMessage(w, http.StatusForbidden, msgUnauthorized)
	default:
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondWithMessage(w, http.StatusInternalServerError, msgServerError)
	}
}

// decodeJSON reads the request body into v. An empty body leaves v as is.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// idVar parses a positive numeric route variable.
func idVar(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// actorFrom returns the caller's identity, answering 401 if there is none.
func actorFrom(w http.ResponseWriter, r *http.Request) (*identity.Identity, bool) {
	actor, ok := identity.Get(r.Context())
	if !ok || actor == nil {
		respondWithJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
		return nil, false
	}
	return actor, true
}
