package endpoints

import (
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterStatusEndpoints(srv)
	RegisterAuthEndpoints(srv)

	// Token-protected routes under /api/v1
	RegisterPasswordsEndpoints(srv)
	RegisterGroupsEndpoints(srv)
	RegisterUsersEndpoints(srv)
}
