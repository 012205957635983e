// Package server provides the HTTP server for the pwstore API.
//
// The server uses gorilla/mux for routing. Requests pass through access
// logging, optional CORS and, for trusted proxies, forwarded-header
// handling before reaching the router.
//
// # Server Setup
//
//	srv := server.NewServer(db, cfg, tokens, logger, "0.0.0.0", "8000")
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Components
//
// The Server struct holds:
//
//   - Router: HTTP request router
//   - DB: Database connection
//   - Tokens: Bearer token issuer
//   - the GORM-backed stores used by the endpoints
//   - TokenMiddleware: bearer token validation
//
// Routes under /api/v1 are registered on APIRouter and require a token.
package server
