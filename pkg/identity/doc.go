// Package identity provides the authenticated identity of a pwstore request.
//
// An Identity combines the verified token claims (user id, issue and expiry
// times) with the user record loaded for the request (name, role). Every
// core operation receives the acting user explicitly; handlers obtain it
// from the request context.
//
// # Basic Usage
//
//	// Build identity from the loaded user and the verified claims
//	id := identity.FromUser(user).WithToken(issuedAt, expiresAt)
//
//	// Add request context
//	id.WithRemoteIP(clientIP)
//
//	// Store in request context
//	ctx = identity.Set(ctx, id)
//
//	// Retrieve from context
//	id, ok := identity.Get(ctx)
package identity
