// Package auth provides authentication and authorization for taskboard.
//
// # Tokens
//
// API clients authenticate with JWT bearer tokens signed with HS256 using
// the configured jwt_secret. Tokens carry the user id ("sub") and role
// ("role") claims and expire after the configured TTL (one hour by
// default):
//
//	token, err := verifier.Generate(userID, role, time.Hour)
//	claims, err := verifier.Verify(token)
//
// # Middleware
//
// Middleware validates the Authorization header, decodes the token and
// attaches an Identity to the request context. RequireAdmin runs after it
// and rejects non-admin identities. The middleware trusts the token payload
// and never looks the user up, so revocation takes effect only at expiry.
//
// # Policies
//
// Handlers make authorization decisions through named predicates instead of
// inline role checks:
//
//	if !auth.OwnerOrAdmin(ident, task.CreatedBy) { ... }
//	if !auth.AdminOnly(ident, "") { ... }
package auth
