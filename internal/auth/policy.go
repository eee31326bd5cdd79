// ABOUTME: Authorization predicates for resource access decisions
// ABOUTME: Replaces inline role conditionals with named allow/deny policies

package auth

// Policy decides whether an identity may act on a resource owned by ownerID.
type Policy func(ident *Identity, ownerID string) bool

// AdminOnly permits only admin identities, regardless of ownership.
func AdminOnly(ident *Identity, _ string) bool {
	return ident != nil && ident.IsAdmin()
}

// OwnerOrAdmin permits the resource owner and any admin.
func OwnerOrAdmin(ident *Identity, ownerID string) bool {
	if ident == nil {
		return false
	}
	return ident.IsAdmin() || ident.UserID == ownerID
}
