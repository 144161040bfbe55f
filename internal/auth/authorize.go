package auth

// Authorization predicates. Each takes the verified claims of the current
// request; exactly one of the role predicates is true for a well-formed
// account.

// IsAdministrator reports whether the caller holds the administrator role.
func IsAdministrator(claims *CustomClaims) bool {
	return claims != nil && claims.Role == RoleAdministrator
}

// IsProvider reports whether the caller holds the provider role.
func IsProvider(claims *CustomClaims) bool {
	return claims != nil && claims.Role == RoleProvider
}

// IsAnalyst reports whether the caller holds the analyst role.
func IsAnalyst(claims *CustomClaims) bool {
	return claims != nil && claims.Role == RoleAnalyst
}

// IsOwner reports whether the caller is the owner of a document. Ownership
// is strict ID equality; administrators get no bypass here.
func IsOwner(claims *CustomClaims, ownerID string) bool {
	return claims != nil && ownerID != "" && claims.Subject == ownerID
}
