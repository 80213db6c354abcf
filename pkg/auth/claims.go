package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the token claims the engine trusts. The subject identifies the
// loan officer or integration acting on the book.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// HasRole reports whether the claims carry role.
func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// HasAnyRole reports whether the claims carry at least one of roles.
func (c Claims) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if c.HasRole(r) {
			return true
		}
	}
	return false
}

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleAuditor  = "auditor"
)

// WriteRoles may mutate clients, loans and installments.
var WriteRoles = []string{RoleAdmin, RoleOperator}
