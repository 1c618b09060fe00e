package models

import (
	"fmt"
	"strings"
)

// Role is a capability an identity may hold on the ledger
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleInstitution Role = "INSTITUTION"
	RoleVerifier    Role = "VERIFIER"
)

// AllRoles lists every role in a stable order
var AllRoles = []Role{RoleAdmin, RoleInstitution, RoleVerifier}

// ParseRole converts a case-insensitive role name into a Role
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, r := range AllRoles {
		if r == role {
			return role, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}
