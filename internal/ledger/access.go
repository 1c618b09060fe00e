package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/yigit/transcriptledger/internal/app/models"
)

// PermissionChecker answers role membership questions for the registry
type PermissionChecker interface {
	HasRole(role models.Role, id common.Address) bool
}

type roleSet uint8

const (
	roleAdmin roleSet = 1 << iota
	roleInstitution
	roleVerifier
)

func roleBit(role models.Role) (roleSet, bool) {
	switch role {
	case models.RoleAdmin:
		return roleAdmin, true
	case models.RoleInstitution:
		return roleInstitution, true
	case models.RoleVerifier:
		return roleVerifier, true
	}
	return 0, false
}

// AccessControl holds the role set of every identity. It is not safe for
// concurrent use; the registry lock guards it.
type AccessControl struct {
	roles  map[common.Address]roleSet
	admins int
}

// NewAccessControl creates an empty AccessControl
func NewAccessControl() *AccessControl {
	return &AccessControl{roles: make(map[common.Address]roleSet)}
}

// HasRole reports whether id holds role
func (a *AccessControl) HasRole(role models.Role, id common.Address) bool {
	bit, ok := roleBit(role)
	if !ok {
		return false
	}
	return a.roles[id]&bit != 0
}

// Roles returns the roles held by id in a stable order
func (a *AccessControl) Roles(id common.Address) []models.Role {
	set := a.roles[id]
	roles := make([]models.Role, 0, len(models.AllRoles))
	for _, role := range models.AllRoles {
		bit, _ := roleBit(role)
		if set&bit != 0 {
			roles = append(roles, role)
		}
	}
	return roles
}

// grant adds role to id and reports whether anything changed
func (a *AccessControl) grant(role models.Role, id common.Address) bool {
	bit, ok := roleBit(role)
	if !ok || a.roles[id]&bit != 0 {
		return false
	}
	a.roles[id] |= bit
	if bit == roleAdmin {
		a.admins++
	}
	return true
}

// revoke removes role from id and reports whether anything changed
func (a *AccessControl) revoke(role models.Role, id common.Address) bool {
	bit, ok := roleBit(role)
	if !ok || a.roles[id]&bit == 0 {
		return false
	}
	a.roles[id] &^= bit
	if a.roles[id] == 0 {
		delete(a.roles, id)
	}
	if bit == roleAdmin {
		a.admins--
	}
	return true
}

func (a *AccessControl) adminCount() int {
	return a.admins
}
