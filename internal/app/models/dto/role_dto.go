package dto

// RoleChangeRequest grants or revokes a role
type RoleChangeRequest struct {
	Role    string `json:"role" binding:"required" validate:"required,oneof=ADMIN INSTITUTION VERIFIER" example:"VERIFIER"`
	Address string `json:"address" binding:"required" validate:"required,eth_addr"`
}

// RoleChangeResponse reports whether the ledger state changed
type RoleChangeResponse struct {
	Role    string `json:"role" example:"VERIFIER"`
	Address string `json:"address"`
	Changed bool   `json:"changed" example:"true"`
}

// RolesResponse lists the roles an address holds
type RolesResponse struct {
	Address string   `json:"address"`
	Roles   []string `json:"roles"`
}
