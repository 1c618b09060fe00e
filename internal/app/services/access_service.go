package services

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/yigit/transcriptledger/internal/app/models"
	"github.com/yigit/transcriptledger/internal/app/models/dto"
	"github.com/yigit/transcriptledger/internal/ledger"
)

// AccessService manages role assignments
type AccessService interface {
	GrantRole(ctx context.Context, caller common.Address, req *dto.RoleChangeRequest) (*dto.RoleChangeResponse, error)
	RevokeRole(ctx context.Context, caller common.Address, req *dto.RoleChangeRequest) (*dto.RoleChangeResponse, error)
	GetRoles(ctx context.Context, address string) (*dto.RolesResponse, error)
}

type accessServiceImpl struct {
	registry *ledger.Registry
	logger   zerolog.Logger
}

// NewAccessService creates a new access service instance
func NewAccessService(registry *ledger.Registry, logger zerolog.Logger) AccessService {
	return &accessServiceImpl{registry: registry, logger: logger}
}

type roleChangeFn func(ctx context.Context, caller common.Address, role models.Role, account common.Address) (bool, error)

func (s *accessServiceImpl) change(ctx context.Context, op string, fn roleChangeFn, caller common.Address, req *dto.RoleChangeRequest) (*dto.RoleChangeResponse, error) {
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrInvalidRole, err)
	}
	account, err := parseAddress("address", req.Address)
	if err != nil {
		return nil, err
	}

	changed, err := fn(ctx, caller, role, account)
	if err != nil {
		logFailure(s.logger, op, err)
		return nil, err
	}
	return &dto.RoleChangeResponse{
		Role:    string(role),
		Address: account.Hex(),
		Changed: changed,
	}, nil
}

// GrantRole grants a role. Granting a held role reports Changed=false.
func (s *accessServiceImpl) GrantRole(ctx context.Context, caller common.Address, req *dto.RoleChangeRequest) (*dto.RoleChangeResponse, error) {
	return s.change(ctx, "grant_role", s.registry.GrantRole, caller, req)
}

// RevokeRole revokes a role. Revoking an unheld role reports Changed=false.
func (s *accessServiceImpl) RevokeRole(ctx context.Context, caller common.Address, req *dto.RoleChangeRequest) (*dto.RoleChangeResponse, error) {
	return s.change(ctx, "revoke_role", s.registry.RevokeRole, caller, req)
}

func (s *accessServiceImpl) GetRoles(_ context.Context, address string) (*dto.RolesResponse, error) {
	addr, err := parseAddress("address", address)
	if err != nil {
		return nil, err
	}
	roles := s.registry.RolesOf(addr)
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return &dto.RolesResponse{Address: addr.Hex(), Roles: names}, nil
}
