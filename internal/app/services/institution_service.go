package services

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/yigit/transcriptledger/internal/app/models"
	"github.com/yigit/transcriptledger/internal/app/models/dto"
	"github.com/yigit/transcriptledger/internal/ledger"
	"github.com/yigit/transcriptledger/internal/pkg/helpers"
)

// InstitutionService defines the interface for institution operations
type InstitutionService interface {
	RegisterInstitution(ctx context.Context, caller common.Address, req *dto.RegisterInstitutionRequest) (uint64, error)
	DeactivateInstitution(ctx context.Context, caller common.Address, id uint64) error
	GetInstitution(ctx context.Context, id uint64) (*models.Institution, error)
	ListInstitutions(ctx context.Context, page, size int) (*dto.InstitutionListResponse, error)
}

type institutionServiceImpl struct {
	registry *ledger.Registry
	logger   zerolog.Logger
}

// NewInstitutionService creates a new institution service instance
func NewInstitutionService(registry *ledger.Registry, logger zerolog.Logger) InstitutionService {
	return &institutionServiceImpl{registry: registry, logger: logger}
}

func (s *institutionServiceImpl) RegisterInstitution(ctx context.Context, caller common.Address, req *dto.RegisterInstitutionRequest) (uint64, error) {
	addr, err := parseAddress("address", req.Address)
	if err != nil {
		return 0, err
	}

	id, err := s.registry.RegisterInstitution(ctx, caller, req.Name, req.AccreditationNumber, addr)
	if err != nil {
		logFailure(s.logger, "register_institution", err)
		return 0, err
	}
	return id, nil
}

func (s *institutionServiceImpl) DeactivateInstitution(ctx context.Context, caller common.Address, id uint64) error {
	err := s.registry.DeactivateInstitution(ctx, caller, id)
	logFailure(s.logger, "deactivate_institution", err)
	return err
}

func (s *institutionServiceImpl) GetInstitution(_ context.Context, id uint64) (*models.Institution, error) {
	inst, err := s.registry.GetInstitution(id)
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

// ListInstitutions returns one page of institutions in id order
func (s *institutionServiceImpl) ListInstitutions(_ context.Context, page, size int) (*dto.InstitutionListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	institutions, total := s.registry.ListInstitutions(offset, limit)

	return &dto.InstitutionListResponse{
		Institutions: institutions,
		Pagination:   helpers.NewPaginationInfo(total, page, limit),
	}, nil
}
