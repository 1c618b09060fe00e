package services

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/yigit/transcriptledger/internal/app/models"
	"github.com/yigit/transcriptledger/internal/app/models/dto"
	"github.com/yigit/transcriptledger/internal/ledger"
)

// StudentService defines the interface for student operations
type StudentService interface {
	RegisterStudent(ctx context.Context, caller common.Address, req *dto.RegisterStudentRequest) error
	GetStudent(ctx context.Context, address string) (*models.Student, error)
	GetStudentTranscripts(ctx context.Context, address string) (*dto.StudentTranscriptsResponse, error)
}

type studentServiceImpl struct {
	registry *ledger.Registry
	logger   zerolog.Logger
}

// NewStudentService creates a new student service instance
func NewStudentService(registry *ledger.Registry, logger zerolog.Logger) StudentService {
	return &studentServiceImpl{registry: registry, logger: logger}
}

// RegisterStudent registers the caller itself as a student
func (s *studentServiceImpl) RegisterStudent(ctx context.Context, caller common.Address, req *dto.RegisterStudentRequest) error {
	err := s.registry.RegisterStudent(ctx, caller, req.Name, req.StudentID)
	logFailure(s.logger, "register_student", err)
	return err
}

func (s *studentServiceImpl) GetStudent(_ context.Context, address string) (*models.Student, error) {
	addr, err := parseAddress("address", address)
	if err != nil {
		return nil, err
	}
	student, err := s.registry.GetStudent(addr)
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// GetStudentTranscripts lists transcript ids in creation order. An unknown
// student has none.
func (s *studentServiceImpl) GetStudentTranscripts(_ context.Context, address string) (*dto.StudentTranscriptsResponse, error) {
	addr, err := parseAddress("address", address)
	if err != nil {
		return nil, err
	}
	return &dto.StudentTranscriptsResponse{
		Address:       addr.Hex(),
		TranscriptIDs: s.registry.GetStudentTranscripts(addr),
	}, nil
}
