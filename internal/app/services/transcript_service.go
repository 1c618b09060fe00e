package services

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/yigit/transcriptledger/internal/app/models"
	"github.com/yigit/transcriptledger/internal/app/models/dto"
	"github.com/yigit/transcriptledger/internal/ledger"
)

// TranscriptService defines the interface for transcript operations
type TranscriptService interface {
	CreateTranscript(ctx context.Context, caller common.Address, req *dto.CreateTranscriptRequest) (uint64, error)
	AddCourse(ctx context.Context, caller common.Address, transcriptID uint64, req *dto.AddCourseRequest) error
	SetGraduationDate(ctx context.Context, caller common.Address, transcriptID uint64, req *dto.SetGraduationDateRequest) error
	VerifyTranscript(ctx context.Context, caller common.Address, transcriptID uint64) error
	GetTranscript(ctx context.Context, transcriptID uint64) (*models.Transcript, error)
	GetTranscriptCourses(ctx context.Context, transcriptID uint64) ([]models.Course, error)
	CalculateGPA(ctx context.Context, transcriptID uint64) (*dto.GPAResponse, error)
}

type transcriptServiceImpl struct {
	registry *ledger.Registry
	logger   zerolog.Logger
}

// NewTranscriptService creates a new transcript service instance
func NewTranscriptService(registry *ledger.Registry, logger zerolog.Logger) TranscriptService {
	return &transcriptServiceImpl{registry: registry, logger: logger}
}

func (s *transcriptServiceImpl) CreateTranscript(ctx context.Context, caller common.Address, req *dto.CreateTranscriptRequest) (uint64, error) {
	student, err := parseAddress("studentAddress", req.StudentAddress)
	if err != nil {
		return 0, err
	}

	id, err := s.registry.CreateTranscript(ctx, caller, student, req.Degree, req.Major, req.Semester, req.IPFSHash)
	if err != nil {
		logFailure(s.logger, "create_transcript", err)
		return 0, err
	}
	return id, nil
}

func (s *transcriptServiceImpl) AddCourse(ctx context.Context, caller common.Address, transcriptID uint64, req *dto.AddCourseRequest) error {
	err := s.registry.AddCourse(ctx, caller, transcriptID,
		req.CourseCode, req.CourseName, req.Credits, req.Grade, req.CompletionDate)
	logFailure(s.logger, "add_course", err)
	return err
}

func (s *transcriptServiceImpl) SetGraduationDate(ctx context.Context, caller common.Address, transcriptID uint64, req *dto.SetGraduationDateRequest) error {
	err := s.registry.SetGraduationDate(ctx, caller, transcriptID, req.GraduationDate)
	logFailure(s.logger, "set_graduation_date", err)
	return err
}

func (s *transcriptServiceImpl) VerifyTranscript(ctx context.Context, caller common.Address, transcriptID uint64) error {
	err := s.registry.VerifyTranscript(ctx, caller, transcriptID)
	logFailure(s.logger, "verify_transcript", err)
	return err
}

func (s *transcriptServiceImpl) GetTranscript(_ context.Context, transcriptID uint64) (*models.Transcript, error) {
	t, err := s.registry.GetTranscript(transcriptID)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTranscriptCourses returns the courses in insertion order
func (s *transcriptServiceImpl) GetTranscriptCourses(_ context.Context, transcriptID uint64) ([]models.Course, error) {
	return s.registry.GetTranscriptCourses(transcriptID), nil
}

func (s *transcriptServiceImpl) CalculateGPA(_ context.Context, transcriptID uint64) (*dto.GPAResponse, error) {
	gpa, err := s.registry.CalculateGPA(transcriptID)
	if err != nil {
		logFailure(s.logger, "calculate_gpa", err)
		return nil, err
	}
	return &dto.GPAResponse{TranscriptID: transcriptID, GPA: gpa}, nil
}
