package services

import (
	"context"

	"github.com/yigit/transcriptledger/internal/app/models/dto"
	"github.com/yigit/transcriptledger/internal/ledger"
)

// LedgerService reports registry totals
type LedgerService interface {
	Stats(ctx context.Context) *dto.StatsResponse
	Health(ctx context.Context) *dto.HealthResponse
}

type ledgerServiceImpl struct {
	registry *ledger.Registry
}

// NewLedgerService creates a new ledger service instance
func NewLedgerService(registry *ledger.Registry) LedgerService {
	return &ledgerServiceImpl{registry: registry}
}

func (s *ledgerServiceImpl) Stats(_ context.Context) *dto.StatsResponse {
	return &dto.StatsResponse{
		TotalInstitutions: s.registry.GetTotalInstitutions(),
		TotalTranscripts:  s.registry.GetTotalTranscripts(),
		JournalHead:       s.registry.Head().Seq,
	}
}

func (s *ledgerServiceImpl) Health(_ context.Context) *dto.HealthResponse {
	return &dto.HealthResponse{Status: "ok", JournalHead: s.registry.Head().Seq}
}
