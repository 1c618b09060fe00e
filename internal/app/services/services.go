// Package services adapts HTTP requests onto the ledger registry.
//
// Services defined in this package:
//   - AuthService: wallet challenge and signature login
//   - InstitutionService: institution registration, deactivation and lookup
//   - StudentService: student self-registration and lookup
//   - TranscriptService: transcripts, courses, graduation, verification and GPA
//   - AccessService: role grants and revocations
//   - LedgerService: totals and journal head
package services

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/yigit/transcriptledger/internal/ledger"
	"github.com/yigit/transcriptledger/internal/pkg/apperrors"
)

// logFailure records a failed operation. Caller mistakes are logged at debug
// level; anything else is an error.
func logFailure(l zerolog.Logger, op string, err error) {
	if err == nil {
		return
	}
	evt := l.Error()
	if apperrors.Is(err, apperrors.ErrValidationFailed,
		apperrors.ErrPermissionDenied,
		apperrors.ErrResourceNotFound,
		apperrors.ErrResourceAlreadyExists,
		apperrors.ErrAlreadyVerified,
		apperrors.ErrNonceNotFound,
		apperrors.ErrInvalidSignature,
	) {
		evt = l.Debug()
	}
	evt.Err(err).Str("operation", op).Msg("Ledger operation failed")
}

// parseAddress parses a hex account address from a request field
func parseAddress(field, s string) (common.Address, error) {
	addr, err := ledger.ParseIdentity(s)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", field, err)
	}
	return addr, nil
}
