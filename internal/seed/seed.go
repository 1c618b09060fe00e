package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	appModels "github.com/yigit/transcriptledger/internal/app/models"
	"github.com/yigit/transcriptledger/internal/ledger"
)

// GrantVerifiers grants VERIFIER to each configured address on behalf of the
// admin. Addresses already holding the role are left alone, so running it on
// every start writes nothing new.
func GrantVerifiers(ctx context.Context, registry *ledger.Registry, admin common.Address, verifiers []string, lgr zerolog.Logger) error {
	var finalErr error

	for _, v := range verifiers {
		addr, err := ledger.ParseIdentity(v)
		if err != nil {
			lgr.Error().Err(err).Str("verifier", v).Msg("Skipping invalid verifier address")
			finalErr = errors.Join(finalErr, err)
			continue
		}

		changed, err := registry.GrantRole(ctx, admin, appModels.RoleVerifier, addr)
		if err != nil {
			lgr.Error().Err(err).Str("verifier", addr.Hex()).Msg("Error granting verifier role")
			finalErr = errors.Join(finalErr, fmt.Errorf("grant verifier %s: %w", addr.Hex(), err))
			continue
		}
		if changed {
			lgr.Info().Str("verifier", addr.Hex()).Msg("Verifier role granted")
		}
	}

	return finalErr
}
