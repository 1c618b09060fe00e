package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/yigit/transcriptledger/internal/pkg/apperrors"
)

// ChallengeMessage is the text a wallet signs to log in
func ChallengeMessage(addr common.Address, nonce string, issuedAt time.Time) string {
	return fmt.Sprintf("Sign in to Transcript Ledger\n\nAddress: %s\nNonce: %s\nIssued At: %s",
		addr.Hex(), nonce, issuedAt.UTC().Format(time.RFC3339))
}

// RecoverAddress returns the signer of an EIP-191 personal message.
// Signatures with a recovery id of 27/28 are accepted.
func RecoverAddress(message, signature string) (common.Address, error) {
	if !strings.HasPrefix(signature, "0x") {
		signature = "0x" + signature
	}
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidSignature, err)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: expected %d bytes, got %d", apperrors.ErrInvalidSignature, crypto.SignatureLength, len(sig))
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// VerifySignature checks that message was signed by addr
func VerifySignature(addr common.Address, message, signature string) error {
	signer, err := RecoverAddress(message, signature)
	if err != nil {
		return err
	}
	if signer != addr {
		return fmt.Errorf("%w: signed by %s", apperrors.ErrInvalidSignature, signer.Hex())
	}
	return nil
}
