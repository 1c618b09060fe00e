package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/transcriptledger/internal/app/models"
	"github.com/yigit/transcriptledger/internal/app/models/dto"
	"github.com/yigit/transcriptledger/internal/pkg/auth"
	"github.com/yigit/transcriptledger/internal/pkg/noncestore"
)

// RoleReader exposes the roles an address currently holds
type RoleReader interface {
	RolesOf(id common.Address) []models.Role
}

// AuthService handles wallet login
type AuthService interface {
	Challenge(ctx context.Context, req *dto.ChallengeRequest) (*dto.ChallengeResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
}

type authServiceImpl struct {
	nonces     noncestore.Store
	jwtService *auth.JWTService
	roles      RoleReader
	nonceTTL   time.Duration
	now        func() time.Time
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	nonces noncestore.Store,
	jwtService *auth.JWTService,
	roles RoleReader,
	nonceTTL time.Duration,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		nonces:     nonces,
		jwtService: jwtService,
		roles:      roles,
		nonceTTL:   nonceTTL,
		now:        time.Now,
		logger:     logger,
	}
}

// Challenge issues a single-use message for the address to sign
func (s *authServiceImpl) Challenge(ctx context.Context, req *dto.ChallengeRequest) (*dto.ChallengeResponse, error) {
	addr, err := parseAddress("address", req.Address)
	if err != nil {
		return nil, err
	}

	issuedAt := s.now().UTC()
	message := auth.ChallengeMessage(addr, uuid.NewString(), issuedAt)
	if err := s.nonces.Put(ctx, addr, message, s.nonceTTL); err != nil {
		s.logger.Error().Err(err).Str("address", addr.Hex()).Msg("Failed to store login challenge")
		return nil, fmt.Errorf("error storing login challenge: %w", err)
	}

	return &dto.ChallengeResponse{
		Address:   addr.Hex(),
		Message:   message,
		ExpiresAt: issuedAt.Add(s.nonceTTL),
	}, nil
}

// Login consumes the pending challenge and checks its signature. The
// challenge is spent even when the signature is wrong.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	addr, err := parseAddress("address", req.Address)
	if err != nil {
		return nil, err
	}

	message, err := s.nonces.Take(ctx, addr)
	if err != nil {
		logFailure(s.logger, "login", err)
		return nil, err
	}

	if err := auth.VerifySignature(addr, message, req.Signature); err != nil {
		s.logger.Warn().Err(err).Str("address", addr.Hex()).Msg("Login signature rejected")
		return nil, err
	}

	token, expiresIn, err := s.jwtService.GenerateAccessToken(addr)
	if err != nil {
		s.logger.Error().Err(err).Str("address", addr.Hex()).Msg("Failed to generate access token")
		return nil, fmt.Errorf("error generating access token: %w", err)
	}

	roles := s.roles.RolesOf(addr)
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}

	s.logger.Info().Str("address", addr.Hex()).Strs("roles", names).Msg("Wallet logged in")
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		Address:     addr.Hex(),
		Roles:       names,
	}, nil
}
