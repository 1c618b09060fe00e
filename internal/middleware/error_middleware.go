package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/transcriptledger/internal/app/models/dto"
	"github.com/yigit/transcriptledger/internal/ledger"
	"github.com/yigit/transcriptledger/internal/pkg/apperrors"
	"github.com/yigit/transcriptledger/internal/pkg/logger"
)

// HandleAPIError maps service errors onto status codes and writes the error
// envelope. Internal failures are logged and not echoed to the client.
func HandleAPIError(c *gin.Context, err error) {
	status, code := classify(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("request_id", RequestIDFrom(c)).
			Str("path", c.FullPath()).
			Msg("Unhandled API error")
		message = "Internal server error"
	}

	detail := dto.NewErrorDetail(code, message)
	var customErr *apperrors.CustomError
	if status != http.StatusInternalServerError && errors.As(err, &customErr) && customErr.Code != "" {
		detail.WithDetails(gin.H{"kind": customErr.Code})
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func classify(err error) (int, dto.ErrorCode) {
	switch {
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.ErrorCodeExpiredToken
	case errors.Is(err, apperrors.ErrTokenInvalid):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidToken
	case errors.Is(err, apperrors.ErrInvalidSignature):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidSignature
	case errors.Is(err, apperrors.ErrNonceNotFound):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidChallenge
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.ErrorCodeForbidden
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound
	case errors.Is(err, apperrors.ErrResourceAlreadyExists):
		return http.StatusConflict, dto.ErrorCodeResourceAlreadyExists
	case errors.Is(err, apperrors.ErrAlreadyVerified):
		return http.StatusConflict, dto.ErrorCodeAlreadyVerified
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.ErrorCodeValidationFailed
	case errors.Is(err, ledger.ErrJournalCorrupt):
		return http.StatusInternalServerError, dto.ErrorCodeDatabaseError
	case errors.Is(err, ledger.ErrJournalConflict):
		// another writer advanced the journal; the client may retry
		return http.StatusServiceUnavailable, dto.ErrorCodeDatabaseError
	default:
		return http.StatusInternalServerError, dto.ErrorCodeInternalServer
	}
}
