package controllers

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/yigit/transcriptledger/internal/app/models/dto"
	"github.com/yigit/transcriptledger/internal/middleware"
	"github.com/yigit/transcriptledger/internal/pkg/apperrors"
)

// parseIDParam reads a positive numeric path parameter, writing a 400 when it
// is malformed
func parseIDParam(ctx *gin.Context, name, label string) (uint64, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("Invalid "+label+" ID: must be a positive number"))
		return 0, false
	}
	return id, true
}

// requireCaller returns the authenticated caller or writes a 401
func requireCaller(ctx *gin.Context) (common.Address, bool) {
	caller, ok := middleware.CallerFrom(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return common.Address{}, false
	}
	return caller, true
}
