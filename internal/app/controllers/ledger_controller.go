package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/transcriptledger/internal/app/models/dto"
	"github.com/yigit/transcriptledger/internal/app/services"
)

// LedgerController serves totals and liveness
type LedgerController struct {
	ledgerService services.LedgerService
}

// NewLedgerController creates a new LedgerController
func NewLedgerController(ledgerService services.LedgerService) *LedgerController {
	return &LedgerController{ledgerService: ledgerService}
}

// Stats returns ledger totals
// @Summary Ledger totals
// @Tags ledger
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.StatsResponse} "Totals"
// @Router /stats [get]
func (c *LedgerController) Stats(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(c.ledgerService.Stats(ctx.Request.Context()), ""))
}

// Health reports liveness and the journal head
// @Summary Health check
// @Tags ledger
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.HealthResponse} "Healthy"
// @Router /health [get]
func (c *LedgerController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(c.ledgerService.Health(ctx.Request.Context()), ""))
}
