package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/transcriptledger/internal/app/models/dto"
	"github.com/yigit/transcriptledger/internal/app/services"
	"github.com/yigit/transcriptledger/internal/middleware"
	"github.com/yigit/transcriptledger/internal/pkg/helpers"
)

// InstitutionController handles institution endpoints
type InstitutionController struct {
	institutionService services.InstitutionService
}

// NewInstitutionController creates a new InstitutionController
func NewInstitutionController(institutionService services.InstitutionService) *InstitutionController {
	return &InstitutionController{institutionService: institutionService}
}

// RegisterInstitution registers an institution
// @Summary Register an institution
// @Description Admin only. Registers an institution and grants its address the INSTITUTION role
// @Tags institutions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RegisterInstitutionRequest true "Institution information"
// @Success 201 {object} dto.APIResponse{data=dto.InstitutionCreatedResponse} "Institution registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Caller is not an admin"
// @Failure 409 {object} dto.ErrorResponse "Institution already registered"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /institutions [post]
func (c *InstitutionController) RegisterInstitution(ctx *gin.Context) {
	caller, ok := requireCaller(ctx)
	if !ok {
		return
	}
	var req dto.RegisterInstitutionRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	id, err := c.institutionService.RegisterInstitution(ctx.Request.Context(), caller, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.InstitutionCreatedResponse{ID: id}, "Institution registered successfully"))
}

// DeactivateInstitution deactivates an institution
// @Summary Deactivate an institution
// @Description Admin only. The institution keeps its records but loses the INSTITUTION role
// @Tags institutions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Institution ID" minimum(1)
// @Success 200 {object} dto.APIResponse "Institution deactivated"
// @Failure 400 {object} dto.ErrorResponse "Invalid ID or already inactive"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Caller is not an admin"
// @Failure 404 {object} dto.ErrorResponse "Institution not found"
// @Router /institutions/{id}/deactivate [post]
func (c *InstitutionController) DeactivateInstitution(ctx *gin.Context) {
	caller, ok := requireCaller(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "institution")
	if !ok {
		return
	}

	if err := c.institutionService.DeactivateInstitution(ctx.Request.Context(), caller, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Institution deactivated successfully"))
}

// GetInstitution retrieves an institution by ID
// @Summary Get institution details
// @Tags institutions
// @Produce json
// @Param id path int true "Institution ID" minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Institution} "Institution retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid institution ID"
// @Failure 404 {object} dto.ErrorResponse "Institution not found"
// @Router /institutions/{id} [get]
func (c *InstitutionController) GetInstitution(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "institution")
	if !ok {
		return
	}

	inst, err := c.institutionService.GetInstitution(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(inst, ""))
}

// ListInstitutions lists institutions page by page
// @Summary List institutions
// @Tags institutions
// @Produce json
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.InstitutionListResponse} "Institutions retrieved"
// @Router /institutions [get]
func (c *InstitutionController) ListInstitutions(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	resp, err := c.institutionService.ListInstitutions(ctx.Request.Context(), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}
