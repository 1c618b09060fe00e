package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/transcriptledger/internal/app/models/dto"
	"github.com/yigit/transcriptledger/internal/app/services"
	"github.com/yigit/transcriptledger/internal/middleware"
)

// RoleController handles role administration
type RoleController struct {
	accessService services.AccessService
}

// NewRoleController creates a new RoleController
func NewRoleController(accessService services.AccessService) *RoleController {
	return &RoleController{accessService: accessService}
}

// GrantRole grants a role
// @Summary Grant a role
// @Description Admin only. Granting a role already held changes nothing
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RoleChangeRequest true "Role and address"
// @Success 200 {object} dto.APIResponse{data=dto.RoleChangeResponse} "Role granted"
// @Failure 400 {object} dto.ErrorResponse "Invalid role or address"
// @Failure 403 {object} dto.ErrorResponse "Caller is not an admin"
// @Router /roles/grant [post]
func (c *RoleController) GrantRole(ctx *gin.Context) {
	caller, ok := requireCaller(ctx)
	if !ok {
		return
	}
	var req dto.RoleChangeRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	resp, err := c.accessService.GrantRole(ctx.Request.Context(), caller, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// RevokeRole revokes a role
// @Summary Revoke a role
// @Description Admin only. The last admin cannot be revoked
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RoleChangeRequest true "Role and address"
// @Success 200 {object} dto.APIResponse{data=dto.RoleChangeResponse} "Role revoked"
// @Failure 400 {object} dto.ErrorResponse "Invalid role or last admin"
// @Failure 403 {object} dto.ErrorResponse "Caller is not an admin"
// @Router /roles/revoke [post]
func (c *RoleController) RevokeRole(ctx *gin.Context) {
	caller, ok := requireCaller(ctx)
	if !ok {
		return
	}
	var req dto.RoleChangeRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	resp, err := c.accessService.RevokeRole(ctx.Request.Context(), caller, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// GetRoles lists the roles of an address
// @Summary List roles of an address
// @Tags roles
// @Produce json
// @Param address path string true "Account address"
// @Success 200 {object} dto.APIResponse{data=dto.RolesResponse} "Roles held"
// @Failure 400 {object} dto.ErrorResponse "Invalid address"
// @Router /roles/{address} [get]
func (c *RoleController) GetRoles(ctx *gin.Context) {
	resp, err := c.accessService.GetRoles(ctx.Request.Context(), ctx.Param("address"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}
