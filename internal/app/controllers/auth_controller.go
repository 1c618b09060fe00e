package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/transcriptledger/internal/app/models/dto"
	"github.com/yigit/transcriptledger/internal/app/services"
	"github.com/yigit/transcriptledger/internal/middleware"
)

// AuthController handles wallet login
type AuthController struct {
	authService services.AuthService
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// Challenge issues a login challenge
// @Summary Request a login challenge
// @Description Returns a single-use message that the wallet must sign with personal_sign
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ChallengeRequest true "Wallet address"
// @Success 200 {object} dto.APIResponse{data=dto.ChallengeResponse} "Challenge issued"
// @Failure 400 {object} dto.ErrorResponse "Invalid address"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/challenge [post]
func (c *AuthController) Challenge(ctx *gin.Context) {
	var req dto.ChallengeRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	resp, err := c.authService.Challenge(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Sign the message to log in"))
}

// Login exchanges a signed challenge for an access token
// @Summary Log in with a signed challenge
// @Description Verifies the EIP-191 signature over the pending challenge and returns a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Address and signature"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse} "Logged in"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid signature or no pending challenge"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Login successful"))
}
