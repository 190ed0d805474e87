package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusvirtual/backend/internal/app/models/dto"
	"github.com/campusvirtual/backend/internal/app/services"
	"github.com/campusvirtual/backend/internal/middleware"
)

// AuthController handles registration, login and account verification
type AuthController struct {
	authService services.AuthService
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// Register creates a student account and sends a verification code.
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(ctx, &req) {
		return
	}

	user, err := c.authService.Register(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(user))
}

// Login authenticates by DNI and password.
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.Login(ctx, req.DNI, req.Password)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Verify confirms an account with the delivered code.
func (c *AuthController) Verify(ctx *gin.Context) {
	var req dto.VerifyRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.authService.Verify(ctx, req.DNI, req.Code); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Cuenta verificada con éxito"))
}

// ResendCode issues a fresh verification code.
func (c *AuthController) ResendCode(ctx *gin.Context) {
	var req dto.ResendCodeRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.authService.ResendCode(ctx, req.DNI); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Código de verificación reenviado"))
}
