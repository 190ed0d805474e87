package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusvirtual/backend/internal/app/models"
	"github.com/campusvirtual/backend/internal/app/models/dto"
	"github.com/campusvirtual/backend/internal/app/services"
	"github.com/campusvirtual/backend/internal/middleware"
	"github.com/campusvirtual/backend/internal/pkg/apperrors"
	"github.com/campusvirtual/backend/internal/pkg/helpers"
)

// UserController handles user administration and profile operations
type UserController struct {
	userService services.UserService
}

// NewUserController creates a new UserController
func NewUserController(userService services.UserService) *UserController {
	return &UserController{userService: userService}
}

// GetAllUsers lists users, optionally filtered by role.
func (c *UserController) GetAllUsers(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	role := models.RoleType(ctx.Query("role"))

	users, total, err := c.userService.GetAllUsers(ctx, role, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.NewSuccessResponse(gin.H{
		"users":      users,
		"pagination": helpers.NewPaginationInfo(total, page, size),
	})
	ctx.JSON(http.StatusOK, resp)
}

// GetUserByID retrieves a single user. Students may only read themselves.
func (c *UserController) GetUserByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if middleware.CallerRole(ctx) == models.RoleStudent && middleware.CallerID(ctx) != id {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	user, err := c.userService.GetUserByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user))
}

// GetProfile returns the caller's own account.
func (c *UserController) GetProfile(ctx *gin.Context) {
	user, err := c.userService.GetUserByID(ctx, middleware.CallerID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user))
}

// UpdateUser updates profile fields. Non-admins may only edit themselves.
func (c *UserController) UpdateUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if middleware.CallerRole(ctx) != models.RoleAdmin && middleware.CallerID(ctx) != id {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	var req dto.UpdateUserRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.userService.UpdateUser(ctx, id, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Usuario actualizado"))
}

// UpdateRole changes a user's role.
func (c *UserController) UpdateRole(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateRoleRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.userService.UpdateRole(ctx, id, models.RoleType(req.Role)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Rol actualizado"))
}

// DeleteUser removes an account.
func (c *UserController) DeleteUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.userService.DeleteUser(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Usuario eliminado"))
}

// UpdateProfileImage stores a new profile picture for the caller.
func (c *UserController) UpdateProfileImage(ctx *gin.Context) {
	file, err := ctx.FormFile("image")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Se requiere una imagen")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	url, err := c.userService.UpdateProfileImage(ctx, middleware.CallerID(ctx), file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"profileImageUrl": url}))
}
