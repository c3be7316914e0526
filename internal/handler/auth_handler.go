package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/certifex/certifex-backend/internal/middleware"
	"github.com/certifex/certifex-backend/internal/model"
	"github.com/certifex/certifex-backend/internal/response"
	"github.com/certifex/certifex-backend/internal/service"
	"github.com/certifex/certifex-backend/internal/validator"
)

// AuthHandler handles login, registration and code redemption.
type AuthHandler struct {
	authService   *service.AuthService
	userService   *service.UserService
	accessService *service.AccessService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authService *service.AuthService,
	userService *service.UserService,
	accessService *service.AccessService,
) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		userService:   userService,
		accessService: accessService,
	}
}

// Login godoc
// POST /api/v1/auth/login
// Validates email + password and returns a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"user":  profile,
	})
}

// Register godoc
// POST /api/v1/auth/register
// Creates an account and returns its JWT immediately.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrIdentityTaken) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"token": token,
		"user":  profile,
	})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the profile of the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": profile})
}

// RedeemCode godoc
// POST /api/v1/auth/code
// Redeems a single-use access code and opens an exam session.
func (h *AuthHandler) RedeemCode(c *gin.Context) {
	var req model.RedeemCodeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	out, err := h.accessService.RedeemCode(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCodeInvalid):
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCode)
		case errors.Is(err, service.ErrSessionLive):
			response.Fail(c, http.StatusConflict, response.ErrSessionExists)
		case errors.Is(err, service.ErrExamHasNoContent):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		default:
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		}
		return
	}

	response.Success(c, http.StatusCreated, out)
}
