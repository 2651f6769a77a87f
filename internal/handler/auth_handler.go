package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/attendance-backend/internal/middleware"
	"github.com/classtrack/attendance-backend/internal/model"
	"github.com/classtrack/attendance-backend/internal/response"
	"github.com/classtrack/attendance-backend/internal/service"
	"github.com/classtrack/attendance-backend/internal/validator"
)

// AuthHandler handles login, logout, and profile endpoints for students and
// delegates.
type AuthHandler struct {
	authService *service.AuthService
	students    service.StudentStore
	delegates   service.DelegateStore
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, students service.StudentStore, delegates service.DelegateStore) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		students:    students,
		delegates:   delegates,
	}
}

// StudentLogin godoc
// POST /api/v1/auth/student/login
func (h *AuthHandler) StudentLogin(c *gin.Context) {
	var req model.StudentLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, student, err := h.authService.StudentLogin(c.Request.Context(), req.RegNumber, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Internal(c)
		return
	}

	response.Success(c, http.StatusOK, model.StudentLoginResponse{Token: token, Student: *student})
}

// DelegateLogin godoc
// POST /api/v1/auth/delegate/login
func (h *AuthHandler) DelegateLogin(c *gin.Context) {
	var req model.DelegateLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, delegate, err := h.authService.DelegateLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Internal(c)
		return
	}

	response.Success(c, http.StatusOK, model.DelegateLoginResponse{Token: token, Delegate: *delegate})
}

// StudentLogout godoc
// POST /api/v1/auth/student/logout
func (h *AuthHandler) StudentLogout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrNotAuthenticated)
		return
	}

	if err := h.authService.StudentLogout(c.Request.Context(), claims.UserID); err != nil {
		response.Internal(c)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// GetStudentProfile godoc
// GET /api/v1/auth/student/me
func (h *AuthHandler) GetStudentProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrNotAuthenticated)
		return
	}

	student, err := h.students.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, student)
}

// GetDelegateProfile godoc
// GET /api/v1/auth/delegate/me
func (h *AuthHandler) GetDelegateProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrNotAuthenticated)
		return
	}

	delegate, err := h.delegates.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, delegate)
}
