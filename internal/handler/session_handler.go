package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classtrack/attendance-backend/internal/middleware"
	"github.com/classtrack/attendance-backend/internal/model"
	"github.com/classtrack/attendance-backend/internal/response"
	"github.com/classtrack/attendance-backend/internal/service"
	"github.com/classtrack/attendance-backend/internal/validator"
)

// SessionHandler handles delegate-facing session scheduling and roster
// endpoints.
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// CreateSession godoc
// POST /api/v1/delegate/sessions
// Schedules a session; validation errors come back as distinct codes so the
// caller can correct input without guessing.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrNotAuthenticated)
		return
	}

	var req model.CreateSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.sessionService.CreateSession(c.Request.Context(), claims.UserID, req)
	if err != nil {
		failScheduling(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": sess})
}

// RescheduleSession godoc
// PUT /api/v1/delegate/sessions/:session_id
func (h *SessionHandler) RescheduleSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrNotAuthenticated)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.RescheduleSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.sessionService.RescheduleSession(c.Request.Context(), claims.UserID, sessionID, req)
	if err != nil {
		failScheduling(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": sess})
}

// ListSessions godoc
// GET /api/v1/delegate/sessions
// Returns the delegate's sessions in {scheduled, open, closed} buckets.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrNotAuthenticated)
		return
	}

	buckets, err := h.sessionService.ListForDelegate(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Internal(c)
		return
	}
	response.Success(c, http.StatusOK, buckets)
}

// ListCourses godoc
// GET /api/v1/delegate/courses
// Returns the course catalog so delegates can pick a course when scheduling.
func (h *SessionHandler) ListCourses(c *gin.Context) {
	courses, err := h.sessionService.ListCourses(c.Request.Context())
	if err != nil {
		response.Internal(c)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// GetRoster godoc
// GET /api/v1/delegate/sessions/:session_id/roster
func (h *SessionHandler) GetRoster(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrNotAuthenticated)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	roster, err := h.sessionService.Roster(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		case errors.Is(err, service.ErrNotSessionOwner):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		default:
			response.Internal(c)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"roster": roster})
}

// failScheduling maps scheduling errors onto their API codes.
func failScheduling(c *gin.Context, err error) {
	var overlap *service.OverlapError
	switch {
	case errors.Is(err, service.ErrInvalidCivilTime):
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
	case errors.Is(err, service.ErrEndBeforeStart):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidTimeRange)
	case errors.Is(err, service.ErrStartInPast):
		response.Fail(c, http.StatusBadRequest, response.ErrStartInPast)
	case errors.Is(err, service.ErrCourseNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrCourseNotFound)
	case errors.As(err, &overlap):
		response.Fail(c, http.StatusConflict, response.ErrSessionOverlap)
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	case errors.Is(err, service.ErrNotSessionOwner):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrNotReschedulable):
		response.Fail(c, http.StatusConflict, response.ErrNotReschedulable)
	default:
		response.Internal(c)
	}
}
