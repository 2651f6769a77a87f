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

// AttendanceHandler handles student-facing endpoints: session buckets and
// the token-gated mark operation.
type AttendanceHandler struct {
	sessionService    *service.SessionService
	attendanceService *service.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(sessionService *service.SessionService, attendanceService *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{
		sessionService:    sessionService,
		attendanceService: attendanceService,
	}
}

// ListSessions godoc
// GET /api/v1/student/sessions
// Returns the student's sessions in {scheduled, open, closed} buckets,
// each annotated with whether attendance is already marked.
func (h *AttendanceHandler) ListSessions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrNotAuthenticated)
		return
	}

	buckets, err := h.sessionService.ListForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Internal(c)
		return
	}
	response.Success(c, http.StatusOK, buckets)
}

// Mark godoc
// POST /api/v1/student/sessions/:session_id/mark
// Verifies the per-session token and records attendance. Idempotent from
// the caller's perspective: a retry after success answers ALREADY_MARKED.
func (h *AttendanceHandler) Mark(c *gin.Context) {
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

	var req model.MarkAttendanceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	rec, err := h.attendanceService.Mark(c.Request.Context(), sessionID, claims.UserID, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			response.Fail(c, http.StatusBadRequest, response.ErrSessionNotFound)
		case errors.Is(err, service.ErrInvalidToken):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidToken)
		case errors.Is(err, service.ErrSessionExpired):
			response.Fail(c, http.StatusBadRequest, response.ErrSessionExpired)
		case errors.Is(err, service.ErrSessionNotOpen):
			response.Fail(c, http.StatusBadRequest, response.ErrSessionNotOpen)
		case errors.Is(err, service.ErrNotEnrolled):
			response.Fail(c, http.StatusBadRequest, response.ErrNotEnrolled)
		case errors.Is(err, service.ErrAlreadyMarked):
			response.Fail(c, http.StatusBadRequest, response.ErrAlreadyMarked)
		default:
			response.Internal(c)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"attendance_id": rec.ID,
		"status":        rec.Status,
		"timestamp":     rec.MarkedAt,
	})
}
