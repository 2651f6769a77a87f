package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/attendance-backend/internal/response"
	"github.com/classtrack/attendance-backend/internal/service"
)

// CheckSingleDeviceSession validates the JWT's JTI against the registered
// login in Redis. If a newer login superseded this token, the request is
// rejected so a shared account cannot mark attendance from two devices.
func CheckSingleDeviceSession(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		// Only enforce for student tokens.
		if claims.TokenType != service.TokenTypeStudent {
			c.Next()
			return
		}

		if err := authService.ValidateStudentSession(c.Request.Context(), claims.UserID, claims.ID); err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			return
		}

		c.Next()
	}
}
