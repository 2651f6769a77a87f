package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/classtrack/attendance-backend/internal/config"
	"github.com/classtrack/attendance-backend/internal/handler"
	"github.com/classtrack/attendance-backend/internal/middleware"
	"github.com/classtrack/attendance-backend/internal/response"
	"github.com/classtrack/attendance-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Session    *handler.SessionHandler
	Attendance *handler.AttendanceHandler
	WS         *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// Preflight OPTIONS requests are answered unconditionally by the CORS
	// middleware regardless of auth. If AllowedOrigins is set, restrict to
	// that list; otherwise allow all so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/student/login", handlers.Auth.StudentLogin)
		auth.POST("/delegate/login", handlers.Auth.DelegateLogin)

		// Authenticated profile routes
		auth.POST("/student/logout", middleware.RequireStudentJWT(authService), handlers.Auth.StudentLogout)
		auth.GET("/student/me", middleware.RequireStudentJWT(authService), handlers.Auth.GetStudentProfile)
		auth.GET("/delegate/me", middleware.RequireDelegateJWT(authService), handlers.Auth.GetDelegateProfile)
	}

	// ─── 2. Student Group (JWT + Single Device) ────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		studentAPI.GET("/sessions", handlers.Attendance.ListSessions)
		studentAPI.POST("/sessions/:session_id/mark", handlers.Attendance.Mark)
	}

	// ─── 3. Delegate Group (JWT) ───────────────────────────────────────
	delegateAPI := router.Group("/api/v1/delegate")
	delegateAPI.Use(middleware.RequireDelegateJWT(authService))
	{
		delegateAPI.GET("/courses", handlers.Session.ListCourses)
		delegateAPI.GET("/sessions", handlers.Session.ListSessions)
		delegateAPI.POST("/sessions", handlers.Session.CreateSession)
		delegateAPI.PUT("/sessions/:session_id", handlers.Session.RescheduleSession)
		delegateAPI.GET("/sessions/:session_id/roster", handlers.Session.GetRoster)
	}

	// ─── 4. WebSocket Group (Delegate WS Auth) ─────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireDelegateWSAuth(authService))
	{
		ws.GET("/delegate/sessions/:session_id/stream", handlers.WS.RosterStream)
	}

	return router
}
