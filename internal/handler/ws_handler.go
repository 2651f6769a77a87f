package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/classtrack/attendance-backend/internal/config"
	"github.com/classtrack/attendance-backend/internal/middleware"
	"github.com/classtrack/attendance-backend/internal/service"
	ws "github.com/classtrack/attendance-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams live roster events to delegates.
type WSHandler struct {
	rdb            *redis.Client
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:            rdb,
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// RosterStream godoc
// WS /ws/v1/delegate/sessions/:session_id/stream
// Relays the session's Redis roster channel: a mark or closure event means
// the roster changed and the client should re-fetch it.
func (h *WSHandler) RosterStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	// Ownership is checked before upgrading so an attacker cannot watch
	// another delegate's roster.
	if err := h.sessionService.VerifyOwnership(c.Request.Context(), claims.UserID, sessionID); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your session"})
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(raw)
	defer conn.Close()

	streamLog := h.log.With().
		Int("delegate_id", claims.UserID).
		Str("session_id", sessionID.String()).
		Logger()
	streamLog.Info().Msg("Delegate connected to roster stream")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sub := h.rdb.Subscribe(ctx, config.CacheKey.RosterChannel(sessionID.String()))
	defer sub.Close()

	// Reader goroutine: answers pings and cancels the stream when the
	// client goes away. Pong writes go through the shared write lock so
	// they cannot interleave with the relay loop's writes.
	go func() {
		defer cancel()
		for {
			var msg ws.RequestEnvelope
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					streamLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				_ = conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
			}
		}
	}()

	events := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			streamLog.Debug().Msg("Roster stream closed")
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			var evt ws.RosterEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				streamLog.Error().Err(err).Msg("Invalid roster event payload")
				continue
			}
			if err := conn.WriteTyped(evt); err != nil {
				streamLog.Debug().Err(err).Msg("Write failed, closing stream")
				return
			}
		}
	}
}
