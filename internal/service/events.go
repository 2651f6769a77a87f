package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/classtrack/attendance-backend/internal/config"
	ws "github.com/classtrack/attendance-backend/internal/websocket"
)

// RosterNotifier broadcasts roster changes to live observers. Delivery is
// best effort: subscribers treat events as a hint to re-query, so losing one
// never corrupts state.
type RosterNotifier interface {
	AttendanceMarked(ctx context.Context, sessionID uuid.UUID, studentID int, status string, markedAt time.Time)
	SessionClosed(ctx context.Context, sessionID uuid.UUID, absentCount int64)
}

// redisRosterNotifier publishes roster events on the per-session Redis
// PubSub channel consumed by the WebSocket stream handler.
type redisRosterNotifier struct {
	rdb *redis.Client
}

// NewRosterNotifier creates a Redis-backed RosterNotifier.
func NewRosterNotifier(rdb *redis.Client) RosterNotifier {
	return &redisRosterNotifier{rdb: rdb}
}

func (n *redisRosterNotifier) AttendanceMarked(ctx context.Context, sessionID uuid.UUID, studentID int, status string, markedAt time.Time) {
	n.publish(ctx, sessionID, ws.RosterEvent{
		Event:     ws.EventAttendanceMarked,
		SessionID: sessionID.String(),
		StudentID: studentID,
		Status:    status,
		MarkedAt:  markedAt,
	})
}

func (n *redisRosterNotifier) SessionClosed(ctx context.Context, sessionID uuid.UUID, absentCount int64) {
	n.publish(ctx, sessionID, ws.RosterEvent{
		Event:       ws.EventSessionClosed,
		SessionID:   sessionID.String(),
		AbsentCount: absentCount,
	})
}

func (n *redisRosterNotifier) publish(ctx context.Context, sessionID uuid.UUID, evt ws.RosterEvent) {
	raw, err := json.Marshal(evt)
	if err != nil {
		return
	}
	_ = n.rdb.Publish(ctx, config.CacheKey.RosterChannel(sessionID.String()), raw).Err()
}

// NopRosterNotifier discards events. Used where no live observers exist
// (tests, one-shot commands).
type NopRosterNotifier struct{}

func (NopRosterNotifier) AttendanceMarked(context.Context, uuid.UUID, int, string, time.Time) {}
func (NopRosterNotifier) SessionClosed(context.Context, uuid.UUID, int64)                    {}
