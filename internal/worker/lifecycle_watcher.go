package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/classtrack/attendance-backend/internal/config"
	"github.com/classtrack/attendance-backend/internal/model"
	"github.com/classtrack/attendance-backend/internal/timeutil"
)

// SessionLister is the slice of session storage the watcher needs.
type SessionLister interface {
	ListEndedBetween(ctx context.Context, from, to time.Time) ([]model.Session, error)
}

// LifecycleWatcher polls for sessions crossing their end time and enqueues
// them for closure processing. Each process keeps a local seen-set and takes
// an advisory SETNX guard in Redis so a fleet of watchers mostly enqueues a
// session once; neither mechanism is load-bearing, because closure itself is
// idempotent.
type LifecycleWatcher struct {
	sessions SessionLister
	rdb      *redis.Client
	log      zerolog.Logger
	interval time.Duration
	lookback time.Duration
	now      timeutil.Clock
	seen     map[uuid.UUID]time.Time
}

// NewLifecycleWatcher creates a LifecycleWatcher.
func NewLifecycleWatcher(sessions SessionLister, rdb *redis.Client, cfg *config.Config, now timeutil.Clock, log zerolog.Logger) *LifecycleWatcher {
	return &LifecycleWatcher{
		sessions: sessions,
		rdb:      rdb,
		log:      log.With().Str("component", "lifecycle_watcher").Logger(),
		interval: cfg.WatchInterval,
		lookback: cfg.WatchLookback,
		now:      now,
		seen:     make(map[uuid.UUID]time.Time),
	}
}

// Start runs the polling loop until the context ends.
func (w *LifecycleWatcher) Start(ctx context.Context) {
	w.log.Info().
		Dur("interval", w.interval).
		Dur("lookback", w.lookback).
		Msg("LifecycleWatcher started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("LifecycleWatcher stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep re-derives status for recently ended sessions and enqueues every
// newly observed Open→Closed transition.
func (w *LifecycleWatcher) sweep(ctx context.Context) {
	now := w.now()

	ended, err := w.sessions.ListEndedBetween(ctx, now.Add(-w.lookback), now)
	if err != nil {
		w.log.Error().Err(err).Msg("List ended sessions failed")
		return
	}

	for i := range ended {
		sess := &ended[i]
		// Re-verify with the shared rule; the query window is only a hint.
		if sess.StatusAt(now) != model.SessionStatusClosed {
			continue
		}
		if _, dup := w.seen[sess.ID]; dup {
			continue
		}
		w.seen[sess.ID] = sess.EndsAt

		w.enqueue(ctx, sess.ID)
	}

	w.pruneSeen(now)
}

func (w *LifecycleWatcher) enqueue(ctx context.Context, sessionID uuid.UUID) {
	// Advisory cross-process dedup: first watcher to set the guard key
	// enqueues; losing the race just saves a redundant (harmless) closure.
	guardKey := config.CacheKey.ClosureGuardKey(sessionID.String())
	ok, err := w.rdb.SetNX(ctx, guardKey, 1, w.lookback).Result()
	if err != nil {
		w.log.Warn().Err(err).Msg("Closure guard failed, enqueueing anyway")
	} else if !ok {
		return
	}

	if err := w.rdb.RPush(ctx, config.WorkerKey.ClosureQueue, sessionID.String()).Err(); err != nil {
		w.log.Error().Err(err).
			Str("session_id", sessionID.String()).
			Msg("Enqueue closure failed")
		// Drop the local seen entry so the next sweep retries.
		delete(w.seen, sessionID)
		return
	}

	w.log.Info().
		Str("session_id", sessionID.String()).
		Msg("Session crossed end time, closure enqueued")
}

// pruneSeen drops entries older than the lookback so the set stays bounded.
func (w *LifecycleWatcher) pruneSeen(now time.Time) {
	cutoff := now.Add(-w.lookback)
	for id, endedAt := range w.seen {
		if endedAt.Before(cutoff) {
			delete(w.seen, id)
		}
	}
}
