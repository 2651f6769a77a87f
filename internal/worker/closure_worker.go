package worker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/classtrack/attendance-backend/internal/config"
	"github.com/classtrack/attendance-backend/internal/service"
)

const closurePollTimeout = 1 * time.Second

// ClosureWorker consumes session IDs from the closure queue and runs
// absence backfill for each. Processing is idempotent, so a session ID
// appearing twice on the queue is harmless.
type ClosureWorker struct {
	closure *service.ClosureService
	rdb     *redis.Client
	log     zerolog.Logger
}

// NewClosureWorker creates a ClosureWorker.
func NewClosureWorker(closure *service.ClosureService, rdb *redis.Client, log zerolog.Logger) *ClosureWorker {
	return &ClosureWorker{
		closure: closure,
		rdb:     rdb,
		log:     log.With().Str("component", "closure_worker").Logger(),
	}
}

// Start runs the consumer loop until the context ends.
func (w *ClosureWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ClosureWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("ClosureWorker stopped")
			return
		default:
		}

		result, err := w.rdb.BLPop(ctx, closurePollTimeout, config.WorkerKey.ClosureQueue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			w.log.Error().Err(err).Msg("Closure queue pop failed")
			time.Sleep(closurePollTimeout)
			continue
		}
		if len(result) < 2 {
			continue
		}

		w.process(ctx, result[1])
	}
}

func (w *ClosureWorker) process(ctx context.Context, raw string) {
	sessionID, err := uuid.Parse(raw)
	if err != nil {
		w.log.Warn().Str("payload", raw).Msg("Discarding malformed queue entry")
		return
	}

	log := w.log.With().Str("session_id", sessionID.String()).Logger()

	absent, err := w.closure.ProcessClosure(ctx, sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotClosed) {
			// Premature enqueue; the watcher will pick it up again.
			log.Warn().Msg("Session not yet closed, skipping")
			return
		}
		log.Error().Err(err).Msg("Closure processing failed, requeueing")
		if rqErr := w.rdb.RPush(ctx, config.WorkerKey.ClosureQueue, raw).Err(); rqErr != nil {
			log.Error().Err(rqErr).Msg("Requeue failed, closure lost until next sweep")
		}
		return
	}

	log.Info().Int64("absent_count", absent).Msg("Session closure processed")
}
