package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tuwir2002/maligo-backend/internal/config"
	"github.com/tuwir2002/maligo-backend/internal/service"
)

// RekapWorker consumes the recompute queue and rebuilds rekapitulasi rows.
// Recomputes are idempotent, so at-least-once delivery is fine: a job that
// fails goes back on the queue and a duplicate just rewrites the same row.
type RekapWorker struct {
	rekapService *service.RekapService
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewRekapWorker creates a new RekapWorker.
func NewRekapWorker(rekapService *service.RekapService, rdb *redis.Client, log zerolog.Logger) *RekapWorker {
	return &RekapWorker{
		rekapService: rekapService,
		rdb:          rdb,
		log:          log.With().Str("component", "rekap_worker").Logger(),
	}
}

type rekapPayload struct {
	StudentID int    `json:"student_id"`
	CourseID  string `json:"course_id"`
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *RekapWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *RekapWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.RecomputeRekapQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var payload rekapPayload
	if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	courseID, err := uuid.Parse(payload.CourseID)
	if err != nil {
		w.log.Error().Str("course_id", payload.CourseID).Msg("Dropping job with invalid course id")
		return
	}

	if err := w.rekapService.Recompute(ctx, payload.StudentID, courseID); err != nil {
		w.log.Error().Err(err).
			Int("student_id", payload.StudentID).
			Str("course_id", payload.CourseID).
			Msg("Recompute failed, retrying in 5s")
		w.rdb.RPush(ctx, config.WorkerKey.RecomputeRekapQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}
