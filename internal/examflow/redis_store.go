package examflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tuwir2002/maligo-backend/internal/config"
)

// RedisDraftStore keeps draft answers in a Redis hash per (student, exam) and
// mirrors every write onto the persistence queue, where the draft worker
// UPSERTs it into PostgreSQL. The hash is the fast read path for reloads; the
// queue is the durability net behind it.
type RedisDraftStore struct {
	rdb *redis.Client
}

// NewRedisDraftStore creates a RedisDraftStore.
func NewRedisDraftStore(rdb *redis.Client) *RedisDraftStore {
	return &RedisDraftStore{rdb: rdb}
}

// draftQueuePayload is the wire shape consumed by the draft worker.
type draftQueuePayload struct {
	StudentID  int    `json:"student_id"`
	ExamID     string `json:"exam_id"`
	QuestionID string `json:"question_id"`
	Value      string `json:"value"`
}

func (s *RedisDraftStore) SaveDraft(ctx context.Context, examID uuid.UUID, studentID int, questionID uuid.UUID, value string) error {
	key := config.CacheKey.DraftAnswersKey(examID.String(), studentID)
	if err := s.rdb.HSet(ctx, key, questionID.String(), value).Err(); err != nil {
		return fmt.Errorf("hset draft: %w", err)
	}

	payload, _ := json.Marshal(draftQueuePayload{
		StudentID:  studentID,
		ExamID:     examID.String(),
		QuestionID: questionID.String(),
		Value:      value,
	})
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistDraftsQueue, payload).Err(); err != nil {
		// The hash already holds the draft; a failed queue push only delays
		// the PostgreSQL copy.
		return nil
	}
	return nil
}

func (s *RedisDraftStore) LoadDrafts(ctx context.Context, examID uuid.UUID, studentID int) (map[uuid.UUID]string, error) {
	key := config.CacheKey.DraftAnswersKey(examID.String(), studentID)
	raw, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall drafts: %w", err)
	}

	drafts := make(map[uuid.UUID]string, len(raw))
	for field, value := range raw {
		qid, err := uuid.Parse(field)
		if err != nil {
			continue // skip corrupt fields rather than failing the restore
		}
		drafts[qid] = value
	}
	return drafts, nil
}

func (s *RedisDraftStore) ClearDrafts(ctx context.Context, examID uuid.UUID, studentID int) error {
	key := config.CacheKey.DraftAnswersKey(examID.String(), studentID)
	return s.rdb.Del(ctx, key).Err()
}
