package examflow

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/tuwir2002/maligo-backend/internal/config"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRedisDraftStoreRoundTrip(t *testing.T) {
	rdb := newTestRedis(t)
	store := NewRedisDraftStore(rdb)
	ctx := context.Background()

	examID := uuid.New()
	qa, qb := uuid.New(), uuid.New()

	require.NoError(t, store.SaveDraft(ctx, examID, 7, qa, "A"))
	require.NoError(t, store.SaveDraft(ctx, examID, 7, qb, "jawaban esai"))
	// Overwrite keeps the latest value.
	require.NoError(t, store.SaveDraft(ctx, examID, 7, qa, "C"))

	drafts, err := store.LoadDrafts(ctx, examID, 7)
	require.NoError(t, err)
	require.Equal(t, map[uuid.UUID]string{qa: "C", qb: "jawaban esai"}, drafts)

	// Every save also lands on the persistence queue.
	queued, err := rdb.LLen(ctx, config.WorkerKey.PersistDraftsQueue).Result()
	require.NoError(t, err)
	require.EqualValues(t, 3, queued)
}

func TestRedisDraftStoreIsolatesStudents(t *testing.T) {
	store := NewRedisDraftStore(newTestRedis(t))
	ctx := context.Background()

	examID := uuid.New()
	qid := uuid.New()
	require.NoError(t, store.SaveDraft(ctx, examID, 1, qid, "A"))
	require.NoError(t, store.SaveDraft(ctx, examID, 2, qid, "B"))

	drafts, err := store.LoadDrafts(ctx, examID, 1)
	require.NoError(t, err)
	require.Equal(t, "A", drafts[qid])
}

func TestRedisDraftStoreClear(t *testing.T) {
	store := NewRedisDraftStore(newTestRedis(t))
	ctx := context.Background()

	examID := uuid.New()
	require.NoError(t, store.SaveDraft(ctx, examID, 7, uuid.New(), "A"))
	require.NoError(t, store.ClearDrafts(ctx, examID, 7))

	drafts, err := store.LoadDrafts(ctx, examID, 7)
	require.NoError(t, err)
	require.Empty(t, drafts)
}

func TestRedisDraftStoreSkipsCorruptFields(t *testing.T) {
	rdb := newTestRedis(t)
	store := NewRedisDraftStore(rdb)
	ctx := context.Background()

	examID := uuid.New()
	qid := uuid.New()
	require.NoError(t, store.SaveDraft(ctx, examID, 7, qid, "A"))

	key := config.CacheKey.DraftAnswersKey(examID.String(), 7)
	require.NoError(t, rdb.HSet(ctx, key, "not-a-uuid", "junk").Err())

	drafts, err := store.LoadDrafts(ctx, examID, 7)
	require.NoError(t, err)
	require.Equal(t, map[uuid.UUID]string{qid: "A"}, drafts)
}
