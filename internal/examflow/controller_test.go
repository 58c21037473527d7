package examflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tuwir2002/maligo-backend/internal/model"
)

// ─── Test fakes ────────────────────────────────────────────────────────

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memStore struct {
	mu      sync.Mutex
	drafts  map[uuid.UUID]string
	cleared bool
}

func newMemStore() *memStore {
	return &memStore{drafts: make(map[uuid.UUID]string)}
}

func (s *memStore) SaveDraft(_ context.Context, _ uuid.UUID, _ int, qid uuid.UUID, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[qid] = value
	return nil
}

func (s *memStore) LoadDrafts(_ context.Context, _ uuid.UUID, _ int) (map[uuid.UUID]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID]string, len(s.drafts))
	for k, v := range s.drafts {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) ClearDrafts(_ context.Context, _ uuid.UUID, _ int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts = make(map[uuid.UUID]string)
	s.cleared = true
	return nil
}

type fakeSubmitter struct {
	mu       sync.Mutex
	calls    int
	lastSent []model.AnswerSubmission
	fail     bool
}

func (f *fakeSubmitter) SubmitAnswers(_ context.Context, _ uuid.UUID, _ int, answers []model.AnswerSubmission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return errors.New("network unreachable")
	}
	f.lastSent = answers
	return nil
}

// ─── Fixtures ──────────────────────────────────────────────────────────

var (
	q1 = uuid.New()
	q2 = uuid.New()
)

func testPaper(now time.Time) model.ExamPaper {
	return model.ExamPaper{
		ExamID:          uuid.New(),
		CourseID:        uuid.New(),
		Title:           "UTS Algoritma",
		DurationMinutes: 30,
		StartTime:       now.Add(-time.Hour),
		EndTime:         now.Add(time.Hour),
		Questions: []model.QuestionForStudent{
			{ID: q1, Text: "Soal 1", Type: model.QuestionTypeMultipleChoice, OrderNum: 1},
			{ID: q2, Text: "Soal 2", Type: model.QuestionTypeMultipleChoice, OrderNum: 2},
		},
	}
}

func newTestController(t *testing.T, clock *fakeClock, store DraftStore, sub Submitter) *Controller {
	t.Helper()
	return New(Config{
		Paper:      testPaper(clock.Now()),
		StudentID:  7,
		StudentNIM: "2021001",
		Store:      store,
		Submitter:  sub,
		Clock:      clock,
		Log:        zerolog.Nop(),
	})
}

func startActive(t *testing.T, clock *fakeClock, store DraftStore, sub Submitter) *Controller {
	t.Helper()
	c := newTestController(t, clock, store, sub)
	require.NoError(t, c.Start(context.Background(), false, time.Time{}))
	require.Equal(t, StateActive, c.State())
	return c
}

// ─── Start ─────────────────────────────────────────────────────────────

func TestStartRejectsPriorSubmission(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := newTestController(t, clock, newMemStore(), &fakeSubmitter{})
	err := c.Start(context.Background(), true, time.Time{})
	require.ErrorIs(t, err, ErrAlreadySubmitted)
	require.Equal(t, StateLoading, c.State())
}

func TestStartRejectsOutsideWindow(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := newTestController(t, clock, newMemStore(), &fakeSubmitter{})
	clock.Advance(2 * time.Hour) // past EndTime
	err := c.Start(context.Background(), false, time.Time{})
	require.ErrorIs(t, err, ErrOutsideWindow)
}

func TestStartRestoresDrafts(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := newMemStore()
	store.drafts[q1] = "B"
	c := newTestController(t, clock, store, &fakeSubmitter{})
	require.NoError(t, c.Start(context.Background(), false, time.Time{}))
	require.Equal(t, map[uuid.UUID]string{q1: "B"}, c.Drafts())
}

func TestStartResumeDeductsElapsed(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := newTestController(t, clock, newMemStore(), &fakeSubmitter{})
	startedAt := clock.Now().Add(-10 * time.Minute)
	require.NoError(t, c.Start(context.Background(), false, startedAt))
	require.Equal(t, 20*60, c.RemainingSeconds())
}

func TestStartResumeAfterTimeoutForcesSubmit(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	sub := &fakeSubmitter{}
	c := newTestController(t, clock, newMemStore(), sub)
	startedAt := clock.Now().Add(-45 * time.Minute) // duration is 30m
	require.NoError(t, c.Start(context.Background(), false, startedAt))
	require.Equal(t, StateSubmitted, c.State())
	require.Equal(t, 1, sub.calls)
}

// ─── RecordAnswer ──────────────────────────────────────────────────────

func TestRecordAnswerPersistsDraft(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := newMemStore()
	c := startActive(t, clock, store, &fakeSubmitter{})

	require.NoError(t, c.RecordAnswer(context.Background(), q1, "C"))
	require.Equal(t, "C", store.drafts[q1])
}

func TestRecordAnswerRejectedWhenNotActive(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := newTestController(t, clock, newMemStore(), &fakeSubmitter{})
	err := c.RecordAnswer(context.Background(), q1, "A")
	require.ErrorIs(t, err, ErrNotActive)
}

func TestRecordAnswerUnknownQuestion(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := startActive(t, clock, newMemStore(), &fakeSubmitter{})
	err := c.RecordAnswer(context.Background(), uuid.New(), "A")
	require.ErrorIs(t, err, ErrUnknownQuestion)
}

// ─── Violations ────────────────────────────────────────────────────────

func TestViolationDebounceSameKind(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := startActive(t, clock, newMemStore(), &fakeSubmitter{})

	w, err := c.ReportViolation(context.Background(), model.ViolationTabSwitch, "")
	require.NoError(t, err)
	require.Equal(t, 1, w.Count)

	// Re-fire within 2 seconds: dropped, count unchanged.
	clock.Advance(500 * time.Millisecond)
	w, err = c.ReportViolation(context.Background(), model.ViolationTabSwitch, "")
	require.NoError(t, err)
	require.Nil(t, w)
	require.Equal(t, 1, c.ViolationCount())

	// A different kind within the window still counts.
	w, err = c.ReportViolation(context.Background(), model.ViolationRightClick, "")
	require.NoError(t, err)
	require.Equal(t, 2, w.Count)

	// Same kind after the window counts again.
	clock.Advance(3 * time.Second)
	w, err = c.ReportViolation(context.Background(), model.ViolationTabSwitch, "")
	require.NoError(t, err)
	require.True(t, w.ForcedSubmit)
}

func TestThirdViolationForcesSubmission(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	sub := &fakeSubmitter{}
	c := startActive(t, clock, newMemStore(), sub)

	for i, kind := range []model.ViolationKind{
		model.ViolationTabSwitch, model.ViolationTabSwitch, model.ViolationTabSwitch,
	} {
		clock.Advance(5 * time.Second) // beyond debounce spacing
		w, err := c.ReportViolation(context.Background(), kind, "")
		require.NoError(t, err)
		require.Equal(t, i+1, w.Count)
	}

	require.Equal(t, StateSubmitted, c.State())
	require.Equal(t, 1, sub.calls)
}

func TestViolationCountNeverExceedsThreshold(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := startActive(t, clock, newMemStore(), &fakeSubmitter{})

	for i := 0; i < 6; i++ {
		clock.Advance(5 * time.Second)
		_, err := c.ReportViolation(context.Background(), model.ViolationShortcut, "")
		if err != nil {
			require.ErrorIs(t, err, ErrNotActive) // session already submitted
		}
	}
	require.LessOrEqual(t, c.ViolationCount(), 3)
}

func TestViolationCountCappedWhenForcedSubmitFails(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	sub := &fakeSubmitter{fail: true}
	c := startActive(t, clock, newMemStore(), sub)

	for i := 0; i < 3; i++ {
		clock.Advance(5 * time.Second)
		w, err := c.ReportViolation(context.Background(), model.ViolationTabSwitch, "")
		require.Equal(t, i+1, w.Count)
		if i < 2 {
			require.NoError(t, err)
		} else {
			require.Error(t, err) // forced submit failed
			require.True(t, w.ForcedSubmit)
		}
	}
	require.Equal(t, StateActive, c.State())

	// Signals after the threshold never raise the count, but every one keeps
	// pressing for submission and lands in the history.
	clock.Advance(5 * time.Second)
	w, err := c.ReportViolation(context.Background(), model.ViolationTabSwitch, "")
	require.Error(t, err)
	require.Equal(t, 3, w.Count)
	require.Equal(t, 3, c.ViolationCount())
	require.Len(t, c.Violations(), 4)

	// Once the submitter recovers the pending forced submit goes through.
	sub.fail = false
	clock.Advance(5 * time.Second)
	w, err = c.ReportViolation(context.Background(), model.ViolationTabSwitch, "")
	require.NoError(t, err)
	require.Equal(t, 3, w.Count)
	require.Equal(t, StateSubmitted, c.State())
	require.Equal(t, 3, c.ViolationCount())
}

func TestViolationRejectedAfterSubmission(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := startActive(t, clock, newMemStore(), &fakeSubmitter{})
	require.NoError(t, c.RecordAnswer(context.Background(), q1, "A"))
	require.NoError(t, c.RecordAnswer(context.Background(), q2, "B"))
	require.NoError(t, c.Submit(context.Background()))

	_, err := c.ReportViolation(context.Background(), model.ViolationTabSwitch, "")
	require.ErrorIs(t, err, ErrNotActive)
}

// ─── Countdown ─────────────────────────────────────────────────────────

func TestTickCountsDownAndExpires(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	sub := &fakeSubmitter{}
	c := newTestController(t, clock, newMemStore(), sub)

	// Resume with 3 seconds left on the clock.
	startedAt := clock.Now().Add(-(30*time.Minute - 3*time.Second))
	require.NoError(t, c.Start(context.Background(), false, startedAt))
	require.Equal(t, 3, c.RemainingSeconds())

	ctx := context.Background()
	require.NoError(t, c.Tick(ctx))
	require.Equal(t, 2, c.RemainingSeconds())
	require.NoError(t, c.Tick(ctx))
	require.NoError(t, c.Tick(ctx))

	// Expiry submitted without any further ticks.
	require.Equal(t, StateSubmitted, c.State())
	require.Equal(t, 0, c.RemainingSeconds())
	require.Equal(t, 1, sub.calls)

	// Extra ticks after the terminal state are no-ops.
	require.NoError(t, c.Tick(ctx))
	require.Equal(t, 1, sub.calls)
}

func TestExpirySubmitFailureRetriesThroughSubmit(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := newMemStore()
	sub := &fakeSubmitter{fail: true}
	c := newTestController(t, clock, store, sub)

	startedAt := clock.Now().Add(-(30*time.Minute - time.Second))
	require.NoError(t, c.Start(context.Background(), false, startedAt))
	require.NoError(t, c.RecordAnswer(context.Background(), q1, "A"))

	ctx := context.Background()
	require.Error(t, c.Tick(ctx))
	require.Equal(t, StateExpired, c.State())
	require.Equal(t, 1, sub.calls)

	// Ticks are no-ops once expired; they must not re-attempt on their own.
	require.NoError(t, c.Tick(ctx))
	require.Equal(t, 1, sub.calls)

	// The session loop retries via Submit, which stays open in Expired.
	require.Error(t, c.Submit(ctx))
	require.Equal(t, StateExpired, c.State())
	require.Len(t, c.Drafts(), 1)

	sub.fail = false
	require.NoError(t, c.Submit(ctx))
	require.Equal(t, StateSubmitted, c.State())
	require.Equal(t, 3, sub.calls)
	require.True(t, store.cleared)
}

// ─── Submit ────────────────────────────────────────────────────────────

func TestSubmitGateRequiresAllAnswered(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := startActive(t, clock, newMemStore(), &fakeSubmitter{})

	require.NoError(t, c.RecordAnswer(context.Background(), q1, "A"))
	err := c.Submit(context.Background())
	require.ErrorIs(t, err, ErrSubmitGateClosed)
	require.False(t, c.CanSubmit())

	require.NoError(t, c.RecordAnswer(context.Background(), q2, "B"))
	require.True(t, c.CanSubmit())
	require.NoError(t, c.Submit(context.Background()))
	require.Equal(t, StateSubmitted, c.State())
}

func TestSubmitGateOpensUnderFiveMinutes(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	sub := &fakeSubmitter{}
	c := newTestController(t, clock, newMemStore(), sub)

	// 4 minutes remaining, only one of two questions answered.
	startedAt := clock.Now().Add(-26 * time.Minute)
	require.NoError(t, c.Start(context.Background(), false, startedAt))
	require.NoError(t, c.RecordAnswer(context.Background(), q1, "A"))

	require.NoError(t, c.Submit(context.Background()))
	require.Equal(t, StateSubmitted, c.State())
	// Only the answered question was sent.
	require.Len(t, sub.lastSent, 1)
	require.Equal(t, q1, sub.lastSent[0].QuestionRef)
	require.Equal(t, "2021001", sub.lastSent[0].StudentRef)
}

func TestSubmitIdempotent(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	sub := &fakeSubmitter{}
	c := startActive(t, clock, newMemStore(), sub)
	require.NoError(t, c.RecordAnswer(context.Background(), q1, "A"))
	require.NoError(t, c.RecordAnswer(context.Background(), q2, "B"))

	require.NoError(t, c.Submit(context.Background()))
	require.NoError(t, c.Submit(context.Background()))
	require.NoError(t, c.Submit(context.Background()))
	require.Equal(t, 1, sub.calls)
}

func TestSubmitFailurePreservesSession(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := newMemStore()
	sub := &fakeSubmitter{fail: true}
	c := startActive(t, clock, store, sub)
	require.NoError(t, c.RecordAnswer(context.Background(), q1, "A"))
	require.NoError(t, c.RecordAnswer(context.Background(), q2, "B"))

	err := c.Submit(context.Background())
	require.Error(t, err)
	require.Equal(t, StateActive, c.State())
	require.Len(t, c.Drafts(), 2) // answers retained for retry
	require.False(t, store.cleared)

	// Retry after the network recovers.
	sub.fail = false
	require.NoError(t, c.Submit(context.Background()))
	require.Equal(t, StateSubmitted, c.State())
	require.True(t, store.cleared)
	require.Equal(t, 2, sub.calls)
}
