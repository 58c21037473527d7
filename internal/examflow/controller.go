package examflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tuwir2002/maligo-backend/internal/model"
)

const (
	// DefaultMaxViolations forces submission once reached.
	DefaultMaxViolations = 3
	// DefaultDebounceWindow drops a same-kind violation re-fired within it.
	DefaultDebounceWindow = 2 * time.Second
	// DefaultSubmitGateSeconds allows a partial submit once the remaining
	// time drops below it.
	DefaultSubmitGateSeconds = 300
)

// Config assembles a Controller. Paper, StudentID, StudentNIM, Store and
// Submitter are required; the rest default.
type Config struct {
	Paper      model.ExamPaper
	StudentID  int
	StudentNIM string

	Store     DraftStore
	Submitter Submitter
	Clock     Clock

	MaxViolations     int
	DebounceWindow    time.Duration
	SubmitGateSeconds int

	Log zerolog.Logger
}

// Controller is the per-(exam, student) session state machine. All methods
// are safe for concurrent use; the mutex serializes the ticker goroutine and
// request handlers the same way a browser event loop would interleave them.
type Controller struct {
	mu sync.Mutex

	paper      model.ExamPaper
	studentID  int
	studentNIM string
	questions  map[uuid.UUID]struct{}

	store     DraftStore
	submitter Submitter
	clock     Clock
	log       zerolog.Logger

	maxViolations  int
	debounceWindow time.Duration
	gateSeconds    int

	state          State
	startedAt      time.Time
	remaining      int // seconds
	drafts         map[uuid.UUID]string
	violations     []Violation
	violationCount int
	lastByKind     map[model.ViolationKind]time.Time
}

// New creates a Controller in the Loading state.
func New(cfg Config) *Controller {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock
	}
	if cfg.MaxViolations <= 0 {
		cfg.MaxViolations = DefaultMaxViolations
	}
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = DefaultDebounceWindow
	}
	if cfg.SubmitGateSeconds <= 0 {
		cfg.SubmitGateSeconds = DefaultSubmitGateSeconds
	}

	questions := make(map[uuid.UUID]struct{}, len(cfg.Paper.Questions))
	for _, q := range cfg.Paper.Questions {
		questions[q.ID] = struct{}{}
	}

	return &Controller{
		paper:          cfg.Paper,
		studentID:      cfg.StudentID,
		studentNIM:     cfg.StudentNIM,
		questions:      questions,
		store:          cfg.Store,
		submitter:      cfg.Submitter,
		clock:          cfg.Clock,
		log:            cfg.Log.With().Str("component", "examflow").Str("exam_id", cfg.Paper.ExamID.String()).Int("student_id", cfg.StudentID).Logger(),
		maxViolations:  cfg.MaxViolations,
		debounceWindow: cfg.DebounceWindow,
		gateSeconds:    cfg.SubmitGateSeconds,
		state:          StateLoading,
		drafts:         make(map[uuid.UUID]string),
		lastByKind:     make(map[model.ViolationKind]time.Time),
	}
}

// Start activates the session. priorSubmission marks a student who already
// submitted this exam — re-entry is terminal and rejected. startedAt carries
// the original attempt start when resuming (zero for a fresh attempt); the
// countdown resumes from the configured duration minus elapsed time.
// Persisted drafts are restored so a reload never loses answers.
func (c *Controller) Start(ctx context.Context, priorSubmission bool, startedAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateLoading {
		return fmt.Errorf("start from %s: %w", c.state, ErrNotActive)
	}
	if priorSubmission {
		return ErrAlreadySubmitted
	}

	now := c.clock.Now()
	if now.Before(c.paper.StartTime) || now.After(c.paper.EndTime) {
		return ErrOutsideWindow
	}

	if startedAt.IsZero() {
		startedAt = now
	}
	c.startedAt = startedAt

	total := c.paper.DurationMinutes * 60
	elapsed := int(now.Sub(startedAt).Seconds())
	c.remaining = total - elapsed
	if c.remaining < 0 {
		c.remaining = 0
	}

	drafts, err := c.store.LoadDrafts(ctx, c.paper.ExamID, c.studentID)
	if err != nil {
		// Draft restore is best-effort; starting with an empty sheet beats
		// refusing the exam.
		c.log.Warn().Err(err).Msg("Draft restore failed")
	} else if drafts != nil {
		c.drafts = drafts
	}

	c.state = StateActive
	c.log.Info().Int("remaining", c.remaining).Int("restored_drafts", len(c.drafts)).Msg("Session started")

	// Resuming after the clock already ran out: expire immediately.
	if c.remaining == 0 {
		c.state = StateExpired
		return c.submitLocked(ctx, true)
	}
	return nil
}

// RecordAnswer saves a draft answer. Rejected unless the session is Active.
// The draft is persisted synchronously before the call returns.
func (c *Controller) RecordAnswer(ctx context.Context, questionID uuid.UUID, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		return ErrNotActive
	}
	if _, ok := c.questions[questionID]; !ok {
		return ErrUnknownQuestion
	}

	c.drafts[questionID] = value
	if err := c.store.SaveDraft(ctx, c.paper.ExamID, c.studentID, questionID, value); err != nil {
		return fmt.Errorf("persist draft: %w", err)
	}
	return nil
}

// ReportViolation counts an advisory integrity signal. A same-kind signal
// re-fired within the debounce window is dropped (nil warning) to avoid
// double-counting rapid repeated events. The count never exceeds the
// threshold, even when the forced submission fails and the session stays
// Active; the full event history is still appended. Reaching the threshold
// triggers immediate submission, and every report at the threshold retries it.
func (c *Controller) ReportViolation(ctx context.Context, kind model.ViolationKind, detail string) (*Warning, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		return nil, ErrNotActive
	}

	now := c.clock.Now()
	if last, ok := c.lastByKind[kind]; ok && now.Sub(last) < c.debounceWindow {
		return nil, nil // debounced duplicate
	}
	c.lastByKind[kind] = now

	c.violations = append(c.violations, Violation{Kind: kind, Detail: detail, At: now})
	if c.violationCount < c.maxViolations {
		c.violationCount++
	}
	count := c.violationCount

	warning := &Warning{
		Kind:        kind,
		Count:       count,
		Description: model.ViolationDescription(kind),
	}

	c.log.Warn().Str("kind", string(kind)).Int("count", count).Msg("Violation recorded")

	if count >= c.maxViolations {
		warning.ForcedSubmit = true
		if err := c.submitLocked(ctx, true); err != nil {
			return warning, err
		}
	}
	return warning, nil
}

// Tick advances the countdown by one second. A no-op unless Active. Reaching
// zero expires the session and triggers submission without further ticks.
func (c *Controller) Tick(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		return nil
	}

	c.remaining--
	if c.remaining > 0 {
		return nil
	}
	c.remaining = 0
	c.state = StateExpired
	c.log.Info().Msg("Time expired, forcing submission")
	return c.submitLocked(ctx, true)
}

// Submit finalizes the session on the student's request. The eligibility gate
// requires every question answered or less than the configured threshold of
// time remaining. Idempotent: calling again while Submitting or Submitted is
// a no-op.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateActive && !c.canSubmitLocked() {
		return ErrSubmitGateClosed
	}
	return c.submitLocked(ctx, false)
}

// submitLocked performs the submission. Callers hold c.mu, which also
// guarantees no second submission can start while one is in flight. On
// failure the session falls back to its pre-submit state with drafts intact;
// retry is the caller's decision.
func (c *Controller) submitLocked(ctx context.Context, forced bool) error {
	switch c.state {
	case StateSubmitting, StateSubmitted:
		return nil
	case StateActive, StateExpired:
		// proceed
	default:
		return ErrNotActive
	}

	prev := c.state
	c.state = StateSubmitting

	answers := make([]model.AnswerSubmission, 0, len(c.drafts))
	for _, q := range c.paper.Questions {
		value, ok := c.drafts[q.ID]
		if !ok || value == "" {
			continue // unanswered questions are skipped, not sent empty
		}
		answers = append(answers, model.AnswerSubmission{
			AnswerValue: value,
			QuestionRef: q.ID,
			StudentRef:  c.studentNIM,
		})
	}

	if err := c.submitter.SubmitAnswers(ctx, c.paper.ExamID, c.studentID, answers); err != nil {
		c.state = prev // drafts preserved for retry
		c.log.Error().Err(err).Bool("forced", forced).Msg("Submission failed")
		return fmt.Errorf("submit answers: %w", err)
	}

	if err := c.store.ClearDrafts(ctx, c.paper.ExamID, c.studentID); err != nil {
		c.log.Warn().Err(err).Msg("Draft cleanup failed")
	}

	c.state = StateSubmitted
	c.log.Info().Int("answers", len(answers)).Bool("forced", forced).Msg("Session submitted")
	return nil
}

func (c *Controller) canSubmitLocked() bool {
	if c.remaining < c.gateSeconds {
		return true
	}
	for _, q := range c.paper.Questions {
		if v, ok := c.drafts[q.ID]; !ok || v == "" {
			return false
		}
	}
	return true
}

// ─── Read-only accessors ───────────────────────────────────────────────

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) RemainingSeconds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Controller) StartedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startedAt
}

// ViolationCount returns the capped counter, not the history length: events
// recorded after the threshold never raise it.
func (c *Controller) ViolationCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.violationCount
}

// Violations returns a copy of the violation history in order of occurrence.
func (c *Controller) Violations() []Violation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Violation, len(c.violations))
	copy(out, c.violations)
	return out
}

// Drafts returns a copy of the current draft answers.
func (c *Controller) Drafts() map[uuid.UUID]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[uuid.UUID]string, len(c.drafts))
	for k, v := range c.drafts {
		out[k] = v
	}
	return out
}

// CanSubmit reports whether a student-initiated submit would pass the gate.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateActive && c.canSubmitLocked()
}

func (c *Controller) ExamID() uuid.UUID  { return c.paper.ExamID }
func (c *Controller) StudentID() int     { return c.studentID }
func (c *Controller) QuestionCount() int { return len(c.paper.Questions) }
