// Package examflow implements the timed, single-attempt exam session state
// machine: countdown, draft answer capture, advisory violation counting with
// forced submission, and idempotent final submission.
//
// The controller owns no I/O of its own — draft persistence and answer
// submission are injected, so the surrounding service decides what backs them
// (Redis and PostgreSQL in production, fakes in tests).
package examflow

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tuwir2002/maligo-backend/internal/model"
)

// State enumerates controller states. Submitted is terminal.
type State string

const (
	StateLoading    State = "LOADING"
	StateActive     State = "ACTIVE"
	StateExpired    State = "EXPIRED"
	StateSubmitting State = "SUBMITTING"
	StateSubmitted  State = "SUBMITTED"
)

// Sentinel errors surfaced to handlers.
var (
	// ErrAlreadySubmitted rejects re-entry into a submitted exam.
	ErrAlreadySubmitted = errors.New("exam already submitted")
	// ErrOutsideWindow rejects a start outside [StartTime, EndTime].
	ErrOutsideWindow = errors.New("outside exam time window")
	// ErrNotActive rejects mutations on a session that is not active.
	ErrNotActive = errors.New("exam session is not active")
	// ErrSubmitGateClosed rejects a premature student-initiated submit.
	ErrSubmitGateClosed = errors.New("submit gate closed")
	// ErrUnknownQuestion rejects answers for questions not on the paper.
	ErrUnknownQuestion = errors.New("question is not part of this exam")
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the production Clock.
var SystemClock Clock = systemClock{}

// DraftStore persists draft answers so a page reload never loses them.
// Implementations must key drafts by (exam, student).
type DraftStore interface {
	SaveDraft(ctx context.Context, examID uuid.UUID, studentID int, questionID uuid.UUID, value string) error
	LoadDrafts(ctx context.Context, examID uuid.UUID, studentID int) (map[uuid.UUID]string, error)
	ClearDrafts(ctx context.Context, examID uuid.UUID, studentID int) error
}

// Submitter delivers the final answer set. Exactly one submission per
// answered question; unanswered questions are skipped, never sent empty.
type Submitter interface {
	SubmitAnswers(ctx context.Context, examID uuid.UUID, studentID int, answers []model.AnswerSubmission) error
}

// Violation is one entry of the in-session violation history.
type Violation struct {
	Kind   model.ViolationKind `json:"kind"`
	Detail string              `json:"detail,omitempty"`
	At     time.Time           `json:"at"`
}

// Warning is returned to the caller after a counted violation so the UI can
// show the running count and the latest description. ForcedSubmit reports
// that the violation threshold was reached and submission was triggered.
type Warning struct {
	Kind         model.ViolationKind `json:"kind"`
	Count        int                 `json:"count"`
	Description  string              `json:"description"`
	ForcedSubmit bool                `json:"forced_submit"`
}
