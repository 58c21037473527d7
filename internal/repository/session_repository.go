package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tuwir2002/maligo-backend/internal/model"
)

const sessionColumns = `id, exam_id, student_id, started_at, finished_at, status, final_score, violation_count`

// SessionRepository handles persisted exam-session rows. The live countdown
// and state machine stay in memory (examflow); these rows record when an
// attempt started, when it finished and with what outcome.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func scanSession(row interface{ Scan(...any) error }) (*model.ExamSessionRow, error) {
	s := &model.ExamSessionRow{}
	err := row.Scan(&s.ID, &s.ExamID, &s.StudentID, &s.StartedAt,
		&s.FinishedAt, &s.Status, &s.FinalScore, &s.ViolationCount)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Start creates an IN_PROGRESS session row, or returns the existing one when
// the student reconnects to an attempt already underway. The unique
// (exam_id, student_id) constraint makes the second caller a no-op insert.
func (r *SessionRepository) Start(ctx context.Context, examID uuid.UUID, studentID int, startedAt time.Time) (*model.ExamSessionRow, error) {
	session, err := scanSession(r.pool.QueryRow(ctx,
		`INSERT INTO exam_sessions (exam_id, student_id, started_at, status)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (exam_id, student_id) DO NOTHING
		 RETURNING `+sessionColumns,
		examID, studentID, startedAt, model.SessionStatusInProgress))
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the race or reconnecting: the row already exists.
		return r.GetByExamAndStudent(ctx, examID, studentID)
	}
	return session, err
}

// GetByExamAndStudent retrieves a session row for one attempt.
func (r *SessionRepository) GetByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID int) (*model.ExamSessionRow, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions
		 WHERE exam_id = $1 AND student_id = $2`, examID, studentID))
}

// Complete marks the session COMPLETED with its final score and the violation
// count carried by the state machine at submission time.
func (r *SessionRepository) Complete(ctx context.Context, examID uuid.UUID, studentID int, finalScore *float64, violationCount int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions
		 SET status = $1, finished_at = NOW(), final_score = $2, violation_count = $3
		 WHERE exam_id = $4 AND student_id = $5`,
		model.SessionStatusCompleted, finalScore, violationCount, examID, studentID)
	return err
}

// ListByStudent retrieves a student's session history, newest first.
func (r *SessionRepository) ListByStudent(ctx context.Context, studentID int) ([]model.ExamSessionRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions
		 WHERE student_id = $1 ORDER BY started_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.ExamSessionRow
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// ListByExam retrieves paginated results for one exam joined with the
// student identity, for the lecturer's results table.
func (r *SessionRepository) ListByExam(ctx context.Context, examID uuid.UUID, page, limit int) ([]model.ExamResult, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_sessions WHERE exam_id = $1`, examID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT es.id, es.exam_id, es.student_id, es.started_at, es.finished_at,
		        es.status, es.final_score, es.violation_count, s.nim, s.name
		 FROM exam_sessions es
		 JOIN students s ON es.student_id = s.id
		 WHERE es.exam_id = $1
		 ORDER BY s.nim ASC
		 LIMIT $2 OFFSET $3`, examID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []model.ExamResult
	for rows.Next() {
		var res model.ExamResult
		if err := rows.Scan(&res.ID, &res.ExamID, &res.StudentID, &res.StartedAt,
			&res.FinishedAt, &res.Status, &res.FinalScore, &res.ViolationCount,
			&res.StudentNIM, &res.StudentName); err != nil {
			return nil, 0, err
		}
		results = append(results, res)
	}
	return results, total, rows.Err()
}

// ─── Violations ───

// BulkInsertViolations writes a batch of violation events with a single
// COPY. Used by the violation worker's fast path.
func (r *SessionRepository) BulkInsertViolations(ctx context.Context, events []model.ViolationEvent) error {
	if len(events) == 0 {
		return nil
	}
	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"violation_events"},
		[]string{"exam_id", "student_id", "kind", "detail", "occurred_at"},
		pgx.CopyFromSlice(len(events), func(i int) ([]any, error) {
			e := events[i]
			return []any{e.ExamID, e.StudentID, e.Kind, e.Detail, e.OccurredAt}, nil
		}))
	return err
}

// InsertViolation writes a single violation event. Fallback path when a
// batch COPY rejects the whole set.
func (r *SessionRepository) InsertViolation(ctx context.Context, e model.ViolationEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO violation_events (exam_id, student_id, kind, detail, occurred_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		e.ExamID, e.StudentID, e.Kind, e.Detail, e.OccurredAt)
	return err
}

// ListViolations retrieves the audit trail for one attempt, oldest first.
func (r *SessionRepository) ListViolations(ctx context.Context, examID uuid.UUID, studentID int) ([]model.ViolationEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, student_id, kind, detail, occurred_at
		 FROM violation_events
		 WHERE exam_id = $1 AND student_id = $2
		 ORDER BY occurred_at ASC`, examID, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.ViolationEvent
	for rows.Next() {
		var e model.ViolationEvent
		if err := rows.Scan(&e.ID, &e.ExamID, &e.StudentID, &e.Kind, &e.Detail, &e.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
