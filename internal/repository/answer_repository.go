package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tuwir2002/maligo-backend/internal/model"
)

// AnswerRepository handles answer-record data access for both exams and
// quizzes. Draft rows (submitted=false) are written by the draft worker;
// submitted rows are written in one transaction at final submission.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

// HasSubmitted reports whether the student already has a submitted answer for
// the given exam or quiz — the single-attempt check.
func (r *AnswerRepository) HasSubmitted(ctx context.Context, sourceID uuid.UUID, studentID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM answer_records
			WHERE source_id = $1 AND student_id = $2 AND submitted = TRUE
		 )`, sourceID, studentID).Scan(&exists)
	return exists, err
}

// SubmitBatch inserts one submitted answer record per answered question in a
// single transaction: either the whole submission lands or none of it does.
// Draft rows for the same questions are promoted rather than duplicated.
func (r *AnswerRepository) SubmitBatch(ctx context.Context, records []model.AnswerRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := range records {
		rec := &records[i]
		err := tx.QueryRow(ctx,
			`INSERT INTO answer_records (student_id, category, question_id, source_id, answer_value, score, submitted)
			 VALUES ($1, $2, $3, $4, $5, $6, TRUE)
			 ON CONFLICT (student_id, question_id) DO UPDATE
			 SET answer_value = EXCLUDED.answer_value,
			     score = EXCLUDED.score,
			     submitted = TRUE,
			     updated_at = NOW()
			 RETURNING id, created_at, updated_at`,
			rec.StudentID, rec.Category, rec.QuestionID, rec.SourceID, rec.AnswerValue, rec.Score,
		).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// UpsertDraft creates or refreshes an unsubmitted answer row. Used by the
// draft worker as the durable copy behind the Redis draft hash. A row that
// was already submitted is never downgraded back to a draft.
func (r *AnswerRepository) UpsertDraft(ctx context.Context, studentID int, questionID, sourceID uuid.UUID, value string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO answer_records (student_id, category, question_id, source_id, answer_value, submitted)
		 VALUES ($1, $2, $3, $4, $5, FALSE)
		 ON CONFLICT (student_id, question_id) DO UPDATE
		 SET answer_value = EXCLUDED.answer_value, updated_at = NOW()
		 WHERE answer_records.submitted = FALSE`,
		studentID, model.AnswerCategoryExam, questionID, sourceID, value)
	return err
}

// ListByStudentCourse retrieves a student's submitted answer records across
// all exams and quizzes of one course — the Grade Aggregator's input.
func (r *AnswerRepository) ListByStudentCourse(ctx context.Context, studentID int, courseID uuid.UUID) ([]model.AnswerRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ar.id, ar.student_id, ar.category, ar.question_id, ar.source_id,
		        ar.answer_value, ar.score, ar.submitted, ar.created_at, ar.updated_at
		 FROM answer_records ar
		 WHERE ar.student_id = $1 AND ar.submitted = TRUE AND ar.source_id IN (
			SELECT id FROM exams WHERE course_id = $2
			UNION
			SELECT id FROM quizzes WHERE course_id = $2
		 )
		 ORDER BY ar.created_at ASC`, studentID, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAnswers(rows)
}

// ListUngradedEssays retrieves submitted essay answers awaiting a grade for
// any exam of the lecturer's course.
func (r *AnswerRepository) ListUngradedEssays(ctx context.Context, courseID uuid.UUID) ([]model.AnswerRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ar.id, ar.student_id, ar.category, ar.question_id, ar.source_id,
		        ar.answer_value, ar.score, ar.submitted, ar.created_at, ar.updated_at
		 FROM answer_records ar
		 JOIN questions q ON ar.question_id = q.id
		 JOIN exams e ON q.exam_id = e.id
		 WHERE e.course_id = $1 AND q.type = $2 AND ar.submitted = TRUE AND ar.score IS NULL
		 ORDER BY ar.created_at ASC`, courseID, model.QuestionTypeEssay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAnswers(rows)
}

func collectAnswers(rows pgx.Rows) ([]model.AnswerRecord, error) {
	var records []model.AnswerRecord
	for rows.Next() {
		var a model.AnswerRecord
		if err := rows.Scan(&a.ID, &a.StudentID, &a.Category, &a.QuestionID, &a.SourceID,
			&a.AnswerValue, &a.Score, &a.Submitted, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

// SetScore grades one answer record.
func (r *AnswerRepository) SetScore(ctx context.Context, answerID uuid.UUID, score float64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE answer_records SET score = $1, updated_at = NOW() WHERE id = $2`,
		score, answerID)
	return err
}

// GetByID retrieves one answer record.
func (r *AnswerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.AnswerRecord, error) {
	a := &model.AnswerRecord{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, student_id, category, question_id, source_id,
		        answer_value, score, submitted, created_at, updated_at
		 FROM answer_records WHERE id = $1`, id,
	).Scan(&a.ID, &a.StudentID, &a.Category, &a.QuestionID, &a.SourceID,
		&a.AnswerValue, &a.Score, &a.Submitted, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// TaskCounts returns (answered, total) task counts for a student in a course:
// total is the number of exam plus quiz questions, answered the number of
// submitted answer records against them. Feeds the completion rate.
func (r *AnswerRepository) TaskCounts(ctx context.Context, studentID int, courseID uuid.UUID) (int, int, error) {
	var answered, total int
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM answer_records ar
			 WHERE ar.student_id = $1 AND ar.submitted = TRUE AND ar.source_id IN (
				SELECT id FROM exams WHERE course_id = $2
				UNION SELECT id FROM quizzes WHERE course_id = $2)),
			(SELECT
				(SELECT COUNT(*) FROM questions q JOIN exams e ON q.exam_id = e.id WHERE e.course_id = $2) +
				(SELECT COUNT(*) FROM quiz_questions qq JOIN quizzes z ON qq.quiz_id = z.id WHERE z.course_id = $2))`,
		studentID, courseID).Scan(&answered, &total)
	return answered, total, err
}
