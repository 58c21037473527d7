package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tuwir2002/maligo-backend/internal/model"
)

// ExamRepository handles exam and exam-question data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

const examColumns = `e.id, e.course_id, e.title, e.start_time, e.end_time, e.duration_minutes,
	(SELECT COUNT(*) FROM questions q WHERE q.exam_id = e.id) AS question_count,
	e.created_at, e.updated_at`

func scanExam(row interface{ Scan(...any) error }) (*model.Exam, error) {
	e := &model.Exam{}
	err := row.Scan(&e.ID, &e.CourseID, &e.Title, &e.StartTime, &e.EndTime,
		&e.DurationMinutes, &e.QuestionCount, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetByID retrieves an exam.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+examColumns+` FROM exams e WHERE e.id = $1`, id)
	return scanExam(row)
}

// ListByCourse retrieves a course's exams ordered by start time.
func (r *ExamRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams e WHERE e.course_id = $1 ORDER BY e.start_time ASC`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExams(rows)
}

// ListForSemester retrieves all exams belonging to the courses of a semester —
// the student lobby query.
func (r *ExamRepository) ListForSemester(ctx context.Context, semester int) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+`
		 FROM exams e
		 JOIN courses c ON e.course_id = c.id
		 WHERE c.semester = $1
		 ORDER BY e.start_time ASC`, semester)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExams(rows)
}

func collectExams(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]model.Exam, error) {
	var exams []model.Exam
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		exams = append(exams, *e)
	}
	return exams, rows.Err()
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (course_id, title, start_time, end_time, duration_minutes)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		e.CourseID, e.Title, e.StartTime, e.EndTime, e.DurationMinutes,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// AddQuestion inserts a question into an exam.
func (r *ExamRepository) AddQuestion(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (exam_id, text, type, options, answer_key, weight, order_num)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		q.ExamID, q.Text, q.Type, q.Options, q.AnswerKey, q.Weight, q.OrderNum,
	).Scan(&q.ID)
}

// ListQuestions retrieves an exam's questions in paper order.
func (r *ExamRepository) ListQuestions(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, text, type, options, answer_key, weight, order_num
		 FROM questions WHERE exam_id = $1 ORDER BY order_num ASC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.ExamID, &q.Text, &q.Type, &q.Options, &q.AnswerKey, &q.Weight, &q.OrderNum); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// AnswerKey returns questionID → correct option for the exam's
// multiple-choice questions. Essay questions carry no key.
func (r *ExamRepository) AnswerKey(ctx context.Context, examID uuid.UUID) (map[string]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, answer_key FROM questions
		 WHERE exam_id = $1 AND type = $2`, examID, model.QuestionTypeMultipleChoice)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	key := make(map[string]string)
	for rows.Next() {
		var id uuid.UUID
		var answer string
		if err := rows.Scan(&id, &answer); err != nil {
			return nil, err
		}
		key[id.String()] = answer
	}
	return key, rows.Err()
}
