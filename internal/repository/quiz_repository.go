package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tuwir2002/maligo-backend/internal/model"
)

// QuizRepository handles quiz and quiz-question data access.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

// Create inserts a new quiz.
func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO quizzes (course_id, meeting_id, title)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		q.CourseID, q.MeetingID, q.Title,
	).Scan(&q.ID, &q.CreatedAt)
}

// GetByID retrieves a quiz.
func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	q := &model.Quiz{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, course_id, meeting_id, title, created_at FROM quizzes WHERE id = $1`, id,
	).Scan(&q.ID, &q.CourseID, &q.MeetingID, &q.Title, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ListByCourse retrieves a course's quizzes.
func (r *QuizRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Quiz, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, course_id, meeting_id, title, created_at
		 FROM quizzes WHERE course_id = $1 ORDER BY created_at ASC`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		var q model.Quiz
		if err := rows.Scan(&q.ID, &q.CourseID, &q.MeetingID, &q.Title, &q.CreatedAt); err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

// AddQuestion inserts a question into a quiz.
func (r *QuizRepository) AddQuestion(ctx context.Context, q *model.QuizQuestion) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO quiz_questions (quiz_id, text, options, answer_key, order_num)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		q.QuizID, q.Text, q.Options, q.AnswerKey, q.OrderNum,
	).Scan(&q.ID)
}

// ListQuestions retrieves a quiz's questions in order.
func (r *QuizRepository) ListQuestions(ctx context.Context, quizID uuid.UUID) ([]model.QuizQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, quiz_id, text, options, answer_key, order_num
		 FROM quiz_questions WHERE quiz_id = $1 ORDER BY order_num ASC`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.QuizQuestion
	for rows.Next() {
		var q model.QuizQuestion
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Text, &q.Options, &q.AnswerKey, &q.OrderNum); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// AnswerKey returns questionID → correct option for a quiz.
func (r *QuizRepository) AnswerKey(ctx context.Context, quizID uuid.UUID) (map[string]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, answer_key FROM quiz_questions WHERE quiz_id = $1`, quizID)
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
