package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tuwir2002/maligo-backend/internal/model"
)

// RekapRepository stores computed rekapitulasi rows. Rows are derived data:
// the rekap worker recomputes and upserts them, nothing updates them in place.
type RekapRepository struct {
	pool *pgxpool.Pool
}

// NewRekapRepository creates a new RekapRepository.
func NewRekapRepository(pool *pgxpool.Pool) *RekapRepository {
	return &RekapRepository{pool: pool}
}

// Upsert replaces the rekapitulasi for one (student, course) pair.
func (r *RekapRepository) Upsert(ctx context.Context, rekap *model.Rekapitulasi) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO rekapitulasi (student_id, course_id, exam_average, quiz_average, weighted_score, completion_rate, computed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())
		 ON CONFLICT (student_id, course_id) DO UPDATE
		 SET exam_average = EXCLUDED.exam_average,
		     quiz_average = EXCLUDED.quiz_average,
		     weighted_score = EXCLUDED.weighted_score,
		     completion_rate = EXCLUDED.completion_rate,
		     computed_at = NOW()
		 RETURNING id, computed_at`,
		rekap.StudentID, rekap.CourseID, rekap.ExamAverage, rekap.QuizAverage,
		rekap.WeightedScore, rekap.CompletionRate,
	).Scan(&rekap.ID, &rekap.ComputedAt)
}

// ListByStudent retrieves a student's rekapitulasi rows joined with their
// courses, for the dashboard.
func (r *RekapRepository) ListByStudent(ctx context.Context, studentID int) ([]model.CourseRekap, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT rk.id, rk.student_id, rk.course_id, rk.exam_average, rk.quiz_average,
		        rk.weighted_score, rk.completion_rate, rk.computed_at, c.code, c.name
		 FROM rekapitulasi rk
		 JOIN courses c ON rk.course_id = c.id
		 WHERE rk.student_id = $1
		 ORDER BY c.code ASC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rekaps []model.CourseRekap
	for rows.Next() {
		var cr model.CourseRekap
		if err := rows.Scan(&cr.ID, &cr.StudentID, &cr.CourseID, &cr.ExamAverage,
			&cr.QuizAverage, &cr.WeightedScore, &cr.CompletionRate, &cr.ComputedAt,
			&cr.CourseCode, &cr.CourseName); err != nil {
			return nil, err
		}
		rekaps = append(rekaps, cr)
	}
	return rekaps, rows.Err()
}

// CourseScores retrieves every weighted score recorded for a course, for the
// class average and score distribution.
func (r *RekapRepository) CourseScores(ctx context.Context, courseID uuid.UUID) ([]float64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT weighted_score FROM rekapitulasi WHERE course_id = $1`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var s float64
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// StudentIDsByCourse lists students that have any submitted answer in the
// course — the recompute set after a grading event.
func (r *RekapRepository) StudentIDsByCourse(ctx context.Context, courseID uuid.UUID) ([]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT ar.student_id
		 FROM answer_records ar
		 WHERE ar.submitted = TRUE AND ar.source_id IN (
			SELECT id FROM exams WHERE course_id = $1
			UNION
			SELECT id FROM quizzes WHERE course_id = $1
		 )`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
