package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tuwir2002/maligo-backend/internal/model"
)

// CourseRepository handles course and meeting (pertemuan) data access.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

const courseColumns = `id, code, name, semester, sks, lecturer_id, created_at, updated_at`

func scanCourse(row interface{ Scan(...any) error }) (*model.Course, error) {
	c := &model.Course{}
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Semester, &c.SKS, &c.LecturerID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID retrieves a course.
func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = $1`, id)
	return scanCourse(row)
}

// ListBySemester retrieves the courses of one semester (a student's course
// load), ordered by code.
func (r *CourseRepository) ListBySemester(ctx context.Context, semester int) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE semester = $1 ORDER BY code ASC`, semester)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCourses(rows)
}

// ListByLecturer retrieves the courses owned by a lecturer.
func (r *CourseRepository) ListByLecturer(ctx context.Context, lecturerID int) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE lecturer_id = $1 ORDER BY code ASC`, lecturerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCourses(rows)
}

func collectCourses(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]model.Course, error) {
	var courses []model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO courses (code, name, semester, sks, lecturer_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		c.Code, c.Name, c.Semester, c.SKS, c.LecturerID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// AddMeeting inserts a meeting for a course.
func (r *CourseRepository) AddMeeting(ctx context.Context, m *model.Meeting) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO meetings (course_id, number, topic, held_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		m.CourseID, m.Number, m.Topic, m.HeldAt,
	).Scan(&m.ID)
}

// ListMeetings retrieves a course's meetings ordered by number.
func (r *CourseRepository) ListMeetings(ctx context.Context, courseID uuid.UUID) ([]model.Meeting, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, course_id, number, topic, held_at
		 FROM meetings WHERE course_id = $1 ORDER BY number ASC`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meetings []model.Meeting
	for rows.Next() {
		var m model.Meeting
		if err := rows.Scan(&m.ID, &m.CourseID, &m.Number, &m.Topic, &m.HeldAt); err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}
