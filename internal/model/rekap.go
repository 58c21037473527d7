package model

import (
	"time"

	"github.com/google/uuid"
)

// Rekapitulasi links a student to a course with their computed standing:
// category averages, the 60/40 weighted score and the task completion rate.
// Rows are recomputed asynchronously whenever a submission or grading event
// lands, never edited by hand.
type Rekapitulasi struct {
	ID             uuid.UUID `json:"id"`
	StudentID      int       `json:"student_id"`
	CourseID       uuid.UUID `json:"course_id"`
	ExamAverage    float64   `json:"exam_average"`
	QuizAverage    float64   `json:"quiz_average"`
	WeightedScore  float64   `json:"weighted_score"`
	CompletionRate float64   `json:"completion_rate"`
	ComputedAt     time.Time `json:"computed_at"`
}

// CourseRekap is a rekapitulasi row joined with its course for dashboards.
type CourseRekap struct {
	Rekapitulasi
	CourseCode string `json:"course_code"`
	CourseName string `json:"course_name"`
}

// StudentDashboard is the student home-screen aggregate.
type StudentDashboard struct {
	Student        Student       `json:"student"`
	Courses        []CourseRekap `json:"courses"`
	OverallAverage float64       `json:"overall_average"`
	CompletionRate float64       `json:"completion_rate"`
	Warnings       []string      `json:"warnings,omitempty"`
}
