package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Exam represents a timed, single-attempt exam within a course. The exam is
// open for joining between StartTime and EndTime; once started, a student has
// DurationMinutes to finish regardless of the window's end.
type Exam struct {
	ID              uuid.UUID `json:"id"`
	CourseID        uuid.UUID `json:"course_id"`
	Title           string    `json:"title"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	QuestionCount   int       `json:"question_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeEssay          QuestionType = "ESSAY"
)

// Question represents a single exam question. AnswerKey is only meaningful for
// multiple-choice questions; essay answers are graded by the lecturer later.
type Question struct {
	ID        uuid.UUID       `json:"id"`
	ExamID    uuid.UUID       `json:"exam_id"`
	Text      string          `json:"text"`
	Type      QuestionType    `json:"type"`
	Options   json.RawMessage `json:"options"`
	AnswerKey string          `json:"answer_key,omitempty"`
	Weight    float64         `json:"weight"`
	OrderNum  int             `json:"order_num"`
}

// ExamPaper is the student-facing exam payload (no answer keys). Cached in
// Redis so the hot path during an exam never touches PostgreSQL.
type ExamPaper struct {
	ExamID          uuid.UUID            `json:"exam_id"`
	CourseID        uuid.UUID            `json:"course_id"`
	Title           string               `json:"title"`
	DurationMinutes int                  `json:"duration_minutes"`
	StartTime       time.Time            `json:"start_time"`
	EndTime         time.Time            `json:"end_time"`
	Questions       []QuestionForStudent `json:"questions"`
}

// QuestionForStudent is a question stripped of its answer key.
type QuestionForStudent struct {
	ID       uuid.UUID       `json:"id"`
	Text     string          `json:"text"`
	Type     QuestionType    `json:"type"`
	Options  json.RawMessage `json:"options"`
	OrderNum int             `json:"order_num"`
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	Title           string    `json:"title" binding:"required,min=3,max=255"`
	StartTime       time.Time `json:"start_time" binding:"required"`
	EndTime         time.Time `json:"end_time" binding:"required,gtfield=StartTime"`
	DurationMinutes int       `json:"duration_minutes" binding:"required,min=1,max=480"`
}

// AddQuestionRequest is the payload for adding a question to an exam.
type AddQuestionRequest struct {
	Text      string          `json:"text" binding:"required,min=1,max=2000"`
	Type      string          `json:"type" binding:"required,oneof=MULTIPLE_CHOICE ESSAY"`
	Options   json.RawMessage `json:"options" binding:"omitempty"`
	AnswerKey string          `json:"answer_key" binding:"omitempty,max=10"`
	Weight    float64         `json:"weight" binding:"omitempty,min=0,max=100"`
	OrderNum  int             `json:"order_num" binding:"min=0"`
}
