package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Quiz is a lightweight per-meeting quiz. Unlike exams, quizzes are untimed
// and carry no session state; their scores feed the 40% side of the
// rekapitulasi weighting.
type Quiz struct {
	ID        uuid.UUID  `json:"id"`
	CourseID  uuid.UUID  `json:"course_id"`
	MeetingID *uuid.UUID `json:"meeting_id,omitempty"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
}

// QuizQuestion is a single quiz question, always multiple-choice.
type QuizQuestion struct {
	ID        uuid.UUID       `json:"id"`
	QuizID    uuid.UUID       `json:"quiz_id"`
	Text      string          `json:"text"`
	Options   json.RawMessage `json:"options"`
	AnswerKey string          `json:"answer_key,omitempty"`
	OrderNum  int             `json:"order_num"`
}

// CreateQuizRequest is the payload for creating a quiz on a course.
type CreateQuizRequest struct {
	MeetingID *uuid.UUID `json:"meeting_id" binding:"omitempty"`
	Title     string     `json:"title" binding:"required,min=3,max=255"`
}

// AddQuizQuestionRequest is the payload for adding a question to a quiz.
type AddQuizQuestionRequest struct {
	Text      string          `json:"text" binding:"required,min=1,max=2000"`
	Options   json.RawMessage `json:"options" binding:"required"`
	AnswerKey string          `json:"answer_key" binding:"required,max=10"`
	OrderNum  int             `json:"order_num" binding:"min=0"`
}
