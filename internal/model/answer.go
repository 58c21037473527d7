package model

import (
	"time"

	"github.com/google/uuid"
)

// AnswerCategory separates exam answers from quiz answers. The rekapitulasi
// weighting treats the two categories differently (60/40).
type AnswerCategory string

const (
	AnswerCategoryExam AnswerCategory = "EXAM"
	AnswerCategoryQuiz AnswerCategory = "QUIZ"
)

// AnswerRecord is a student's answer to one question. Score is nil until
// graded: multiple-choice answers are scored on submission by comparing
// against the answer key, essay answers stay nil until a lecturer grades them.
// Submitted marks the record as part of a final exam submission — its presence
// is what makes an exam single-attempt.
type AnswerRecord struct {
	ID          uuid.UUID      `json:"id"`
	StudentID   int            `json:"student_id"`
	Category    AnswerCategory `json:"category"`
	QuestionID  uuid.UUID      `json:"question_id"`
	SourceID    uuid.UUID      `json:"source_id"` // owning exam or quiz
	AnswerValue string         `json:"answer_value"`
	Score       *float64       `json:"score"`
	Submitted   bool           `json:"submitted"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// AnswerSubmission is one element of a final exam submission. Field names
// mirror the content API contract consumed by the dashboards
// (answerValue/questionRef/studentRef).
type AnswerSubmission struct {
	AnswerValue string    `json:"answerValue"`
	QuestionRef uuid.UUID `json:"questionRef"`
	StudentRef  string    `json:"studentRef"` // NIM
}

// RecordAnswerRequest is the payload for saving a draft answer.
type RecordAnswerRequest struct {
	Value string `json:"value" binding:"required,max=8000"`
}

// GradeAnswerRequest is the payload for a lecturer grading an essay answer.
type GradeAnswerRequest struct {
	Score float64 `json:"score" binding:"min=0,max=100"`
}
