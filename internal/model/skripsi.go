package model

import (
	"time"

	"github.com/google/uuid"
)

// SkripsiStatus enumerates thesis workflow states.
type SkripsiStatus string

const (
	SkripsiStatusDraft       SkripsiStatus = "DRAFT"
	SkripsiStatusSubmitted   SkripsiStatus = "SUBMITTED"
	SkripsiStatusUnderReview SkripsiStatus = "UNDER_REVIEW"
	SkripsiStatusRevision    SkripsiStatus = "REVISION"
	SkripsiStatusApproved    SkripsiStatus = "APPROVED"
	SkripsiStatusRejected    SkripsiStatus = "REJECTED"
)

// skripsiTransitions is the allowed state graph. APPROVED and REJECTED are
// terminal; a revision loops back through SUBMITTED.
var skripsiTransitions = map[SkripsiStatus][]SkripsiStatus{
	SkripsiStatusDraft:       {SkripsiStatusSubmitted},
	SkripsiStatusSubmitted:   {SkripsiStatusUnderReview},
	SkripsiStatusUnderReview: {SkripsiStatusRevision, SkripsiStatusApproved, SkripsiStatusRejected},
	SkripsiStatusRevision:    {SkripsiStatusSubmitted},
}

// CanTransition reports whether a skripsi may move from one status to another.
func CanTransition(from, to SkripsiStatus) bool {
	for _, next := range skripsiTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Skripsi is a thesis submission owned by exactly one student.
type Skripsi struct {
	ID           uuid.UUID     `json:"id"`
	StudentID    int           `json:"student_id"`
	Title        string        `json:"title"`
	Abstract     string        `json:"abstract"`
	DocumentPath string        `json:"document_path,omitempty"`
	SupervisorID *int          `json:"supervisor_id,omitempty"`
	Status       SkripsiStatus `json:"status"`
	ReviewNotes  string        `json:"review_notes,omitempty"`
	SubmittedAt  *time.Time    `json:"submitted_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// CreateSkripsiRequest is the payload for creating a thesis draft.
type CreateSkripsiRequest struct {
	Title    string `json:"title" binding:"required,min=10,max=500"`
	Abstract string `json:"abstract" binding:"required,min=50,max=5000"`
}

// UpdateSkripsiRequest is the payload for editing a draft or revision.
type UpdateSkripsiRequest struct {
	Title    string `json:"title" binding:"omitempty,min=10,max=500"`
	Abstract string `json:"abstract" binding:"omitempty,min=50,max=5000"`
}

// ReviewSkripsiRequest is the payload for a lecturer's review decision.
type ReviewSkripsiRequest struct {
	Decision SkripsiStatus `json:"decision" binding:"required,oneof=REVISION APPROVED REJECTED"`
	Notes    string        `json:"notes" binding:"omitempty,max=5000"`
}
