package model

import (
	"time"

	"github.com/google/uuid"
)

// Course is read-only reference data for the dashboards: a subject taught in
// a given semester, with its meetings, quizzes and exams hanging off it.
type Course struct {
	ID         uuid.UUID `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Semester   int       `json:"semester"`
	SKS        int       `json:"sks"`
	LecturerID int       `json:"lecturer_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Meeting is a single course meeting (pertemuan).
type Meeting struct {
	ID       uuid.UUID `json:"id"`
	CourseID uuid.UUID `json:"course_id"`
	Number   int       `json:"number"`
	Topic    string    `json:"topic"`
	HeldAt   time.Time `json:"held_at"`
}

// CreateCourseRequest is the payload for creating a course.
type CreateCourseRequest struct {
	Code     string `json:"code" binding:"required,min=2,max=20"`
	Name     string `json:"name" binding:"required,min=3,max=255"`
	Semester int    `json:"semester" binding:"required,min=1,max=14"`
	SKS      int    `json:"sks" binding:"required,min=1,max=6"`
}

// CreateMeetingRequest is the payload for adding a meeting to a course.
type CreateMeetingRequest struct {
	Number int       `json:"number" binding:"required,min=1,max=32"`
	Topic  string    `json:"topic" binding:"required,min=2,max=255"`
	HeldAt time.Time `json:"held_at" binding:"required"`
}
