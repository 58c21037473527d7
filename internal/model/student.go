package model

import "time"

// Student represents a student (mahasiswa) account. NIM is the registration
// number used as the public identifier throughout the API.
type Student struct {
	ID           int       `json:"id"`
	NIM          string    `json:"nim"`
	Name         string    `json:"name"`
	Semester     int       `json:"semester"`
	StudyProgram string    `json:"study_program"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StudentLoginRequest is the payload for student authentication.
type StudentLoginRequest struct {
	NIM      string `json:"nim" binding:"required,min=4,max=20"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}

// StudentLoginResponse is returned after successful student login.
type StudentLoginResponse struct {
	Token   string  `json:"token"`
	Student Student `json:"student"`
}

// CreateStudentRequest is the payload for creating a new student account.
type CreateStudentRequest struct {
	NIM          string `json:"nim" binding:"required,min=4,max=20"`
	Name         string `json:"name" binding:"required,min=2,max=100"`
	Semester     int    `json:"semester" binding:"required,min=1,max=14"`
	StudyProgram string `json:"study_program" binding:"required,min=2,max=100"`
	Password     string `json:"password" binding:"required,min=6,max=128"`
}
