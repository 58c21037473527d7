package model

import "time"

// Lecturer represents a lecturer (dosen) account. Lecturers own courses,
// grade essay answers and review skripsi submissions.
type Lecturer struct {
	ID           int       `json:"id"`
	NIDN         string    `json:"nidn"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LecturerLoginRequest is the payload for lecturer authentication.
type LecturerLoginRequest struct {
	NIDN     string `json:"nidn" binding:"required,min=4,max=20"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}

// LecturerLoginResponse is returned after successful lecturer login.
type LecturerLoginResponse struct {
	Token    string   `json:"token"`
	Lecturer Lecturer `json:"lecturer"`
}
