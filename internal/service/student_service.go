package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tuwir2002/maligo-backend/internal/model"
	"github.com/tuwir2002/maligo-backend/internal/repository"
)

// StudentService orchestrates student account business logic.
type StudentService struct {
	studentRepo *repository.StudentRepository
	authService *AuthService
}

// NewStudentService creates a new StudentService.
func NewStudentService(studentRepo *repository.StudentRepository, authService *AuthService) *StudentService {
	return &StudentService{studentRepo: studentRepo, authService: authService}
}

// Login verifies NIM + password and issues a single-device JWT.
func (s *StudentService) Login(ctx context.Context, nim, password string) (string, *model.Student, error) {
	student, err := s.studentRepo.GetByNIM(ctx, nim)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get student: %w", err)
	}

	if err := s.authService.CheckPassword(student.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.authService.GenerateStudentToken(ctx, student.ID, student.NIM)
	if err != nil {
		return "", nil, err
	}
	return token, student, nil
}

// Logout releases the student's single-device session.
func (s *StudentService) Logout(ctx context.Context, studentID int) error {
	return s.authService.ResetStudentSession(ctx, studentID)
}

// GetProfile retrieves a student by id.
func (s *StudentService) GetProfile(ctx context.Context, studentID int) (*model.Student, error) {
	return s.studentRepo.GetByID(ctx, studentID)
}

// Create registers a new student with a hashed password.
func (s *StudentService) Create(ctx context.Context, req *model.CreateStudentRequest) (*model.Student, error) {
	hash, err := s.authService.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	student := &model.Student{
		NIM:          req.NIM,
		Name:         req.Name,
		Semester:     req.Semester,
		StudyProgram: req.StudyProgram,
		PasswordHash: hash,
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, fmt.Errorf("create student: %w", err)
	}
	return student, nil
}

// List retrieves a paginated student roster.
func (s *StudentService) List(ctx context.Context, page, limit int) ([]model.Student, int64, error) {
	return s.studentRepo.List(ctx, page, limit)
}
