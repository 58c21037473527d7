package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tuwir2002/maligo-backend/internal/model"
	"github.com/tuwir2002/maligo-backend/internal/repository"
)

// LecturerService orchestrates lecturer account business logic.
type LecturerService struct {
	lecturerRepo *repository.LecturerRepository
	authService  *AuthService
}

// NewLecturerService creates a new LecturerService.
func NewLecturerService(lecturerRepo *repository.LecturerRepository, authService *AuthService) *LecturerService {
	return &LecturerService{lecturerRepo: lecturerRepo, authService: authService}
}

// Login verifies NIDN + password and issues a JWT.
func (s *LecturerService) Login(ctx context.Context, nidn, password string) (string, *model.Lecturer, error) {
	lecturer, err := s.lecturerRepo.GetByNIDN(ctx, nidn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get lecturer: %w", err)
	}

	if err := s.authService.CheckPassword(lecturer.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.authService.GenerateLecturerToken(lecturer.ID, lecturer.NIDN)
	if err != nil {
		return "", nil, err
	}
	return token, lecturer, nil
}

// GetProfile retrieves a lecturer by id.
func (s *LecturerService) GetProfile(ctx context.Context, lecturerID int) (*model.Lecturer, error) {
	return s.lecturerRepo.GetByID(ctx, lecturerID)
}

// Create registers a new lecturer with a hashed password.
func (s *LecturerService) Create(ctx context.Context, nidn, name, password string) (*model.Lecturer, error) {
	hash, err := s.authService.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	lecturer := &model.Lecturer{NIDN: nidn, Name: name, PasswordHash: hash}
	if err := s.lecturerRepo.Create(ctx, lecturer); err != nil {
		return nil, fmt.Errorf("create lecturer: %w", err)
	}
	return lecturer, nil
}
