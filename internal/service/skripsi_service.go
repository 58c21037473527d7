package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuwir2002/maligo-backend/internal/model"
	"github.com/tuwir2002/maligo-backend/internal/repository"
)

// Skripsi workflow errors.
var (
	ErrSkripsiExists     = errors.New("student already has a skripsi")
	ErrSkripsiTransition = errors.New("skripsi status transition not allowed")
	ErrSkripsiNotOwner   = errors.New("skripsi belongs to another student")
	ErrSkripsiLocked     = errors.New("skripsi content can only be edited in draft or revision")
)

// SkripsiService orchestrates the thesis workflow: one skripsi per student,
// moving through the DRAFT → SUBMITTED → UNDER_REVIEW → decision graph.
type SkripsiService struct {
	skripsiRepo *repository.SkripsiRepository
}

// NewSkripsiService creates a new SkripsiService.
func NewSkripsiService(skripsiRepo *repository.SkripsiRepository) *SkripsiService {
	return &SkripsiService{skripsiRepo: skripsiRepo}
}

// Create opens a thesis draft for a student without one.
func (s *SkripsiService) Create(ctx context.Context, studentID int, req *model.CreateSkripsiRequest) (*model.Skripsi, error) {
	_, err := s.skripsiRepo.GetByStudent(ctx, studentID)
	if err == nil {
		return nil, ErrSkripsiExists
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check existing skripsi: %w", err)
	}
	return s.skripsiRepo.Create(ctx, studentID, req)
}

// GetOwn retrieves the student's skripsi.
func (s *SkripsiService) GetOwn(ctx context.Context, studentID int) (*model.Skripsi, error) {
	return s.skripsiRepo.GetByStudent(ctx, studentID)
}

// Update edits title and abstract. Only allowed in DRAFT or REVISION.
func (s *SkripsiService) Update(ctx context.Context, studentID int, req *model.UpdateSkripsiRequest) (*model.Skripsi, error) {
	skripsi, err := s.skripsiRepo.GetByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if skripsi.Status != model.SkripsiStatusDraft && skripsi.Status != model.SkripsiStatusRevision {
		return nil, ErrSkripsiLocked
	}

	title := skripsi.Title
	if req.Title != "" {
		title = req.Title
	}
	abstract := skripsi.Abstract
	if req.Abstract != "" {
		abstract = req.Abstract
	}
	if err := s.skripsiRepo.UpdateContent(ctx, skripsi.ID, title, abstract); err != nil {
		return nil, fmt.Errorf("update skripsi: %w", err)
	}
	return s.skripsiRepo.GetByID(ctx, skripsi.ID)
}

// AttachDocument stores an uploaded document path. Only allowed while the
// student can still edit.
func (s *SkripsiService) AttachDocument(ctx context.Context, studentID int, path string) (*model.Skripsi, error) {
	skripsi, err := s.skripsiRepo.GetByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if skripsi.Status != model.SkripsiStatusDraft && skripsi.Status != model.SkripsiStatusRevision {
		return nil, ErrSkripsiLocked
	}
	if err := s.skripsiRepo.SetDocumentPath(ctx, skripsi.ID, path); err != nil {
		return nil, fmt.Errorf("attach document: %w", err)
	}
	return s.skripsiRepo.GetByID(ctx, skripsi.ID)
}

// Submit moves the student's skripsi into SUBMITTED.
func (s *SkripsiService) Submit(ctx context.Context, studentID int) (*model.Skripsi, error) {
	skripsi, err := s.skripsiRepo.GetByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(skripsi.Status, model.SkripsiStatusSubmitted) {
		return nil, ErrSkripsiTransition
	}
	if err := s.skripsiRepo.UpdateStatus(ctx, skripsi.ID, model.SkripsiStatusSubmitted, "", nil); err != nil {
		return nil, fmt.Errorf("submit skripsi: %w", err)
	}
	return s.skripsiRepo.GetByID(ctx, skripsi.ID)
}

// ClaimReview moves a SUBMITTED skripsi to UNDER_REVIEW and records the
// reviewing lecturer as supervisor.
func (s *SkripsiService) ClaimReview(ctx context.Context, skripsiID uuid.UUID, lecturerID int) (*model.Skripsi, error) {
	skripsi, err := s.skripsiRepo.GetByID(ctx, skripsiID)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(skripsi.Status, model.SkripsiStatusUnderReview) {
		return nil, ErrSkripsiTransition
	}
	if err := s.skripsiRepo.UpdateStatus(ctx, skripsiID, model.SkripsiStatusUnderReview, "", &lecturerID); err != nil {
		return nil, fmt.Errorf("claim review: %w", err)
	}
	return s.skripsiRepo.GetByID(ctx, skripsiID)
}

// Review applies a lecturer's decision (REVISION, APPROVED or REJECTED) to a
// skripsi under their review.
func (s *SkripsiService) Review(ctx context.Context, skripsiID uuid.UUID, lecturerID int, req *model.ReviewSkripsiRequest) (*model.Skripsi, error) {
	skripsi, err := s.skripsiRepo.GetByID(ctx, skripsiID)
	if err != nil {
		return nil, err
	}
	if skripsi.SupervisorID == nil || *skripsi.SupervisorID != lecturerID {
		return nil, ErrSkripsiNotOwner
	}
	if !model.CanTransition(skripsi.Status, req.Decision) {
		return nil, ErrSkripsiTransition
	}
	if err := s.skripsiRepo.UpdateStatus(ctx, skripsiID, req.Decision, req.Notes, nil); err != nil {
		return nil, fmt.Errorf("review skripsi: %w", err)
	}
	return s.skripsiRepo.GetByID(ctx, skripsiID)
}

// ListForReview retrieves paginated skripsi awaiting lecturer action.
func (s *SkripsiService) ListForReview(ctx context.Context, page, limit int) ([]model.Skripsi, int, error) {
	return s.skripsiRepo.ListForReview(ctx, page, limit)
}
