package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tuwir2002/maligo-backend/internal/model"
	"github.com/tuwir2002/maligo-backend/internal/repository"
)

// GradingService handles the lecturer's manual grading of essay answers.
// Multiple-choice answers are machine-graded at submission and never pass
// through here.
type GradingService struct {
	answerRepo   *repository.AnswerRepository
	examRepo     *repository.ExamRepository
	courseRepo   *repository.CourseRepository
	rekapService *RekapService
	log          zerolog.Logger
}

// NewGradingService creates a new GradingService.
func NewGradingService(answerRepo *repository.AnswerRepository, examRepo *repository.ExamRepository, courseRepo *repository.CourseRepository, rekapService *RekapService, log zerolog.Logger) *GradingService {
	return &GradingService{
		answerRepo:   answerRepo,
		examRepo:     examRepo,
		courseRepo:   courseRepo,
		rekapService: rekapService,
		log:          log.With().Str("component", "grading_service").Logger(),
	}
}

// ListUngradedEssays retrieves the grading queue for a course the lecturer owns.
func (s *GradingService) ListUngradedEssays(ctx context.Context, courseID uuid.UUID, lecturerID int) ([]model.AnswerRecord, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.LecturerID != lecturerID {
		return nil, ErrNotCourseOwner
	}
	return s.answerRepo.ListUngradedEssays(ctx, courseID)
}

// GradeEssay records a score on one essay answer and queues the student's
// rekap recompute.
func (s *GradingService) GradeEssay(ctx context.Context, answerID uuid.UUID, lecturerID int, score float64) (*model.AnswerRecord, error) {
	answer, err := s.answerRepo.GetByID(ctx, answerID)
	if err != nil {
		return nil, err
	}

	exam, err := s.examRepo.GetByID(ctx, answer.SourceID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	course, err := s.courseRepo.GetByID(ctx, exam.CourseID)
	if err != nil {
		return nil, err
	}
	if course.LecturerID != lecturerID {
		return nil, ErrNotCourseOwner
	}

	if err := s.answerRepo.SetScore(ctx, answerID, score); err != nil {
		return nil, fmt.Errorf("set score: %w", err)
	}

	s.rekapService.QueueRecomputeStudent(ctx, answer.StudentID, course.ID)
	return s.answerRepo.GetByID(ctx, answerID)
}
