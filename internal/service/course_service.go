package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tuwir2002/maligo-backend/internal/model"
	"github.com/tuwir2002/maligo-backend/internal/repository"
)

// ErrNotCourseOwner rejects lecturer actions on courses they do not teach.
var ErrNotCourseOwner = errors.New("course is owned by another lecturer")

// CourseService orchestrates course and meeting business logic.
type CourseService struct {
	courseRepo *repository.CourseRepository
}

// NewCourseService creates a new CourseService.
func NewCourseService(courseRepo *repository.CourseRepository) *CourseService {
	return &CourseService{courseRepo: courseRepo}
}

// Get retrieves one course.
func (s *CourseService) Get(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	return s.courseRepo.GetByID(ctx, id)
}

// ListForStudent retrieves the courses of the student's current semester.
func (s *CourseService) ListForStudent(ctx context.Context, semester int) ([]model.Course, error) {
	return s.courseRepo.ListBySemester(ctx, semester)
}

// ListForLecturer retrieves the courses a lecturer teaches.
func (s *CourseService) ListForLecturer(ctx context.Context, lecturerID int) ([]model.Course, error) {
	return s.courseRepo.ListByLecturer(ctx, lecturerID)
}

// Create adds a course owned by the lecturer.
func (s *CourseService) Create(ctx context.Context, lecturerID int, req *model.CreateCourseRequest) (*model.Course, error) {
	course := &model.Course{
		Code:       req.Code,
		Name:       req.Name,
		Semester:   req.Semester,
		SKS:        req.SKS,
		LecturerID: lecturerID,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return course, nil
}

// AddMeeting records a pertemuan on a course the lecturer owns.
func (s *CourseService) AddMeeting(ctx context.Context, courseID uuid.UUID, lecturerID int, req *model.CreateMeetingRequest) (*model.Meeting, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.LecturerID != lecturerID {
		return nil, ErrNotCourseOwner
	}

	meeting := &model.Meeting{
		CourseID: courseID,
		Number:   req.Number,
		Topic:    req.Topic,
		HeldAt:   req.HeldAt,
	}
	if err := s.courseRepo.AddMeeting(ctx, meeting); err != nil {
		return nil, fmt.Errorf("add meeting: %w", err)
	}
	return meeting, nil
}

// ListMeetings retrieves a course's meetings in order.
func (s *CourseService) ListMeetings(ctx context.Context, courseID uuid.UUID) ([]model.Meeting, error) {
	return s.courseRepo.ListMeetings(ctx, courseID)
}
