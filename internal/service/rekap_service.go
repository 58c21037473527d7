package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tuwir2002/maligo-backend/internal/config"
	"github.com/tuwir2002/maligo-backend/internal/grading"
	"github.com/tuwir2002/maligo-backend/internal/model"
	"github.com/tuwir2002/maligo-backend/internal/repository"
)

// rekapJob is the payload queued for the rekap worker.
type rekapJob struct {
	StudentID int       `json:"student_id"`
	CourseID  uuid.UUID `json:"course_id"`
}

// CourseOverview is the lecturer's per-course aggregate view.
type CourseOverview struct {
	CourseID     uuid.UUID            `json:"course_id"`
	ClassAverage float64              `json:"class_average"`
	Distribution grading.Distribution `json:"distribution"`
	StudentCount int                  `json:"student_count"`
}

// RekapService builds the rekapitulasi dashboards. All score arithmetic
// delegates to the grading package; this service only assembles inputs and
// shapes outputs.
type RekapService struct {
	rekapRepo   *repository.RekapRepository
	answerRepo  *repository.AnswerRepository
	courseRepo  *repository.CourseRepository
	studentRepo *repository.StudentRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewRekapService creates a new RekapService.
func NewRekapService(
	rekapRepo *repository.RekapRepository,
	answerRepo *repository.AnswerRepository,
	courseRepo *repository.CourseRepository,
	studentRepo *repository.StudentRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *RekapService {
	return &RekapService{
		rekapRepo:   rekapRepo,
		answerRepo:  answerRepo,
		courseRepo:  courseRepo,
		studentRepo: studentRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "rekap_service").Logger(),
	}
}

// Recompute rebuilds one (student, course) rekapitulasi row from the answer
// records. Called by the rekap worker; safe to call repeatedly.
func (s *RekapService) Recompute(ctx context.Context, studentID int, courseID uuid.UUID) error {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return fmt.Errorf("get course: %w", err)
	}

	answers, err := s.answerRepo.ListByStudentCourse(ctx, studentID, courseID)
	if err != nil {
		return fmt.Errorf("list answers: %w", err)
	}
	records := grading.CollectRecords(course.Code, answers)

	answered, total, err := s.answerRepo.TaskCounts(ctx, studentID, courseID)
	if err != nil {
		return fmt.Errorf("task counts: %w", err)
	}

	rekap := &model.Rekapitulasi{
		StudentID:      studentID,
		CourseID:       courseID,
		ExamAverage:    grading.CourseAverage(records.ExamScores),
		QuizAverage:    grading.CourseAverage(records.QuizScores),
		WeightedScore:  grading.StudentCourseScore(records, grading.DefaultWeights),
		CompletionRate: grading.CompletionRate(answered, total),
	}
	if err := s.rekapRepo.Upsert(ctx, rekap); err != nil {
		return fmt.Errorf("upsert rekap: %w", err)
	}

	s.log.Debug().Int("student_id", studentID).Str("course_id", courseID.String()).
		Float64("weighted_score", rekap.WeightedScore).Msg("Rekap recomputed")
	return nil
}

// Dashboard assembles the student home screen. Missing pieces degrade to
// zeros with a warning attached rather than failing the whole view.
func (s *RekapService) Dashboard(ctx context.Context, studentID int) (*model.StudentDashboard, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	dashboard := &model.StudentDashboard{Student: *student}

	courses, err := s.rekapRepo.ListByStudent(ctx, studentID)
	if err != nil {
		s.log.Warn().Err(err).Int("student_id", studentID).Msg("Rekap list failed, dashboard degrades to zeros")
		dashboard.Warnings = append(dashboard.Warnings, "Data rekapitulasi sementara tidak tersedia.")
		return dashboard, nil
	}
	dashboard.Courses = courses

	scores := make([]float64, 0, len(courses))
	var completed, totalCourses int
	for _, c := range courses {
		scores = append(scores, c.WeightedScore)
		totalCourses++
		if c.CompletionRate >= 100 {
			completed++
		}
	}
	dashboard.OverallAverage = grading.CourseAverage(scores)
	dashboard.CompletionRate = grading.CompletionRate(completed, totalCourses)
	return dashboard, nil
}

// CourseOverview assembles the lecturer's class-wide aggregate for a course.
func (s *RekapService) CourseOverview(ctx context.Context, courseID uuid.UUID, lecturerID int) (*CourseOverview, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.LecturerID != lecturerID {
		return nil, ErrNotCourseOwner
	}

	scores, err := s.rekapRepo.CourseScores(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("course scores: %w", err)
	}

	return &CourseOverview{
		CourseID:     courseID,
		ClassAverage: grading.CourseAverage(scores),
		Distribution: grading.ScoreDistribution(scores),
		StudentCount: len(scores),
	}, nil
}

// QueueRecompute schedules a rekap rebuild for every student touched by a
// grading event on the course.
func (s *RekapService) QueueRecompute(ctx context.Context, courseID uuid.UUID) {
	studentIDs, err := s.rekapRepo.StudentIDsByCourse(ctx, courseID)
	if err != nil {
		s.log.Warn().Err(err).Str("course_id", courseID.String()).Msg("Recompute fan-out failed")
		return
	}
	for _, id := range studentIDs {
		s.QueueRecomputeStudent(ctx, id, courseID)
	}
}

// QueueRecomputeStudent schedules a rekap rebuild for one (student, course).
func (s *RekapService) QueueRecomputeStudent(ctx context.Context, studentID int, courseID uuid.UUID) {
	payload, err := json.Marshal(rekapJob{StudentID: studentID, CourseID: courseID})
	if err != nil {
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.RecomputeRekapQueue, payload).Err(); err != nil {
		s.log.Warn().Err(err).Int("student_id", studentID).Msg("Rekap recompute enqueue failed")
	}
}
