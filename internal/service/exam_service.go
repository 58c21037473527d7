package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tuwir2002/maligo-backend/internal/config"
	"github.com/tuwir2002/maligo-backend/internal/model"
	"github.com/tuwir2002/maligo-backend/internal/repository"
)

// ErrNoQuestions rejects starting an exam with an empty paper.
var ErrNoQuestions = errors.New("exam has no questions")

// paperCacheTTL bounds how long a cached paper can outlive an edit. Papers
// are invalidated explicitly on question changes; the TTL is a backstop.
const paperCacheTTL = 6 * time.Hour

// ExamService orchestrates exam authoring and the cached read path students
// hit during an exam. The paper and the answer key live in Redis so the exam
// hot path never queries PostgreSQL.
type ExamService struct {
	examRepo   *repository.ExamRepository
	courseRepo *repository.CourseRepository
	rdb        *redis.Client
	log        zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(examRepo *repository.ExamRepository, courseRepo *repository.CourseRepository, rdb *redis.Client, log zerolog.Logger) *ExamService {
	return &ExamService{
		examRepo:   examRepo,
		courseRepo: courseRepo,
		rdb:        rdb,
		log:        log.With().Str("component", "exam_service").Logger(),
	}
}

// Get retrieves one exam.
func (s *ExamService) Get(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return s.examRepo.GetByID(ctx, id)
}

// ListForStudent retrieves the exam lobby for a student's semester.
func (s *ExamService) ListForStudent(ctx context.Context, semester int) ([]model.Exam, error) {
	return s.examRepo.ListForSemester(ctx, semester)
}

// ListByCourse retrieves a course's exams for its lecturer.
func (s *ExamService) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Exam, error) {
	return s.examRepo.ListByCourse(ctx, courseID)
}

// Create adds an exam to a course the lecturer owns.
func (s *ExamService) Create(ctx context.Context, courseID uuid.UUID, lecturerID int, req *model.CreateExamRequest) (*model.Exam, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.LecturerID != lecturerID {
		return nil, ErrNotCourseOwner
	}

	exam := &model.Exam{
		CourseID:        courseID,
		Title:           req.Title,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: req.DurationMinutes,
	}
	if err := s.examRepo.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}
	return exam, nil
}

// AddQuestion appends a question and invalidates the cached paper.
func (s *ExamService) AddQuestion(ctx context.Context, examID uuid.UUID, lecturerID int, req *model.AddQuestionRequest) (*model.Question, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	course, err := s.courseRepo.GetByID(ctx, exam.CourseID)
	if err != nil {
		return nil, err
	}
	if course.LecturerID != lecturerID {
		return nil, ErrNotCourseOwner
	}

	weight := req.Weight
	if weight == 0 {
		weight = 100
	}
	question := &model.Question{
		ExamID:    examID,
		Text:      req.Text,
		Type:      model.QuestionType(req.Type),
		Options:   req.Options,
		AnswerKey: req.AnswerKey,
		Weight:    weight,
		OrderNum:  req.OrderNum,
	}
	if err := s.examRepo.AddQuestion(ctx, question); err != nil {
		return nil, fmt.Errorf("add question: %w", err)
	}

	s.invalidateCaches(ctx, examID)
	return question, nil
}

// Paper returns the student-facing exam paper, from cache when warm.
func (s *ExamService) Paper(ctx context.Context, examID uuid.UUID) (*model.ExamPaper, error) {
	cacheKey := config.CacheKey.ExamPaperKey(examID.String())

	if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
		paper := &model.ExamPaper{}
		if err := json.Unmarshal([]byte(cached), paper); err == nil {
			return paper, nil
		}
		// Corrupt cache entry: fall through to a rebuild.
		s.rdb.Del(ctx, cacheKey)
	}

	paper, err := s.buildPaper(ctx, examID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(paper); err == nil {
		if err := s.rdb.Set(ctx, cacheKey, payload, paperCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Paper cache write failed")
		}
	}
	return paper, nil
}

func (s *ExamService) buildPaper(ctx context.Context, examID uuid.UUID) (*model.ExamPaper, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	questions, err := s.examRepo.ListQuestions(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	stripped := make([]model.QuestionForStudent, 0, len(questions))
	for _, q := range questions {
		stripped = append(stripped, model.QuestionForStudent{
			ID:       q.ID,
			Text:     q.Text,
			Type:     q.Type,
			Options:  q.Options,
			OrderNum: q.OrderNum,
		})
	}

	return &model.ExamPaper{
		ExamID:          exam.ID,
		CourseID:        exam.CourseID,
		Title:           exam.Title,
		DurationMinutes: exam.DurationMinutes,
		StartTime:       exam.StartTime,
		EndTime:         exam.EndTime,
		Questions:       stripped,
	}, nil
}

// AnswerKey returns the exam's multiple-choice answer key (question id →
// expected value), from cache when warm. Never exposed through a handler.
func (s *ExamService) AnswerKey(ctx context.Context, examID uuid.UUID) (map[string]string, error) {
	cacheKey := config.CacheKey.ExamAnswerKeyKey(examID.String())

	if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
		key := map[string]string{}
		if err := json.Unmarshal([]byte(cached), &key); err == nil {
			return key, nil
		}
		s.rdb.Del(ctx, cacheKey)
	}

	key, err := s.examRepo.AnswerKey(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("load answer key: %w", err)
	}

	if payload, err := json.Marshal(key); err == nil {
		if err := s.rdb.Set(ctx, cacheKey, payload, paperCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Answer key cache write failed")
		}
	}
	return key, nil
}

// Prewarm builds the paper and answer-key caches ahead of the exam window so
// the first student in does not pay the rebuild cost.
func (s *ExamService) Prewarm(ctx context.Context, examID uuid.UUID) error {
	if _, err := s.Paper(ctx, examID); err != nil {
		return err
	}
	_, err := s.AnswerKey(ctx, examID)
	return err
}

func (s *ExamService) invalidateCaches(ctx context.Context, examID uuid.UUID) {
	keys := []string{
		config.CacheKey.ExamPaperKey(examID.String()),
		config.CacheKey.ExamAnswerKeyKey(examID.String()),
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Cache invalidation failed")
	}
}
