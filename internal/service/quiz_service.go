package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tuwir2002/maligo-backend/internal/model"
	"github.com/tuwir2002/maligo-backend/internal/repository"
)

// QuizService orchestrates quiz authoring and answering. Quizzes are graded
// immediately on answer: every question is multiple-choice with a key.
type QuizService struct {
	quizRepo     *repository.QuizRepository
	courseRepo   *repository.CourseRepository
	answerRepo   *repository.AnswerRepository
	rekapService *RekapService
	log          zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(quizRepo *repository.QuizRepository, courseRepo *repository.CourseRepository, answerRepo *repository.AnswerRepository, rekapService *RekapService, log zerolog.Logger) *QuizService {
	return &QuizService{
		quizRepo:     quizRepo,
		courseRepo:   courseRepo,
		answerRepo:   answerRepo,
		rekapService: rekapService,
		log:          log.With().Str("component", "quiz_service").Logger(),
	}
}

// Create adds a quiz to a course the lecturer owns.
func (s *QuizService) Create(ctx context.Context, courseID uuid.UUID, lecturerID int, req *model.CreateQuizRequest) (*model.Quiz, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.LecturerID != lecturerID {
		return nil, ErrNotCourseOwner
	}

	quiz := &model.Quiz{
		CourseID:  courseID,
		MeetingID: req.MeetingID,
		Title:     req.Title,
	}
	if err := s.quizRepo.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return quiz, nil
}

// AddQuestion appends a multiple-choice question to a quiz.
func (s *QuizService) AddQuestion(ctx context.Context, quizID uuid.UUID, lecturerID int, req *model.AddQuizQuestionRequest) (*model.QuizQuestion, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	course, err := s.courseRepo.GetByID(ctx, quiz.CourseID)
	if err != nil {
		return nil, err
	}
	if course.LecturerID != lecturerID {
		return nil, ErrNotCourseOwner
	}

	question := &model.QuizQuestion{
		QuizID:    quizID,
		Text:      req.Text,
		Options:   req.Options,
		AnswerKey: req.AnswerKey,
		OrderNum:  req.OrderNum,
	}
	if err := s.quizRepo.AddQuestion(ctx, question); err != nil {
		return nil, fmt.Errorf("add quiz question: %w", err)
	}
	return question, nil
}

// ListByCourse retrieves a course's quizzes.
func (s *QuizService) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Quiz, error) {
	return s.quizRepo.ListByCourse(ctx, courseID)
}

// Questions retrieves a quiz's questions stripped of their answer keys.
func (s *QuizService) Questions(ctx context.Context, quizID uuid.UUID) ([]model.QuizQuestion, error) {
	questions, err := s.quizRepo.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		questions[i].AnswerKey = ""
	}
	return questions, nil
}

// Answer grades one quiz answer against the key (100 or 0) and stores it as a
// submitted record. A re-answer overwrites the previous score. The rekap
// recompute for the course is queued asynchronously.
func (s *QuizService) Answer(ctx context.Context, studentID int, quizID, questionID uuid.UUID, value string) (*model.AnswerRecord, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	key, err := s.quizRepo.AnswerKey(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("load answer key: %w", err)
	}
	expected, ok := key[questionID.String()]
	if !ok {
		return nil, fmt.Errorf("question %s: not part of quiz %s", questionID, quizID)
	}

	score := 0.0
	if value == expected {
		score = 100.0
	}

	record := model.AnswerRecord{
		StudentID:   studentID,
		Category:    model.AnswerCategoryQuiz,
		QuestionID:  questionID,
		SourceID:    quizID,
		AnswerValue: value,
		Score:       &score,
	}
	records := []model.AnswerRecord{record}
	if err := s.answerRepo.SubmitBatch(ctx, records); err != nil {
		return nil, fmt.Errorf("store quiz answer: %w", err)
	}

	s.rekapService.QueueRecomputeStudent(ctx, studentID, quiz.CourseID)
	return &records[0], nil
}
