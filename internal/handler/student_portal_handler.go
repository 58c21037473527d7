package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/tuwir2002/maligo-backend/internal/examflow"
	"github.com/tuwir2002/maligo-backend/internal/middleware"
	"github.com/tuwir2002/maligo-backend/internal/model"
	"github.com/tuwir2002/maligo-backend/internal/response"
	"github.com/tuwir2002/maligo-backend/internal/service"
	"github.com/tuwir2002/maligo-backend/internal/validator"
)

// StudentPortalHandler serves the student-facing surface: dashboard, courses,
// the exam lobby and the live exam session endpoints.
type StudentPortalHandler struct {
	studentService *service.StudentService
	courseService  *service.CourseService
	examService    *service.ExamService
	quizService    *service.QuizService
	sessionService *service.SessionService
	rekapService   *service.RekapService
	log            zerolog.Logger
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(
	studentService *service.StudentService,
	courseService *service.CourseService,
	examService *service.ExamService,
	quizService *service.QuizService,
	sessionService *service.SessionService,
	rekapService *service.RekapService,
	log zerolog.Logger,
) *StudentPortalHandler {
	return &StudentPortalHandler{
		studentService: studentService,
		courseService:  courseService,
		examService:    examService,
		quizService:    quizService,
		sessionService: sessionService,
		rekapService:   rekapService,
		log:            log.With().Str("component", "student_portal_handler").Logger(),
	}
}

// Dashboard godoc
// GET /api/v1/student/dashboard
func (h *StudentPortalHandler) Dashboard(c *gin.Context) {
	claims := middleware.GetClaims(c)
	dashboard, err := h.rekapService.Dashboard(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		h.log.Error().Err(err).Msg("Dashboard build failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, dashboard)
}

// ListCourses godoc
// GET /api/v1/student/courses
func (h *StudentPortalHandler) ListCourses(c *gin.Context) {
	claims := middleware.GetClaims(c)
	student, err := h.studentService.GetProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	courses, err := h.courseService.ListForStudent(c.Request.Context(), student.Semester)
	if err != nil {
		h.log.Error().Err(err).Msg("List courses failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, courses)
}

// ListMeetings godoc
// GET /api/v1/student/courses/:course_id/meetings
func (h *StudentPortalHandler) ListMeetings(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	meetings, err := h.courseService.ListMeetings(c.Request.Context(), courseID)
	if err != nil {
		h.log.Error().Err(err).Msg("List meetings failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, meetings)
}

// ExamLobby godoc
// GET /api/v1/student/exams
func (h *StudentPortalHandler) ExamLobby(c *gin.Context) {
	claims := middleware.GetClaims(c)
	student, err := h.studentService.GetProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	exams, err := h.examService.ListForStudent(c.Request.Context(), student.Semester)
	if err != nil {
		h.log.Error().Err(err).Msg("Exam lobby failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, exams)
}

// ─── Exam session ──────────────────────────────────────────────────

// StartExam godoc
// POST /api/v1/student/exams/:exam_id/start
// Joins the exam and returns the paper with the initial session state.
func (h *StudentPortalHandler) StartExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	state, err := h.sessionService.Start(c.Request.Context(), examID, claims.UserID, claims.NIM)
	if err != nil {
		h.failSession(c, err)
		return
	}

	paper, err := h.examService.Paper(c.Request.Context(), examID)
	if err != nil {
		h.log.Error().Err(err).Msg("Paper load failed after start")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"paper": paper, "session": state})
}

// SessionState godoc
// GET /api/v1/student/exams/:exam_id/session
func (h *StudentPortalHandler) SessionState(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	state, err := h.sessionService.State(examID, claims.UserID)
	if err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// RecordAnswer godoc
// PUT /api/v1/student/exams/:exam_id/answers/:question_id
// HTTP fallback for the WebSocket autosave.
func (h *StudentPortalHandler) RecordAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.RecordAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}

	if err := h.sessionService.RecordAnswer(c.Request.Context(), examID, claims.UserID, questionID, req.Value); err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "saved"})
}

// ReportViolation godoc
// POST /api/v1/student/exams/:exam_id/violations
func (h *StudentPortalHandler) ReportViolation(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReportViolationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}
	if !model.KnownViolationKind(req.Kind) {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	warning, err := h.sessionService.ReportViolation(c.Request.Context(), examID, claims.UserID, req.Kind, req.Detail)
	if err != nil && warning == nil {
		h.failSession(c, err)
		return
	}
	// A debounced duplicate produces no warning; the client shows nothing.
	if warning == nil {
		response.Success(c, http.StatusOK, gin.H{"counted": false})
		return
	}
	response.Success(c, http.StatusOK, gin.H{"counted": true, "warning": warning})
}

// SubmitExam godoc
// POST /api/v1/student/exams/:exam_id/submit
func (h *StudentPortalHandler) SubmitExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.sessionService.Submit(c.Request.Context(), examID, claims.UserID); err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "submitted"})
}

// failSession maps examflow errors onto the API error taxonomy.
func (h *StudentPortalHandler) failSession(c *gin.Context, err error) {
	switch {
	case errors.Is(err, examflow.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, examflow.ErrOutsideWindow):
		response.Fail(c, http.StatusForbidden, response.ErrOutsideWindow)
	case errors.Is(err, examflow.ErrNotActive):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotActive)
	case errors.Is(err, examflow.ErrSubmitGateClosed):
		response.Fail(c, http.StatusForbidden, response.ErrSubmitGateClosed)
	case errors.Is(err, examflow.ErrUnknownQuestion):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusConflict, response.ErrNoQuestions)
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		h.log.Error().Err(err).Msg("Session operation failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrSubmissionFailed)
	}
}

// ─── Quizzes ───────────────────────────────────────────────────────

// ListQuizzes godoc
// GET /api/v1/student/courses/:course_id/quizzes
func (h *StudentPortalHandler) ListQuizzes(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	quizzes, err := h.quizService.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		h.log.Error().Err(err).Msg("List quizzes failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, quizzes)
}

// QuizQuestions godoc
// GET /api/v1/student/quizzes/:quiz_id/questions
func (h *StudentPortalHandler) QuizQuestions(c *gin.Context) {
	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	questions, err := h.quizService.Questions(c.Request.Context(), quizID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		h.log.Error().Err(err).Msg("Quiz questions failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, questions)
}

// AnswerQuiz godoc
// POST /api/v1/student/quizzes/:quiz_id/questions/:question_id/answer
// Quiz answers are graded instantly against the key.
func (h *StudentPortalHandler) AnswerQuiz(c *gin.Context) {
	claims := middleware.GetClaims(c)
	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.RecordAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}

	record, err := h.quizService.Answer(c.Request.Context(), claims.UserID, quizID, questionID, req.Value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		h.log.Error().Err(err).Msg("Quiz answer failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, record)
}

// SessionHistory godoc
// GET /api/v1/student/sessions
func (h *StudentPortalHandler) SessionHistory(c *gin.Context) {
	claims := middleware.GetClaims(c)
	sessions, err := h.sessionService.History(c.Request.Context(), claims.UserID)
	if err != nil {
		h.log.Error().Err(err).Msg("Session history failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, sessions)
}
