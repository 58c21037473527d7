package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/tuwir2002/maligo-backend/internal/middleware"
	"github.com/tuwir2002/maligo-backend/internal/model"
	"github.com/tuwir2002/maligo-backend/internal/response"
	"github.com/tuwir2002/maligo-backend/internal/service"
	"github.com/tuwir2002/maligo-backend/internal/validator"
)

// LecturerHandler serves the lecturer surface: course and exam authoring,
// results, grading and the per-course aggregates.
type LecturerHandler struct {
	courseService  *service.CourseService
	examService    *service.ExamService
	quizService    *service.QuizService
	sessionService *service.SessionService
	rekapService   *service.RekapService
	gradingService *service.GradingService
	studentService *service.StudentService
	log            zerolog.Logger
}

// NewLecturerHandler creates a new LecturerHandler.
func NewLecturerHandler(
	courseService *service.CourseService,
	examService *service.ExamService,
	quizService *service.QuizService,
	sessionService *service.SessionService,
	rekapService *service.RekapService,
	gradingService *service.GradingService,
	studentService *service.StudentService,
	log zerolog.Logger,
) *LecturerHandler {
	return &LecturerHandler{
		courseService:  courseService,
		examService:    examService,
		quizService:    quizService,
		sessionService: sessionService,
		rekapService:   rekapService,
		gradingService: gradingService,
		studentService: studentService,
		log:            log.With().Str("component", "lecturer_handler").Logger(),
	}
}

// fail maps common service errors onto the API error taxonomy.
func (h *LecturerHandler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotCourseOwner):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	default:
		h.log.Error().Err(err).Msg(msg)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// ─── Courses ───────────────────────────────────────────────────────

// ListCourses godoc
// GET /api/v1/lecturer/courses
func (h *LecturerHandler) ListCourses(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courses, err := h.courseService.ListForLecturer(c.Request.Context(), claims.UserID)
	if err != nil {
		h.fail(c, err, "List courses failed")
		return
	}
	response.Success(c, http.StatusOK, courses)
}

// CreateCourse godoc
// POST /api/v1/lecturer/courses
func (h *LecturerHandler) CreateCourse(c *gin.Context) {
	claims := middleware.GetClaims(c)
	var req model.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		h.fail(c, err, "Create course failed")
		return
	}
	response.Success(c, http.StatusCreated, course)
}

// AddMeeting godoc
// POST /api/v1/lecturer/courses/:course_id/meetings
func (h *LecturerHandler) AddMeeting(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}

	meeting, err := h.courseService.AddMeeting(c.Request.Context(), courseID, claims.UserID, &req)
	if err != nil {
		h.fail(c, err, "Add meeting failed")
		return
	}
	response.Success(c, http.StatusCreated, meeting)
}

// CourseOverview godoc
// GET /api/v1/lecturer/courses/:course_id/overview
func (h *LecturerHandler) CourseOverview(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	overview, err := h.rekapService.CourseOverview(c.Request.Context(), courseID, claims.UserID)
	if err != nil {
		h.fail(c, err, "Course overview failed")
		return
	}
	response.Success(c, http.StatusOK, overview)
}

// RecomputeRekap godoc
// POST /api/v1/lecturer/courses/:course_id/rekap/recompute
//
// Fans a recompute job out to every student with submitted answers in the
// course. Useful after bulk essay grading or a weight change.
func (h *LecturerHandler) RecomputeRekap(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	course, err := h.courseService.Get(c.Request.Context(), courseID)
	if err != nil {
		h.fail(c, err, "Course lookup failed")
		return
	}
	if course.LecturerID != claims.UserID {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	h.rekapService.QueueRecompute(c.Request.Context(), courseID)
	response.Success(c, http.StatusAccepted, gin.H{"status": "queued"})
}

// ListStudents godoc
// GET /api/v1/lecturer/students?page=&limit=
func (h *LecturerHandler) ListStudents(c *gin.Context) {
	page, limit := paginationParams(c)
	students, total, err := h.studentService.List(c.Request.Context(), page, limit)
	if err != nil {
		h.fail(c, err, "Student list failed")
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, students, &response.Pagination{
		Page:       page,
		PerPage:    limit,
		TotalItems: int(total),
		TotalPages: (int(total) + limit - 1) / limit,
	})
}

// ─── Exams ─────────────────────────────────────────────────────────

// ListExams godoc
// GET /api/v1/lecturer/courses/:course_id/exams
func (h *LecturerHandler) ListExams(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exams, err := h.examService.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		h.fail(c, err, "List exams failed")
		return
	}
	response.Success(c, http.StatusOK, exams)
}

// CreateExam godoc
// POST /api/v1/lecturer/courses/:course_id/exams
func (h *LecturerHandler) CreateExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), courseID, claims.UserID, &req)
	if err != nil {
		h.fail(c, err, "Create exam failed")
		return
	}
	response.Success(c, http.StatusCreated, exam)
}

// AddQuestion godoc
// POST /api/v1/lecturer/exams/:exam_id/questions
func (h *LecturerHandler) AddQuestion(c *gin.Context) {
	claims := middleware.GetClaims(c)
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.AddQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}

	question, err := h.examService.AddQuestion(c.Request.Context(), examID, claims.UserID, &req)
	if err != nil {
		h.fail(c, err, "Add question failed")
		return
	}
	response.Success(c, http.StatusCreated, question)
}

// PrewarmExam godoc
// POST /api/v1/lecturer/exams/:exam_id/prewarm
// Builds the paper and answer-key caches ahead of the exam window.
func (h *LecturerHandler) PrewarmExam(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.examService.Prewarm(c.Request.Context(), examID); err != nil {
		if errors.Is(err, service.ErrNoQuestions) {
			response.Fail(c, http.StatusConflict, response.ErrNoQuestions)
			return
		}
		h.fail(c, err, "Prewarm failed")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "warmed"})
}

// ExamResults godoc
// GET /api/v1/lecturer/exams/:exam_id/results?page=&limit=
func (h *LecturerHandler) ExamResults(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	page, limit := paginationParams(c)
	results, total, err := h.sessionService.Results(c.Request.Context(), examID, page, limit)
	if err != nil {
		h.fail(c, err, "Exam results failed")
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, results, &response.Pagination{
		Page:       page,
		PerPage:    limit,
		TotalItems: total,
		TotalPages: (total + limit - 1) / limit,
	})
}

// AttemptViolations godoc
// GET /api/v1/lecturer/exams/:exam_id/students/:student_id/violations
func (h *LecturerHandler) AttemptViolations(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	studentID, err := strconv.Atoi(c.Param("student_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	events, err := h.sessionService.Violations(c.Request.Context(), examID, studentID)
	if err != nil {
		h.fail(c, err, "Violation trail failed")
		return
	}
	response.Success(c, http.StatusOK, events)
}

// ─── Quizzes ───────────────────────────────────────────────────────

// CreateQuiz godoc
// POST /api/v1/lecturer/courses/:course_id/quizzes
func (h *LecturerHandler) CreateQuiz(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), courseID, claims.UserID, &req)
	if err != nil {
		h.fail(c, err, "Create quiz failed")
		return
	}
	response.Success(c, http.StatusCreated, quiz)
}

// AddQuizQuestion godoc
// POST /api/v1/lecturer/quizzes/:quiz_id/questions
func (h *LecturerHandler) AddQuizQuestion(c *gin.Context) {
	claims := middleware.GetClaims(c)
	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.AddQuizQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}

	question, err := h.quizService.AddQuestion(c.Request.Context(), quizID, claims.UserID, &req)
	if err != nil {
		h.fail(c, err, "Add quiz question failed")
		return
	}
	response.Success(c, http.StatusCreated, question)
}

// ─── Grading ───────────────────────────────────────────────────────

// UngradedEssays godoc
// GET /api/v1/lecturer/courses/:course_id/essays
func (h *LecturerHandler) UngradedEssays(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	essays, err := h.gradingService.ListUngradedEssays(c.Request.Context(), courseID, claims.UserID)
	if err != nil {
		h.fail(c, err, "Essay queue failed")
		return
	}
	response.Success(c, http.StatusOK, essays)
}

// GradeEssay godoc
// PUT /api/v1/lecturer/answers/:answer_id/grade
func (h *LecturerHandler) GradeEssay(c *gin.Context) {
	claims := middleware.GetClaims(c)
	answerID, err := uuid.Parse(c.Param("answer_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.GradeAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}

	record, err := h.gradingService.GradeEssay(c.Request.Context(), answerID, claims.UserID, req.Score)
	if err != nil {
		h.fail(c, err, "Grade essay failed")
		return
	}
	response.Success(c, http.StatusOK, record)
}

// paginationParams reads ?page= and ?limit= with defaults and bounds.
func paginationParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
