package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tuwir2002/maligo-backend/internal/config"
	"github.com/tuwir2002/maligo-backend/internal/handler"
	"github.com/tuwir2002/maligo-backend/internal/middleware"
	"github.com/tuwir2002/maligo-backend/internal/response"
	"github.com/tuwir2002/maligo-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	StudentPortal *handler.StudentPortalHandler
	Lecturer      *handler.LecturerHandler
	Skripsi       *handler.SkripsiHandler
	Monitor       *handler.MonitorHandler
	WS            *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Serve uploaded documents statically with aggressive caching (1 year).
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/student/login", handlers.Auth.StudentLogin)
		auth.POST("/lecturer/login", handlers.Auth.LecturerLogin)
	}

	// ─── 2. Student Group (JWT + Single Device) ────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		studentAPI.POST("/logout", handlers.Auth.StudentLogout)
		studentAPI.GET("/profile", handlers.Auth.StudentProfile)
		studentAPI.GET("/dashboard", handlers.StudentPortal.Dashboard)

		studentAPI.GET("/courses", handlers.StudentPortal.ListCourses)
		studentAPI.GET("/courses/:course_id/meetings", handlers.StudentPortal.ListMeetings)
		studentAPI.GET("/courses/:course_id/quizzes", handlers.StudentPortal.ListQuizzes)

		studentAPI.GET("/quizzes/:quiz_id/questions", handlers.StudentPortal.QuizQuestions)
		studentAPI.POST("/quizzes/:quiz_id/questions/:question_id/answer", handlers.StudentPortal.AnswerQuiz)

		studentAPI.GET("/exams", handlers.StudentPortal.ExamLobby)
		studentAPI.POST("/exams/:exam_id/start", handlers.StudentPortal.StartExam)
		studentAPI.GET("/exams/:exam_id/session", handlers.StudentPortal.SessionState)
		studentAPI.PUT("/exams/:exam_id/answers/:question_id", handlers.StudentPortal.RecordAnswer)
		studentAPI.POST("/exams/:exam_id/violations", handlers.StudentPortal.ReportViolation)
		studentAPI.POST("/exams/:exam_id/submit", handlers.StudentPortal.SubmitExam)
		studentAPI.GET("/sessions", handlers.StudentPortal.SessionHistory)

		studentAPI.POST("/skripsi", handlers.Skripsi.Create)
		studentAPI.GET("/skripsi", handlers.Skripsi.GetOwn)
		studentAPI.PUT("/skripsi", handlers.Skripsi.Update)
		studentAPI.POST("/skripsi/document", handlers.Skripsi.UploadDocument)
		studentAPI.POST("/skripsi/submit", handlers.Skripsi.Submit)
	}

	// ─── 3. WebSocket Group (Student WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(authService))
	{
		ws.GET("/student/exams/:exam_id/stream", handlers.WS.ExamStream)
	}

	// ─── 4. Lecturer Group (JWT) ───────────────────────────────────────
	lecturerAPI := router.Group("/api/v1/lecturer")
	lecturerAPI.Use(middleware.RequireLecturerJWT(authService))
	{
		lecturerAPI.GET("/profile", handlers.Auth.LecturerProfile)

		lecturerAPI.GET("/courses", handlers.Lecturer.ListCourses)
		lecturerAPI.POST("/courses", handlers.Lecturer.CreateCourse)
		lecturerAPI.POST("/courses/:course_id/meetings", handlers.Lecturer.AddMeeting)
		lecturerAPI.GET("/courses/:course_id/overview", handlers.Lecturer.CourseOverview)
		lecturerAPI.GET("/courses/:course_id/exams", handlers.Lecturer.ListExams)
		lecturerAPI.POST("/courses/:course_id/exams", handlers.Lecturer.CreateExam)
		lecturerAPI.POST("/courses/:course_id/quizzes", handlers.Lecturer.CreateQuiz)
		lecturerAPI.GET("/courses/:course_id/essays", handlers.Lecturer.UngradedEssays)
		lecturerAPI.POST("/courses/:course_id/rekap/recompute", handlers.Lecturer.RecomputeRekap)

		lecturerAPI.GET("/students", handlers.Lecturer.ListStudents)

		lecturerAPI.POST("/exams/:exam_id/questions", handlers.Lecturer.AddQuestion)
		lecturerAPI.POST("/exams/:exam_id/prewarm", handlers.Lecturer.PrewarmExam)
		lecturerAPI.GET("/exams/:exam_id/results", handlers.Lecturer.ExamResults)
		lecturerAPI.GET("/exams/:exam_id/students/:student_id/violations", handlers.Lecturer.AttemptViolations)
		lecturerAPI.GET("/exams/:exam_id/monitor", handlers.Monitor.MonitorExamSSE)

		lecturerAPI.POST("/quizzes/:quiz_id/questions", handlers.Lecturer.AddQuizQuestion)

		lecturerAPI.PUT("/answers/:answer_id/grade", handlers.Lecturer.GradeEssay)

		lecturerAPI.GET("/skripsi", handlers.Skripsi.ListForReview)
		lecturerAPI.POST("/skripsi/:skripsi_id/claim", handlers.Skripsi.ClaimReview)
		lecturerAPI.POST("/skripsi/:skripsi_id/review", handlers.Skripsi.Review)
	}

	return router
}
