package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/tuwir2002/maligo-backend/internal/middleware"
	"github.com/tuwir2002/maligo-backend/internal/model"
	"github.com/tuwir2002/maligo-backend/internal/response"
	"github.com/tuwir2002/maligo-backend/internal/service"
	"github.com/tuwir2002/maligo-backend/internal/validator"
)

// AuthHandler handles student and lecturer authentication endpoints.
type AuthHandler struct {
	studentService  *service.StudentService
	lecturerService *service.LecturerService
	log             zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(studentService *service.StudentService, lecturerService *service.LecturerService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		studentService:  studentService,
		lecturerService: lecturerService,
		log:             log.With().Str("component", "auth_handler").Logger(),
	}
}

// StudentLogin godoc
// POST /api/v1/auth/student/login
func (h *AuthHandler) StudentLogin(c *gin.Context) {
	var req model.StudentLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}

	token, student, err := h.studentService.Login(c.Request.Context(), req.NIM, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		case errors.Is(err, service.ErrSessionAlreadyActive):
			response.Fail(c, http.StatusConflict, response.ErrSessionActive)
		default:
			h.log.Error().Err(err).Msg("Student login failed")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, model.StudentLoginResponse{Token: token, Student: *student})
}

// StudentLogout godoc
// POST /api/v1/student/logout
func (h *AuthHandler) StudentLogout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if err := h.studentService.Logout(c.Request.Context(), claims.UserID); err != nil {
		h.log.Error().Err(err).Int("student_id", claims.UserID).Msg("Logout failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "logged_out"})
}

// StudentProfile godoc
// GET /api/v1/student/profile
func (h *AuthHandler) StudentProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	student, err := h.studentService.GetProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		h.log.Error().Err(err).Msg("Get profile failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, student)
}

// LecturerLogin godoc
// POST /api/v1/auth/lecturer/login
func (h *AuthHandler) LecturerLogin(c *gin.Context) {
	var req model.LecturerLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}

	token, lecturer, err := h.lecturerService.Login(c.Request.Context(), req.NIDN, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		h.log.Error().Err(err).Msg("Lecturer login failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, model.LecturerLoginResponse{Token: token, Lecturer: *lecturer})
}

// LecturerProfile godoc
// GET /api/v1/lecturer/profile
func (h *AuthHandler) LecturerProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	lecturer, err := h.lecturerService.GetProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		h.log.Error().Err(err).Msg("Get profile failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, lecturer)
}
