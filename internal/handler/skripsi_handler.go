package handler

import (
	"errors"
	"net/http"

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

// SkripsiHandler serves the thesis workflow for both roles.
type SkripsiHandler struct {
	skripsiService *service.SkripsiService
	mediaService   *service.MediaService
	log            zerolog.Logger
}

// NewSkripsiHandler creates a new SkripsiHandler.
func NewSkripsiHandler(skripsiService *service.SkripsiService, mediaService *service.MediaService, log zerolog.Logger) *SkripsiHandler {
	return &SkripsiHandler{
		skripsiService: skripsiService,
		mediaService:   mediaService,
		log:            log.With().Str("component", "skripsi_handler").Logger(),
	}
}

func (h *SkripsiHandler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrSkripsiExists):
		response.Fail(c, http.StatusConflict, response.ErrSkripsiExists)
	case errors.Is(err, service.ErrSkripsiTransition), errors.Is(err, service.ErrSkripsiLocked):
		response.Fail(c, http.StatusConflict, response.ErrSkripsiTransition)
	case errors.Is(err, service.ErrSkripsiNotOwner):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	default:
		h.log.Error().Err(err).Msg(msg)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// ─── Student side ──────────────────────────────────────────────────

// Create godoc
// POST /api/v1/student/skripsi
func (h *SkripsiHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)
	var req model.CreateSkripsiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}

	skripsi, err := h.skripsiService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		h.fail(c, err, "Create skripsi failed")
		return
	}
	response.Success(c, http.StatusCreated, skripsi)
}

// GetOwn godoc
// GET /api/v1/student/skripsi
func (h *SkripsiHandler) GetOwn(c *gin.Context) {
	claims := middleware.GetClaims(c)
	skripsi, err := h.skripsiService.GetOwn(c.Request.Context(), claims.UserID)
	if err != nil {
		h.fail(c, err, "Get skripsi failed")
		return
	}
	response.Success(c, http.StatusOK, skripsi)
}

// Update godoc
// PUT /api/v1/student/skripsi
func (h *SkripsiHandler) Update(c *gin.Context) {
	claims := middleware.GetClaims(c)
	var req model.UpdateSkripsiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}

	skripsi, err := h.skripsiService.Update(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		h.fail(c, err, "Update skripsi failed")
		return
	}
	response.Success(c, http.StatusOK, skripsi)
}

// UploadDocument godoc
// POST /api/v1/student/skripsi/document
// Multipart upload of the thesis PDF.
func (h *SkripsiHandler) UploadDocument(c *gin.Context) {
	claims := middleware.GetClaims(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	path, err := h.mediaService.SaveUpload(file, header)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFileType):
			response.Fail(c, http.StatusUnsupportedMediaType, response.ErrUnsupportedFile)
		case errors.Is(err, service.ErrFileTooLarge):
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		default:
			h.log.Error().Err(err).Msg("Document upload failed")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	skripsi, err := h.skripsiService.AttachDocument(c.Request.Context(), claims.UserID, path)
	if err != nil {
		h.fail(c, err, "Attach document failed")
		return
	}
	response.Success(c, http.StatusOK, skripsi)
}

// Submit godoc
// POST /api/v1/student/skripsi/submit
func (h *SkripsiHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	skripsi, err := h.skripsiService.Submit(c.Request.Context(), claims.UserID)
	if err != nil {
		h.fail(c, err, "Submit skripsi failed")
		return
	}
	response.Success(c, http.StatusOK, skripsi)
}

// ─── Lecturer side ─────────────────────────────────────────────────

// ListForReview godoc
// GET /api/v1/lecturer/skripsi?page=&limit=
func (h *SkripsiHandler) ListForReview(c *gin.Context) {
	page, limit := paginationParams(c)
	list, total, err := h.skripsiService.ListForReview(c.Request.Context(), page, limit)
	if err != nil {
		h.fail(c, err, "Review queue failed")
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, list, &response.Pagination{
		Page:       page,
		PerPage:    limit,
		TotalItems: total,
		TotalPages: (total + limit - 1) / limit,
	})
}

// ClaimReview godoc
// POST /api/v1/lecturer/skripsi/:skripsi_id/claim
func (h *SkripsiHandler) ClaimReview(c *gin.Context) {
	claims := middleware.GetClaims(c)
	skripsiID, err := uuid.Parse(c.Param("skripsi_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	skripsi, err := h.skripsiService.ClaimReview(c.Request.Context(), skripsiID, claims.UserID)
	if err != nil {
		h.fail(c, err, "Claim review failed")
		return
	}
	response.Success(c, http.StatusOK, skripsi)
}

// Review godoc
// POST /api/v1/lecturer/skripsi/:skripsi_id/review
func (h *SkripsiHandler) Review(c *gin.Context) {
	claims := middleware.GetClaims(c)
	skripsiID, err := uuid.Parse(c.Param("skripsi_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReviewSkripsiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}

	skripsi, err := h.skripsiService.Review(c.Request.Context(), skripsiID, claims.UserID, &req)
	if err != nil {
		h.fail(c, err, "Review skripsi failed")
		return
	}
	response.Success(c, http.StatusOK, skripsi)
}
