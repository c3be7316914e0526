package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/certifex/certifex-backend/internal/model"
	"github.com/certifex/certifex-backend/internal/response"
	"github.com/certifex/certifex-backend/internal/service"
	"github.com/certifex/certifex-backend/internal/validator"
)

// ExamHandler handles the public exam endpoints: config, gate check and
// the candidate-start path.
type ExamHandler struct {
	contentService *service.ContentService
	accessService  *service.AccessService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(contentService *service.ContentService, accessService *service.AccessService) *ExamHandler {
	return &ExamHandler{
		contentService: contentService,
		accessService:  accessService,
	}
}

// GetConfig godoc
// GET /api/v1/exam/:id/config
// Returns the candidate-facing exam config: title, duration, enabled blocks.
func (h *ExamHandler) GetConfig(c *gin.Context) {
	examID, ok := paramID(c, "id")
	if !ok {
		return
	}

	cfg, err := h.contentService.GetExamConfig(c.Request.Context(), examID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, cfg)
}

// VerifyGate godoc
// POST /api/v1/exam/gate/verify
// Checks the exam's gate password.
func (h *ExamHandler) VerifyGate(c *gin.Context) {
	var req model.GateVerifyRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.accessService.VerifyGate(c.Request.Context(), &req); err != nil {
		if errors.Is(err, service.ErrGateMismatch) {
			response.Fail(c, http.StatusUnauthorized, response.ErrGatePasswordWrong)
			return
		}
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"verified": true})
}

// StartSession godoc
// POST /api/v1/exam/session/start
// Opens a session identified by candidate name and code.
func (h *ExamHandler) StartSession(c *gin.Context) {
	var req model.StartSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	out, err := h.accessService.StartSession(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionLive):
			response.Fail(c, http.StatusConflict, response.ErrSessionExists)
		case errors.Is(err, service.ErrExamHasNoContent):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		default:
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		}
		return
	}

	response.Success(c, http.StatusCreated, out)
}
