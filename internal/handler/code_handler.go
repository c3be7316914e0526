package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/certifex/certifex-backend/internal/model"
	"github.com/certifex/certifex-backend/internal/response"
	"github.com/certifex/certifex-backend/internal/service"
	"github.com/certifex/certifex-backend/internal/validator"
)

// CodeHandler handles the admin access-code screens.
type CodeHandler struct {
	codeService *service.CodeService
}

// NewCodeHandler creates a new CodeHandler.
func NewCodeHandler(codeService *service.CodeService) *CodeHandler {
	return &CodeHandler{codeService: codeService}
}

// Generate godoc
// POST /api/v1/admin/codes/generate
// Creates a batch of codes and returns their plaintexts exactly once.
func (h *CodeHandler) Generate(c *gin.Context) {
	var req model.GenerateCodesRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	codes, err := h.codeService.Generate(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"codes": codes})
}

// List godoc
// GET /api/v1/admin/exams/:id/codes?page=&per_page=
// Lists codes of an exam. Only hashes are stored, so rows carry usage
// flags and timestamps, never plaintexts.
func (h *CodeHandler) List(c *gin.Context) {
	examID, ok := paramID(c, "id")
	if !ok {
		return
	}

	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 20)

	codes, total, err := h.codeService.List(c.Request.Context(), examID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	available, err := h.codeService.CountAvailable(c.Request.Context(), examID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	totalPages := (int(total) + perPage - 1) / perPage
	response.SuccessWithPagination(c, http.StatusOK, gin.H{
		"codes":     codes,
		"available": available,
	}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages,
	})
}

// SetDisabled godoc
// PATCH /api/v1/admin/codes/:id/disabled
// Toggles a code without consuming it.
func (h *CodeHandler) SetDisabled(c *gin.Context) {
	codeID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Disabled bool `json:"disabled"`
	}
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.codeService.SetDisabled(c.Request.Context(), codeID, req.Disabled); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
