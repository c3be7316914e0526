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

// ContentHandler handles the admin exam content editor.
type ContentHandler struct {
	contentService *service.ContentService
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(contentService *service.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// GetBlocks godoc
// GET /api/v1/admin/exams/:id/blocks
// Returns the full editable content tree, correctness included.
func (h *ContentHandler) GetBlocks(c *gin.Context) {
	examID, ok := paramID(c, "id")
	if !ok {
		return
	}

	tree, err := h.contentService.GetTree(c.Request.Context(), examID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, tree)
}

// PutBlocks godoc
// PUT /api/v1/admin/exams/:id/blocks
// Applies the editor tree as a whole-tree replacement. Deleting answered
// content is refused with a conflict.
func (h *ContentHandler) PutBlocks(c *gin.Context) {
	examID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var tree model.ContentTree
	if fields := validator.Bind(c, &tree); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	updated, err := h.contentService.ReplaceTree(c.Request.Context(), examID, &tree)
	if err != nil {
		if errors.Is(err, service.ErrContentInUse) {
			response.Fail(c, http.StatusConflict, response.ErrDependencyExists)
			return
		}
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, updated)
}

// UpdateSettings godoc
// PATCH /api/v1/admin/exams/:id/settings
// Applies the exam settings editor: title, duration, gate password.
func (h *ContentHandler) UpdateSettings(c *gin.Context) {
	examID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateExamSettingsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.contentService.UpdateSettings(c.Request.Context(), examID, &req)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, exam)
}
