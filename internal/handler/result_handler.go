package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/certifex/certifex-backend/internal/model"
	"github.com/certifex/certifex-backend/internal/response"
	"github.com/certifex/certifex-backend/internal/service"
)

// ResultHandler handles the admin results screens.
type ResultHandler struct {
	sessionService *service.SessionService
	mediaService   *service.MediaService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(sessionService *service.SessionService, mediaService *service.MediaService) *ResultHandler {
	return &ResultHandler{
		sessionService: sessionService,
		mediaService:   mediaService,
	}
}

// ListResults godoc
// GET /api/v1/admin/exams/:id/results?page=&per_page=&search=&status=
// Lists session results for an exam with derived statuses.
func (h *ResultHandler) ListResults(c *gin.Context) {
	examID, ok := paramID(c, "id")
	if !ok {
		return
	}

	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 20)

	var status *model.SessionStatus
	if raw := c.Query("status"); raw != "" {
		st := model.SessionStatus(raw)
		switch st {
		case model.SessionStatusActive, model.SessionStatusCompleted, model.SessionStatusExpired:
			status = &st
		default:
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
	}

	results, total, err := h.sessionService.ListResults(c.Request.Context(), examID, page, perPage, querySearch(c), status)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	totalPages := (int(total) + perPage - 1) / perPage
	response.SuccessWithPagination(c, http.StatusOK, results, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages,
	})
}

// GetResult godoc
// GET /api/v1/admin/results/:sid
// Returns one session's full result: freshly computed block statistics
// and the answer-by-answer review.
func (h *ResultHandler) GetResult(c *gin.Context) {
	sessionID, ok := paramID(c, "sid")
	if !ok {
		return
	}

	out, err := h.sessionService.GetResult(c.Request.Context(), sessionID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, out)
}

// GetResultMedia godoc
// GET /api/v1/admin/results/:sid/media
// Streams the session's proctoring recording.
func (h *ResultHandler) GetResultMedia(c *gin.Context) {
	sessionID, ok := paramID(c, "sid")
	if !ok {
		return
	}

	path, err := h.mediaService.SessionRecordingPath(sessionID)
	if err != nil {
		if errors.Is(err, service.ErrNoMedia) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.Header("Content-Type", "video/webm")
	c.File(path)
}

// Delete godoc
// DELETE /api/v1/admin/results/:sid
// Purges a session, its answer ledger and any proctoring recording.
func (h *ResultHandler) Delete(c *gin.Context) {
	sessionID, ok := paramID(c, "sid")
	if !ok {
		return
	}

	if err := h.sessionService.DeleteResult(c.Request.Context(), sessionID); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	if err := h.mediaService.RemoveSessionRecording(sessionID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ForceClose godoc
// POST /api/v1/admin/results/:sid/close
// Deactivates a running session without scoring it.
func (h *ResultHandler) ForceClose(c *gin.Context) {
	sessionID, ok := paramID(c, "sid")
	if !ok {
		return
	}

	if err := h.sessionService.ForceClose(c.Request.Context(), sessionID); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
