package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/certifex/certifex-backend/internal/middleware"
	"github.com/certifex/certifex-backend/internal/model"
	"github.com/certifex/certifex-backend/internal/response"
	"github.com/certifex/certifex-backend/internal/service"
	"github.com/certifex/certifex-backend/internal/validator"
)

// SessionHandler handles the session-scoped candidate endpoints. Every
// route is behind RequireSessionToken, which resolves the bearer token
// and checks the :sid ownership.
type SessionHandler struct {
	sessionService *service.SessionService
	answerService  *service.AnswerService
	mediaService   *service.MediaService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(
	sessionService *service.SessionService,
	answerService *service.AnswerService,
	mediaService *service.MediaService,
) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		answerService:  answerService,
		mediaService:   mediaService,
	}
}

// GetQuestions godoc
// GET /api/v1/exam/session/:sid/questions?block_id=N
// Serves one block of the session's frozen question draw.
func (h *SessionHandler) GetQuestions(c *gin.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	blockID, err := strconv.ParseInt(c.Query("block_id"), 10, 64)
	if err != nil || blockID < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	out, err := h.sessionService.GetBlockQuestions(c.Request.Context(), session, blockID)
	if err != nil {
		if errors.Is(err, service.ErrBlockNotInDraw) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, out)
}

// RecordAnswer godoc
// POST /api/v1/exam/session/:sid/answer
// Stores one answer, replacing any earlier answer to the same question.
func (h *SessionHandler) RecordAnswer(c *gin.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.RecordAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	out, err := h.answerService.Record(c.Request.Context(), session, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyFinished):
			response.Fail(c, http.StatusConflict, response.ErrSessionFinished)
		case errors.Is(err, service.ErrSessionNotLive):
			response.Fail(c, http.StatusForbidden, response.ErrSessionNotActive)
		case errors.Is(err, service.ErrQuestionNotInSession):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrQuestionMismatch)
		case errors.Is(err, service.ErrOptionWrongQuestion):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrOptionMismatch)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, out)
}

// Finish godoc
// POST /api/v1/exam/session/:sid/finish
// Closes the session exactly once and returns the final score.
func (h *SessionHandler) Finish(c *gin.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	out, err := h.sessionService.Finish(c.Request.Context(), session)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyFinished) {
			response.Fail(c, http.StatusConflict, response.ErrSessionFinished)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, out)
}

// UploadMedia godoc
// POST /api/v1/exam/session/:sid/media
// Appends one proctoring recording chunk. chunk_index 0 restarts the
// recording; the response carries the next expected index.
func (h *SessionHandler) UploadMedia(c *gin.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	chunkIndex, err := strconv.Atoi(c.PostForm("chunk_index"))
	if err != nil || chunkIndex < 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	file, err := c.FormFile("chunk")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	src, err := file.Open()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	defer src.Close()

	next, err := h.mediaService.AppendSessionChunk(session.ID, chunkIndex, file.Size, src)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrChunkOutOfOrder):
			response.Success(c, http.StatusConflict, gin.H{"next_chunk_index": next})
		case errors.Is(err, service.ErrUploadTooLarge):
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"next_chunk_index": next})
}
