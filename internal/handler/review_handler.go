package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/certifex/certifex-backend/internal/middleware"
	"github.com/certifex/certifex-backend/internal/model"
	"github.com/certifex/certifex-backend/internal/response"
	"github.com/certifex/certifex-backend/internal/service"
	"github.com/certifex/certifex-backend/internal/validator"
)

// ReviewHandler handles ratings and comments on certified users.
type ReviewHandler struct {
	reviewService *service.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// GetSummary godoc
// GET /api/v1/users/:id/reviews
// Aggregated ratings and comments for one user. When called with a
// token, the response includes the caller's own score.
func (h *ReviewHandler) GetSummary(c *gin.Context) {
	targetID, ok := paramID(c, "id")
	if !ok {
		return
	}

	out, err := h.reviewService.GetSummary(c.Request.Context(), targetID, GetClaimsActorID(c))
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, out)
}

// SetRating godoc
// PUT /api/v1/users/:id/rating
// Records the caller's 1..10 score; a repeat call replaces it.
func (h *ReviewHandler) SetRating(c *gin.Context) {
	targetID, ok := paramID(c, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SetRatingRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	rating, err := h.reviewService.SetRating(c.Request.Context(), targetID, claims.UserID, req.Score)
	if err != nil {
		if errors.Is(err, service.ErrSelfReview) {
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
			return
		}
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, rating)
}

// AddComment godoc
// POST /api/v1/users/:id/comments
func (h *ReviewHandler) AddComment(c *gin.Context) {
	targetID, ok := paramID(c, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.AddCommentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	comment, err := h.reviewService.AddComment(c.Request.Context(), targetID, claims.UserID, req.Message)
	if err != nil {
		if errors.Is(err, service.ErrSelfReview) {
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
			return
		}
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusCreated, comment)
}
