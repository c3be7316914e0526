package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/certifex/certifex-backend/internal/model"
	"github.com/certifex/certifex-backend/internal/repository"
)

// ErrSelfReview is returned when a user tries to rate themself.
var ErrSelfReview = errors.New("cannot review your own profile")

// ReviewService handles ratings and comments on certified users.
type ReviewService struct {
	userRepo   *repository.UserRepository
	reviewRepo *repository.ReviewRepository
	log        zerolog.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(userRepo *repository.UserRepository, reviewRepo *repository.ReviewRepository, log zerolog.Logger) *ReviewService {
	return &ReviewService{
		userRepo:   userRepo,
		reviewRepo: reviewRepo,
		log:        log.With().Str("component", "review_service").Logger(),
	}
}

// SetRating records one author's 1..10 score for a target user. A later
// submission from the same author replaces the earlier one.
func (s *ReviewService) SetRating(ctx context.Context, targetUserID, authorUserID int64, score int) (*model.Rating, error) {
	if targetUserID == authorUserID {
		return nil, ErrSelfReview
	}
	if _, err := s.userRepo.GetByID(ctx, targetUserID); err != nil {
		return nil, err
	}

	rating := &model.Rating{
		TargetUserID: targetUserID,
		AuthorUserID: authorUserID,
		Score:        score,
	}
	if err := s.reviewRepo.UpsertRating(ctx, rating); err != nil {
		return nil, fmt.Errorf("upsert rating: %w", err)
	}
	return rating, nil
}

// AddComment records a comment on a target user.
func (s *ReviewService) AddComment(ctx context.Context, targetUserID, authorUserID int64, message string) (*model.Comment, error) {
	if targetUserID == authorUserID {
		return nil, ErrSelfReview
	}
	if _, err := s.userRepo.GetByID(ctx, targetUserID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		TargetUserID: targetUserID,
		AuthorUserID: authorUserID,
		Message:      message,
	}
	if err := s.reviewRepo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// GetSummary aggregates a target user's reviews. actorUserID, when
// non-zero, pulls that user's own score into the summary.
func (s *ReviewService) GetSummary(ctx context.Context, targetUserID, actorUserID int64) (*model.ReviewSummaryOut, error) {
	if _, err := s.userRepo.GetByID(ctx, targetUserID); err != nil {
		return nil, err
	}

	avg, count, err := s.reviewRepo.RatingSummary(ctx, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("rating summary: %w", err)
	}
	comments, err := s.reviewRepo.ListComments(ctx, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	if comments == nil {
		comments = []model.CommentOut{}
	}

	out := &model.ReviewSummaryOut{
		TargetUserID: targetUserID,
		Average:      Round2(avg),
		RatingsCount: count,
		Comments:     comments,
	}

	if actorUserID != 0 {
		rating, err := s.reviewRepo.GetRating(ctx, targetUserID, actorUserID)
		if err == nil {
			out.ActorScore = &rating.Score
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get own rating: %w", err)
		}
	}
	return out, nil
}
