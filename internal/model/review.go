package model

import (
	"time"
)

// Rating is one author's 1..10 score for a certified user. The unique
// (target, author) constraint makes later submissions upserts.
type Rating struct {
	ID           int64     `json:"id"`
	TargetUserID int64     `json:"target_user_id"`
	AuthorUserID int64     `json:"author_user_id"`
	Score        int       `json:"score"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Comment is a free-text review left on a certified user's profile.
type Comment struct {
	ID           int64     `json:"id"`
	TargetUserID int64     `json:"target_user_id"`
	AuthorUserID int64     `json:"author_user_id"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
}

// SetRatingRequest is the payload for rating a certified user.
type SetRatingRequest struct {
	Score int `json:"score" binding:"required,min=1,max=10"`
}

// AddCommentRequest is the payload for commenting on a certified user.
type AddCommentRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
}

// CommentOut is a comment enriched with its author's name.
type CommentOut struct {
	ID              int64     `json:"id"`
	TargetUserID    int64     `json:"target_user_id"`
	AuthorUserID    int64     `json:"author_user_id"`
	AuthorFirstName string    `json:"author_first_name"`
	AuthorLastName  string    `json:"author_last_name"`
	Message         string    `json:"message"`
	CreatedAt       time.Time `json:"created_at"`
}

// ReviewSummaryOut aggregates ratings and comments for one target user.
// ActorScore is the requesting user's own rating, when present.
type ReviewSummaryOut struct {
	TargetUserID int64        `json:"target_user_id"`
	Average      float64      `json:"average"`
	RatingsCount int          `json:"ratings_count"`
	ActorScore   *int         `json:"actor_score,omitempty"`
	Comments     []CommentOut `json:"comments"`
}
