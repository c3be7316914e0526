package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/certifex/certifex-backend/internal/model"
)

// ReviewRepository handles ratings and comments on certified users.
type ReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository creates a new ReviewRepository.
func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// UpsertRating stores one author's score for a target user, replacing any
// earlier score from the same author.
func (r *ReviewRepository) UpsertRating(ctx context.Context, rating *model.Rating) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO ratings (target_user_id, author_user_id, score)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (target_user_id, author_user_id)
		 DO UPDATE SET score = EXCLUDED.score, updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		rating.TargetUserID, rating.AuthorUserID, rating.Score,
	).Scan(&rating.ID, &rating.CreatedAt, &rating.UpdatedAt)
}

// GetRating retrieves one author's score for a target user.
func (r *ReviewRepository) GetRating(ctx context.Context, targetUserID, authorUserID int64) (*model.Rating, error) {
	rating := &model.Rating{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, target_user_id, author_user_id, score, created_at, updated_at
		 FROM ratings WHERE target_user_id = $1 AND author_user_id = $2`,
		targetUserID, authorUserID,
	).Scan(&rating.ID, &rating.TargetUserID, &rating.AuthorUserID, &rating.Score, &rating.CreatedAt, &rating.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rating, nil
}

// RatingSummary returns the average score and count for a target user.
func (r *ReviewRepository) RatingSummary(ctx context.Context, targetUserID int64) (float64, int, error) {
	var (
		avg   float64
		count int
	)
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(AVG(score), 0), COUNT(*) FROM ratings WHERE target_user_id = $1`,
		targetUserID,
	).Scan(&avg, &count)
	return avg, count, err
}

// CreateComment inserts a comment on a target user.
func (r *ReviewRepository) CreateComment(ctx context.Context, c *model.Comment) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO comments (target_user_id, author_user_id, message)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		c.TargetUserID, c.AuthorUserID, c.Message,
	).Scan(&c.ID, &c.CreatedAt)
}

// ListComments retrieves comments on a target user with author names,
// newest first.
func (r *ReviewRepository) ListComments(ctx context.Context, targetUserID int64) ([]model.CommentOut, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.target_user_id, c.author_user_id, u.first_name, u.last_name, c.message, c.created_at
		 FROM comments c
		 JOIN users u ON c.author_user_id = u.id
		 WHERE c.target_user_id = $1
		 ORDER BY c.created_at DESC`, targetUserID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []model.CommentOut
	for rows.Next() {
		var c model.CommentOut
		if err := rows.Scan(&c.ID, &c.TargetUserID, &c.AuthorUserID, &c.AuthorFirstName, &c.AuthorLastName,
			&c.Message, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
