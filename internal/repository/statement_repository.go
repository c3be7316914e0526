package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/certifex/certifex-backend/internal/model"
)

// StatementRepository handles user statements.
type StatementRepository struct {
	pool *pgxpool.Pool
}

// NewStatementRepository creates a new StatementRepository.
func NewStatementRepository(pool *pgxpool.Pool) *StatementRepository {
	return &StatementRepository{pool: pool}
}

// Create inserts a new statement.
func (r *StatementRepository) Create(ctx context.Context, s *model.Statement) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO statements (user_id, message)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		s.UserID, s.Message,
	).Scan(&s.ID, &s.CreatedAt)
}

// ListByUser retrieves one user's statements, newest first.
func (r *StatementRepository) ListByUser(ctx context.Context, userID int64) ([]model.Statement, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, message, created_at
		 FROM statements WHERE user_id = $1
		 ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statements []model.Statement
	for rows.Next() {
		var s model.Statement
		if err := rows.Scan(&s.ID, &s.UserID, &s.Message, &s.CreatedAt); err != nil {
			return nil, err
		}
		statements = append(statements, s)
	}
	return statements, rows.Err()
}

// ListAll retrieves the admin statement inbox with author details,
// paginated, newest first.
func (r *StatementRepository) ListAll(ctx context.Context, page, perPage int) ([]model.StatementWithAuthor, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM statements`).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.user_id, s.message, s.created_at, u.first_name, u.last_name, u.email
		 FROM statements s
		 JOIN users u ON s.user_id = u.id
		 ORDER BY s.created_at DESC
		 LIMIT $1 OFFSET $2`, perPage, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var statements []model.StatementWithAuthor
	for rows.Next() {
		var s model.StatementWithAuthor
		if err := rows.Scan(&s.ID, &s.UserID, &s.Message, &s.CreatedAt,
			&s.AuthorFirstName, &s.AuthorLastName, &s.AuthorEmail); err != nil {
			return nil, 0, err
		}
		statements = append(statements, s)
	}
	return statements, total, rows.Err()
}
