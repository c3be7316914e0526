package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/certifex/certifex-backend/internal/model"
)

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// GetByID retrieves a single exam.
func (r *ExamRepository) GetByID(ctx context.Context, id int64) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, duration_minutes, gate_password, created_at, updated_at
		 FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Title, &e.DurationMinutes, &e.GatePassword, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// List retrieves all exams ordered by creation time.
func (r *ExamRepository) List(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, duration_minutes, gate_password, created_at, updated_at
		 FROM exams ORDER BY created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Title, &e.DurationMinutes, &e.GatePassword, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (title, duration_minutes, gate_password)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		e.Title, e.DurationMinutes, e.GatePassword,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// UpdateSettings applies the non-nil fields of the settings request.
func (r *ExamRepository) UpdateSettings(ctx context.Context, id int64, req *model.UpdateExamSettingsRequest) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams SET
			title = COALESCE($2, title),
			duration_minutes = COALESCE($3, duration_minutes),
			gate_password = COALESCE($4, gate_password),
			updated_at = NOW()
		 WHERE id = $1`,
		id, req.Title, req.DurationMinutes, req.GatePassword)
	return err
}
