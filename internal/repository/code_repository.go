package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/certifex/certifex-backend/internal/model"
)

// CodeRepository handles exam access code data access.
type CodeRepository struct {
	pool *pgxpool.Pool
}

// NewCodeRepository creates a new CodeRepository.
func NewCodeRepository(pool *pgxpool.Pool) *CodeRepository {
	return &CodeRepository{pool: pool}
}

// CreateBatch inserts a batch of code hashes for one exam.
func (r *CodeRepository) CreateBatch(ctx context.Context, examID int64, hashes []string) ([]model.ExamCode, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	codes := make([]model.ExamCode, 0, len(hashes))
	for _, hash := range hashes {
		c := model.ExamCode{ExamID: examID, CodeHash: hash}
		err := tx.QueryRow(ctx,
			`INSERT INTO exam_codes (exam_id, code_hash)
			 VALUES ($1, $2)
			 RETURNING id, created_at`,
			examID, hash,
		).Scan(&c.ID, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return codes, nil
}

// List retrieves codes of an exam with pagination, newest first.
func (r *CodeRepository) List(ctx context.Context, examID int64, page, perPage int) ([]model.ExamCode, int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_codes WHERE exam_id = $1`, examID,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, code_hash, used, disabled, used_at, created_at
		 FROM exam_codes WHERE exam_id = $1
		 ORDER BY id DESC
		 LIMIT $2 OFFSET $3`, examID, perPage, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var codes []model.ExamCode
	for rows.Next() {
		var c model.ExamCode
		if err := rows.Scan(&c.ID, &c.ExamID, &c.CodeHash, &c.Used, &c.Disabled, &c.UsedAt, &c.CreatedAt); err != nil {
			return nil, 0, err
		}
		codes = append(codes, c)
	}
	return codes, total, rows.Err()
}

// SetDisabled toggles the disabled flag of a code.
func (r *CodeRepository) SetDisabled(ctx context.Context, id int64, disabled bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_codes SET disabled = $2 WHERE id = $1`, id, disabled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CountAvailable returns the number of unused, enabled codes for an exam.
func (r *CodeRepository) CountAvailable(ctx context.Context, examID int64) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_codes
		 WHERE exam_id = $1 AND used = FALSE AND disabled = FALSE`, examID,
	).Scan(&n)
	return n, err
}
