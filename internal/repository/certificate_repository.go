package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/certifex/certifex-backend/internal/model"
)

// CertificateRepository handles certificates and the public registry view.
type CertificateRepository struct {
	pool *pgxpool.Pool
}

// NewCertificateRepository creates a new CertificateRepository.
func NewCertificateRepository(pool *pgxpool.Pool) *CertificateRepository {
	return &CertificateRepository{pool: pool}
}

// GetByUser retrieves the certificate of one user.
func (r *CertificateRepository) GetByUser(ctx context.Context, userID int64) (*model.Certificate, error) {
	c := &model.Certificate{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, unique_code, level, status, exam_score, file_path, file_name, issued_at
		 FROM certificates WHERE user_id = $1`, userID,
	).Scan(&c.ID, &c.UserID, &c.UniqueCode, &c.Level, &c.Status, &c.ExamScore, &c.FilePath, &c.FileName, &c.IssuedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Upsert inserts or replaces a user's certificate.
func (r *CertificateRepository) Upsert(ctx context.Context, c *model.Certificate) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO certificates (user_id, unique_code, level, status, exam_score, file_path, file_name, issued_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id)
		 DO UPDATE SET unique_code = EXCLUDED.unique_code,
		               level = EXCLUDED.level,
		               status = EXCLUDED.status,
		               exam_score = EXCLUDED.exam_score,
		               file_path = EXCLUDED.file_path,
		               file_name = EXCLUDED.file_name,
		               issued_at = EXCLUDED.issued_at
		 RETURNING id`,
		c.UserID, c.UniqueCode, c.Level, c.Status, c.ExamScore, c.FilePath, c.FileName, c.IssuedAt,
	).Scan(&c.ID)
}

// SetStatus updates a certificate's status.
func (r *CertificateRepository) SetStatus(ctx context.Context, userID int64, status model.CertificateStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE certificates SET status = $2 WHERE user_id = $1`, userID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListRegistry retrieves the public certified-persons registry: every
// certificate holder with their average rating, optionally filtered by a
// name or code search, paginated.
func (r *CertificateRepository) ListRegistry(ctx context.Context, page, perPage int, search *string) ([]model.RegistryPersonOut, int64, error) {
	baseQuery := `
		FROM certificates c
		JOIN users u ON c.user_id = u.id
		WHERE TRUE`
	args := []any{}

	if search != nil && *search != "" {
		args = append(args, "%"+*search+"%")
		baseQuery += fmt.Sprintf(
			" AND (u.first_name ILIKE $%d OR u.last_name ILIKE $%d OR c.unique_code ILIKE $%d)",
			len(args), len(args), len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	query := `
		SELECT u.id, CONCAT(u.first_name, ' ', u.last_name) AS full_name,
			c.unique_code, c.level, c.status, c.exam_score, c.issued_at,
			COALESCE((SELECT AVG(score) FROM ratings WHERE target_user_id = u.id), 0)
		` + baseQuery + fmt.Sprintf(`
		ORDER BY full_name ASC
		LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, perPage, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var people []model.RegistryPersonOut
	for rows.Next() {
		var p model.RegistryPersonOut
		if err := rows.Scan(&p.ID, &p.FullName, &p.UniqueCode, &p.Qualification, &p.CertificateStatus,
			&p.ExamScore, &p.RegistrationDate, &p.Rating); err != nil {
			return nil, 0, err
		}
		people = append(people, p)
	}
	return people, total, rows.Err()
}
