package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/certifex/certifex-backend/internal/model"
)

// AnswerRepository handles the per-session answer ledger.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

// Upsert stores one answer, replacing any earlier answer of the same
// session to the same question. is_correct is written from the flag known
// at submission time and never touched afterwards.
func (r *AnswerRepository) Upsert(ctx context.Context, a *model.Answer) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO answers (session_id, question_id, option_id, is_correct, answered_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (session_id, question_id)
		 DO UPDATE SET option_id = EXCLUDED.option_id,
		               is_correct = EXCLUDED.is_correct,
		               answered_at = EXCLUDED.answered_at
		 RETURNING id`,
		a.SessionID, a.QuestionID, a.OptionID, a.IsCorrect, a.AnsweredAt,
	).Scan(&a.ID)
}

// ListBySession retrieves all answers of a session.
func (r *AnswerRepository) ListBySession(ctx context.Context, sessionID int64) ([]model.Answer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, question_id, option_id, is_correct, answered_at
		 FROM answers WHERE session_id = $1`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.Answer
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.ID, &a.SessionID, &a.QuestionID, &a.OptionID, &a.IsCorrect, &a.AnsweredAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// ListDetails retrieves a session's answers joined with question, block and
// option text, for the admin result review. Ordered by block, then by the
// question's position within it.
func (r *AnswerRepository) ListDetails(ctx context.Context, sessionID int64) ([]model.AnswerDetail, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.question_id, q.code, q.text, b.id, b.title,
		        a.option_id, sel.text,
		        COALESCE(cor.id, 0), COALESCE(cor.text, ''),
		        a.is_correct, a.answered_at
		 FROM answers a
		 JOIN questions q ON a.question_id = q.id
		 JOIN blocks b ON q.block_id = b.id
		 JOIN options sel ON a.option_id = sel.id
		 LEFT JOIN options cor ON cor.question_id = q.id AND cor.is_correct = TRUE
		 WHERE a.session_id = $1
		 ORDER BY b.order_index, q.order_index`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []model.AnswerDetail
	for rows.Next() {
		var d model.AnswerDetail
		if err := rows.Scan(&d.QuestionID, &d.QuestionCode, &d.QuestionText, &d.BlockID, &d.BlockTitle,
			&d.SelectedOptionID, &d.SelectedOption, &d.CorrectOptionID, &d.CorrectOption,
			&d.IsCorrect, &d.AnsweredAt); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// QuestionBlocks maps each given question ID to its block ID. Scoring
// groups the answer ledger by block through this lookup.
func (r *AnswerRepository) QuestionBlocks(ctx context.Context, questionIDs []int64) (map[int64]int64, error) {
	if len(questionIDs) == 0 {
		return map[int64]int64{}, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, block_id FROM questions WHERE id = ANY($1)`, questionIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]int64, len(questionIDs))
	for rows.Next() {
		var questionID, blockID int64
		if err := rows.Scan(&questionID, &blockID); err != nil {
			return nil, err
		}
		out[questionID] = blockID
	}
	return out, rows.Err()
}

// LastAnsweredAt returns the time of a session's most recent answer, or
// nil when the ledger is empty. The live monitor uses it as a liveness
// signal.
func (r *AnswerRepository) LastAnsweredAt(ctx context.Context, sessionID int64) (*time.Time, error) {
	var t *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT MAX(answered_at) FROM answers WHERE session_id = $1`, sessionID,
	).Scan(&t)
	return t, err
}
