package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/certifex/certifex-backend/internal/model"
)

// ErrCodeNotFound is returned when no redeemable code matches the
// submitted plaintext.
var ErrCodeNotFound = errors.New("no matching access code")

// ErrSessionFinished is returned when finishing a session that has
// already been finished.
var ErrSessionFinished = errors.New("session already finished")

// ErrCodeSessionLive is returned when the matched code already has a
// running session.
var ErrCodeSessionLive = errors.New("code already opened a live session")

// ResultRow is one row of the admin results listing.
type ResultRow struct {
	SessionID          int64               `json:"session_id"`
	ExamID             int64               `json:"exam_id"`
	CandidateFirstName string              `json:"candidate_first_name"`
	CandidateLastName  string              `json:"candidate_last_name"`
	CandidateCode      string              `json:"candidate_code"`
	Status             model.SessionStatus `json:"status"`
	ScorePercent       *float64            `json:"score_percent"`
	StartedAt          time.Time           `json:"started_at"`
	EndsAt             time.Time           `json:"ends_at"`
	FinishedAt         *time.Time          `json:"finished_at"`
}

// SessionRepository handles exam session data access, including the two
// transactional entry points: code redemption and finish.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `id, exam_id, code_id, token, candidate_first_name, candidate_last_name,
	candidate_code, started_at, ends_at, finished_at, active, score_percent, block_stats, selected_map`

func scanSession(row interface{ Scan(...any) error }) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	err := row.Scan(&s.ID, &s.ExamID, &s.CodeID, &s.Token, &s.CandidateFirstName, &s.CandidateLastName,
		&s.CandidateCode, &s.StartedAt, &s.EndsAt, &s.FinishedAt, &s.Active, &s.ScorePercent,
		&s.BlockStats, &s.SelectedMap)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves one session.
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM exam_sessions WHERE id = $1`, sessionColumns), id))
}

// GetByToken retrieves a session by its bearer token.
func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM exam_sessions WHERE token = $1`, sessionColumns), token))
}

// RedeemAndCreate atomically redeems an access code and opens a session.
//
// All redeemable codes of the exam are locked and scanned in ID order;
// verify is called with each stored hash until it reports a match. The
// matched code is marked used and the session row is inserted in the same
// transaction, so a concurrent redemption of the same plaintext blocks on
// the row locks and then finds the code already consumed.
func (r *SessionRepository) RedeemAndCreate(ctx context.Context, examID int64, verify func(hash string) bool, s *model.ExamSession) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT id, code_hash FROM exam_codes
		 WHERE exam_id = $1 AND used = FALSE AND disabled = FALSE
		 ORDER BY id
		 FOR UPDATE`, examID,
	)
	if err != nil {
		return err
	}

	var matchedID int64
	for rows.Next() {
		var (
			id   int64
			hash string
		)
		if err := rows.Scan(&id, &hash); err != nil {
			rows.Close()
			return err
		}
		if matchedID == 0 && verify(hash) {
			matchedID = id
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if matchedID == 0 {
		return ErrCodeNotFound
	}

	// The used flag already makes the code single-use; this guards the
	// invariant even if a code is manually reset while its session runs.
	var live int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_sessions
		 WHERE code_id = $1 AND finished_at IS NULL AND active = TRUE AND ends_at > NOW()`,
		matchedID).Scan(&live); err != nil {
		return err
	}
	if live > 0 {
		return ErrCodeSessionLive
	}

	now := s.StartedAt
	if _, err := tx.Exec(ctx,
		`UPDATE exam_codes SET used = TRUE, used_at = $2 WHERE id = $1`,
		matchedID, now); err != nil {
		return err
	}

	s.CodeID = &matchedID
	err = tx.QueryRow(ctx,
		`INSERT INTO exam_sessions
			(exam_id, code_id, token, candidate_first_name, candidate_last_name, candidate_code,
			 started_at, ends_at, active, selected_map)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9)
		 RETURNING id`,
		s.ExamID, s.CodeID, s.Token, s.CandidateFirstName, s.CandidateLastName, s.CandidateCode,
		s.StartedAt, s.EndsAt, s.SelectedMap,
	).Scan(&s.ID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetLiveByCandidateCode retrieves a still-running session for the given
// candidate code, if one exists. Used to refuse a second concurrent start.
func (r *SessionRepository) GetLiveByCandidateCode(ctx context.Context, examID int64, candidateCode string) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM exam_sessions
		 WHERE exam_id = $1 AND candidate_code = $2
		   AND finished_at IS NULL AND active = TRUE AND ends_at > NOW()
		 ORDER BY started_at DESC
		 LIMIT 1`, sessionColumns), examID, candidateCode))
}

// Create inserts a session opened through the candidate-start path.
func (r *SessionRepository) Create(ctx context.Context, s *model.ExamSession) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_sessions
			(exam_id, token, candidate_first_name, candidate_last_name, candidate_code,
			 started_at, ends_at, active, selected_map)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8)
		 RETURNING id`,
		s.ExamID, s.Token, s.CandidateFirstName, s.CandidateLastName, s.CandidateCode,
		s.StartedAt, s.EndsAt, s.SelectedMap,
	).Scan(&s.ID)
}

// FinishAndScore closes a session exactly once.
//
// The session row is locked, its answers are read inside the same
// transaction, and compute derives the final score and block statistics
// from them. A session that is already finished returns ErrSessionFinished
// regardless of how many racing finish calls arrive.
func (r *SessionRepository) FinishAndScore(ctx context.Context, sessionID int64, finishedAt time.Time, compute func(answers []model.Answer) (float64, []model.BlockStat)) (*model.ExamSession, []model.Answer, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	s, err := scanSession(tx.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM exam_sessions WHERE id = $1 FOR UPDATE`, sessionColumns), sessionID))
	if err != nil {
		return nil, nil, err
	}
	if s.FinishedAt != nil {
		return nil, nil, ErrSessionFinished
	}

	rows, err := tx.Query(ctx,
		`SELECT id, session_id, question_id, option_id, is_correct, answered_at
		 FROM answers WHERE session_id = $1`, sessionID,
	)
	if err != nil {
		return nil, nil, err
	}
	var answers []model.Answer
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.ID, &a.SessionID, &a.QuestionID, &a.OptionID, &a.IsCorrect, &a.AnsweredAt); err != nil {
			rows.Close()
			return nil, nil, err
		}
		answers = append(answers, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	score, stats := compute(answers)
	if _, err := tx.Exec(ctx,
		`UPDATE exam_sessions
		 SET finished_at = $2, active = FALSE, score_percent = $3, block_stats = $4
		 WHERE id = $1`,
		sessionID, finishedAt, score, stats); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	s.FinishedAt = &finishedAt
	s.Active = false
	s.ScorePercent = &score
	s.BlockStats = stats
	return s, answers, nil
}

// Deactivate flips a session inactive without finishing it. Used when an
// admin force-closes a running session.
func (r *SessionRepository) Deactivate(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions SET active = FALSE WHERE id = $1`, id)
	return err
}

// Delete purges a session and, through the FK cascade, its answers.
func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM exam_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListResults retrieves session results for an exam with optional search
// and status filters, paginated, newest first.
func (r *SessionRepository) ListResults(ctx context.Context, examID int64, page, perPage int, search *string, status *model.SessionStatus) ([]ResultRow, int64, error) {
	baseQuery := `FROM exam_sessions WHERE exam_id = $1`
	args := []any{examID}

	if search != nil && *search != "" {
		args = append(args, "%"+*search+"%")
		baseQuery += fmt.Sprintf(
			" AND (candidate_first_name ILIKE $%d OR candidate_last_name ILIKE $%d OR candidate_code ILIKE $%d)",
			len(args), len(args), len(args))
	}
	if status != nil {
		switch *status {
		case model.SessionStatusCompleted:
			baseQuery += " AND finished_at IS NOT NULL"
		case model.SessionStatusActive:
			baseQuery += " AND finished_at IS NULL AND active = TRUE AND ends_at > NOW()"
		case model.SessionStatusExpired:
			baseQuery += " AND finished_at IS NULL AND (active = FALSE OR ends_at <= NOW())"
		}
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	query := `SELECT id, exam_id, candidate_first_name, candidate_last_name, candidate_code,
			finished_at, active, ends_at, score_percent, started_at
		` + baseQuery + fmt.Sprintf(`
		ORDER BY started_at DESC
		LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, perPage, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	now := time.Now()
	var results []ResultRow
	for rows.Next() {
		var (
			row    ResultRow
			active bool
		)
		if err := rows.Scan(&row.SessionID, &row.ExamID, &row.CandidateFirstName, &row.CandidateLastName,
			&row.CandidateCode, &row.FinishedAt, &active, &row.EndsAt, &row.ScorePercent, &row.StartedAt); err != nil {
			return nil, 0, err
		}
		derived := model.ExamSession{EndsAt: row.EndsAt, FinishedAt: row.FinishedAt, Active: active}
		row.Status = derived.Status(now)
		results = append(results, row)
	}
	return results, total, rows.Err()
}
