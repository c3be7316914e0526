package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DashboardRepository handles admin dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetSummaryCounts retrieves the high-level metrics for the dashboard.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context) (totalUsers, totalExams, totalSessions, totalCertificates int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM exams),
			(SELECT COUNT(*) FROM exam_sessions),
			(SELECT COUNT(*) FROM certificates)`,
	).Scan(&totalUsers, &totalExams, &totalSessions, &totalCertificates)
	return
}

// ContentCounts summarizes the exam content pool.
type ContentCounts struct {
	TotalBlocks      int `json:"total_blocks"`
	EnabledBlocks    int `json:"enabled_blocks"`
	TotalQuestions   int `json:"total_questions"`
	EnabledQuestions int `json:"enabled_questions"`
}

// GetContentCounts retrieves block and question totals with their enabled
// subsets. A question counts as enabled only when its block is too.
func (r *DashboardRepository) GetContentCounts(ctx context.Context) (*ContentCounts, error) {
	var c ContentCounts
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM blocks),
			(SELECT COUNT(*) FROM blocks WHERE enabled = TRUE),
			(SELECT COUNT(*) FROM questions),
			(SELECT COUNT(*) FROM questions q
			 JOIN blocks b ON q.block_id = b.id
			 WHERE q.enabled = TRUE AND b.enabled = TRUE)`,
	).Scan(&c.TotalBlocks, &c.EnabledBlocks, &c.TotalQuestions, &c.EnabledQuestions)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ExamActivity aggregates one exam's session traffic.
type ExamActivity struct {
	ExamID       int64    `json:"exam_id"`
	Title        string   `json:"title"`
	Sessions     int      `json:"sessions"`
	Live         int      `json:"live"`
	Finished     int      `json:"finished"`
	AverageScore *float64 `json:"average_score"`
}

// GetExamActivity retrieves per-exam session counts and average scores.
func (r *DashboardRepository) GetExamActivity(ctx context.Context) ([]ExamActivity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT
			e.id,
			e.title,
			COUNT(s.id),
			COUNT(s.id) FILTER (WHERE s.finished_at IS NULL AND s.active = TRUE AND s.ends_at > NOW()),
			COUNT(s.id) FILTER (WHERE s.finished_at IS NOT NULL),
			AVG(s.score_percent)
		 FROM exams e
		 LEFT JOIN exam_sessions s ON e.id = s.exam_id
		 GROUP BY e.id, e.title
		 ORDER BY e.id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activity []ExamActivity
	for rows.Next() {
		var a ExamActivity
		if err := rows.Scan(&a.ExamID, &a.Title, &a.Sessions, &a.Live, &a.Finished, &a.AverageScore); err != nil {
			return nil, err
		}
		activity = append(activity, a)
	}
	if activity == nil {
		activity = []ExamActivity{}
	}
	return activity, rows.Err()
}

// RecentFinish is one recently finished session for the dashboard feed.
type RecentFinish struct {
	SessionID          int64     `json:"session_id"`
	ExamTitle          string    `json:"exam_title"`
	CandidateFirstName string    `json:"candidate_first_name"`
	CandidateLastName  string    `json:"candidate_last_name"`
	ScorePercent       float64   `json:"score_percent"`
	FinishedAt         time.Time `json:"finished_at"`
}

// GetRecentFinishes retrieves the last N finished sessions.
func (r *DashboardRepository) GetRecentFinishes(ctx context.Context, limit int) ([]RecentFinish, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, e.title, s.candidate_first_name, s.candidate_last_name, s.score_percent, s.finished_at
		 FROM exam_sessions s
		 JOIN exams e ON s.exam_id = e.id
		 WHERE s.finished_at IS NOT NULL
		 ORDER BY s.finished_at DESC
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var finishes []RecentFinish
	for rows.Next() {
		var f RecentFinish
		if err := rows.Scan(&f.SessionID, &f.ExamTitle, &f.CandidateFirstName, &f.CandidateLastName,
			&f.ScorePercent, &f.FinishedAt); err != nil {
			return nil, err
		}
		finishes = append(finishes, f)
	}
	if finishes == nil {
		finishes = []RecentFinish{}
	}
	return finishes, rows.Err()
}
