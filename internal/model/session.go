package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// SessionStatus is the derived state of a session. It is never stored:
// "expired" is recomputed from the clock on every read.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusExpired   SessionStatus = "expired"
)

// ExamSession is one candidate's timed attempt at an exam.
//
// EndsAt is fixed at creation (StartedAt + exam duration) and never
// recalculated. FinishedAt, once set, is immutable. CodeID is nil for
// sessions opened through the candidate-start path rather than code
// redemption.
type ExamSession struct {
	ID                 int64       `json:"id"`
	ExamID             int64       `json:"exam_id"`
	CodeID             *int64      `json:"code_id,omitempty"`
	Token              string      `json:"-"`
	CandidateFirstName string      `json:"candidate_first_name"`
	CandidateLastName  string      `json:"candidate_last_name"`
	CandidateCode      string      `json:"candidate_code"`
	StartedAt          time.Time   `json:"started_at"`
	EndsAt             time.Time   `json:"ends_at"`
	FinishedAt         *time.Time  `json:"finished_at,omitempty"`
	Active             bool        `json:"active"`
	ScorePercent       *float64    `json:"score_percent,omitempty"`
	BlockStats         []BlockStat `json:"block_stats,omitempty"`
	SelectedMap        SelectedMap `json:"selected_map,omitempty"`
}

// Status derives the session state from the clock.
func (s *ExamSession) Status(now time.Time) SessionStatus {
	switch {
	case s.FinishedAt != nil:
		return SessionStatusCompleted
	case now.Before(s.EndsAt) && s.Active:
		return SessionStatusActive
	default:
		return SessionStatusExpired
	}
}

// BlockStat is one block's scoring summary inside a finished session.
type BlockStat struct {
	BlockID    int64   `json:"block_id"`
	BlockTitle string  `json:"block_title,omitempty"`
	Total      int     `json:"total"`
	Correct    int     `json:"correct"`
	Percent    float64 `json:"percent"`
}

// SelectedMap records, per block, the ordered question IDs drawn for a
// session at creation time. It freezes the presentation order so result
// review can reconstruct exactly what the candidate saw.
//
// Serialized as a JSON object keyed by the decimal block ID.
type SelectedMap map[int64][]int64

// MarshalJSON encodes block IDs as string object keys.
func (m SelectedMap) MarshalJSON() ([]byte, error) {
	out := make(map[string][]int64, len(m))
	for blockID, questionIDs := range m {
		out[strconv.FormatInt(blockID, 10)] = questionIDs
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes string object keys back into block IDs.
func (m *SelectedMap) UnmarshalJSON(data []byte) error {
	raw := make(map[string][]int64)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(SelectedMap, len(raw))
	for key, questionIDs := range raw {
		blockID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return fmt.Errorf("selected_map key %q: %w", key, err)
		}
		out[blockID] = questionIDs
	}
	*m = out
	return nil
}

// TotalQuestions returns the number of questions drawn across all blocks.
func (m SelectedMap) TotalQuestions() int {
	n := 0
	for _, ids := range m {
		n += len(ids)
	}
	return n
}

// BlockIDs returns the block IDs in ascending order.
func (m SelectedMap) BlockIDs() []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// StartSessionRequest is the payload for the candidate-start path: the
// session is opened with candidate identity instead of an access code.
type StartSessionRequest struct {
	ExamID             int64  `json:"exam_id" binding:"required,min=1"`
	CandidateFirstName string `json:"candidate_first_name" binding:"required,max=100"`
	CandidateLastName  string `json:"candidate_last_name" binding:"required,max=100"`
	CandidateCode      string `json:"candidate_code" binding:"max=20"`
}

// SessionCreatedOut is returned by both redemption and candidate-start.
// The token is the bearer credential for all session-scoped calls.
type SessionCreatedOut struct {
	SessionID       int64     `json:"session_id"`
	Token           string    `json:"token"`
	ExamID          int64     `json:"exam_id"`
	DurationMinutes int       `json:"duration_minutes"`
	EndsAt          time.Time `json:"ends_at"`
}

// FinishOut is the result of finishing a session.
type FinishOut struct {
	TotalQuestions int         `json:"total_questions"`
	Answered       int         `json:"answered"`
	Correct        int         `json:"correct"`
	ScorePercent   float64     `json:"score_percent"`
	BlockStats     []BlockStat `json:"block_stats"`
}
