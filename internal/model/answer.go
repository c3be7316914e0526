package model

import (
	"time"
)

// Answer joins a session, a question and the selected option. At most one
// row exists per (session, question); a later submission overwrites it.
// IsCorrect is frozen at write time from the option's flag and is never
// recomputed when content changes afterwards.
type Answer struct {
	ID         int64     `json:"id"`
	SessionID  int64     `json:"session_id"`
	QuestionID int64     `json:"question_id"`
	OptionID   int64     `json:"option_id"`
	IsCorrect  bool      `json:"is_correct"`
	AnsweredAt time.Time `json:"answered_at"`
}

// RecordAnswerRequest is the payload for submitting one answer.
type RecordAnswerRequest struct {
	QuestionID int64 `json:"question_id" binding:"required,min=1"`
	OptionID   int64 `json:"option_id" binding:"required,min=1"`
}

// RecordAnswerOut reports the correctness of the stored answer.
type RecordAnswerOut struct {
	Correct bool `json:"correct"`
}

// AnswerDetail is the admin result-review row: the candidate's selection
// next to the authoritative correct option.
type AnswerDetail struct {
	QuestionID       int64     `json:"question_id"`
	QuestionCode     string    `json:"question_code"`
	QuestionText     string    `json:"question_text"`
	BlockID          int64     `json:"block_id"`
	BlockTitle       string    `json:"block_title"`
	SelectedOptionID int64     `json:"selected_option_id"`
	SelectedOption   string    `json:"selected_option"`
	CorrectOptionID  int64     `json:"correct_option_id"`
	CorrectOption    string    `json:"correct_option"`
	IsCorrect        bool      `json:"is_correct"`
	AnsweredAt       time.Time `json:"answered_at"`
}
