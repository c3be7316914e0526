package model

import (
	"time"
)

// Exam represents a configured exam: a titled, timed set of blocks guarded
// by a gate password.
type Exam struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	DurationMinutes int       `json:"duration_minutes"`
	GatePassword    string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ExamConfig is the candidate-facing view of an exam: enabled blocks only,
// no questions and no secrets. Cached in Redis.
type ExamConfig struct {
	ExamID          int64      `json:"exam_id"`
	Title           string     `json:"title"`
	DurationMinutes int        `json:"duration_minutes"`
	Blocks          []BlockOut `json:"blocks"`
}

// BlockOut is the candidate-facing block summary inside ExamConfig.
type BlockOut struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Qty        int    `json:"qty"`
	OrderIndex int    `json:"order_index"`
}

// UpdateExamSettingsRequest is the payload for the admin settings editor.
type UpdateExamSettingsRequest struct {
	Title           *string `json:"title" binding:"omitempty,min=1,max=255"`
	DurationMinutes *int    `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	GatePassword    *string `json:"gate_password" binding:"omitempty,max=64"`
}

// GateVerifyRequest is the payload for the public gate password check.
type GateVerifyRequest struct {
	ExamID   int64  `json:"exam_id" binding:"required,min=1"`
	Password string `json:"password" binding:"required,max=64"`
}
