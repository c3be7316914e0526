package model

import (
	"time"
)

// ExamCode is a single-use access credential for one exam. Only a bcrypt
// hash of the code is stored; redemption scans candidate hashes and
// verifies the submitted plaintext against each. Once Used is set the
// code is never reusable.
type ExamCode struct {
	ID        int64      `json:"id"`
	ExamID    int64      `json:"exam_id"`
	CodeHash  string     `json:"-"`
	Used      bool       `json:"used"`
	Disabled  bool       `json:"disabled"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// RedeemCodeRequest is the payload for redeeming an access code.
type RedeemCodeRequest struct {
	ExamID int64  `json:"exam_id" binding:"required,min=1"`
	Code   string `json:"code" binding:"required,min=4,max=20"`
}

// GenerateCodesRequest is the admin payload for bulk code generation.
type GenerateCodesRequest struct {
	ExamID int64 `json:"exam_id" binding:"required,min=1"`
	Count  int   `json:"count" binding:"required,min=1,max=500"`
}
