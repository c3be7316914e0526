package model

import (
	"time"
)

// CertificateStatus enumerates the registry-visible certificate states.
type CertificateStatus string

const (
	CertificateStatusActive    CertificateStatus = "active"
	CertificateStatusSuspended CertificateStatus = "suspended"
	CertificateStatusExpired   CertificateStatus = "expired"
)

// Certificate records a user's certification. FilePath, when set, points
// to the uploaded certificate PDF relative to the media root.
type Certificate struct {
	ID         int64             `json:"id"`
	UserID     int64             `json:"user_id"`
	UniqueCode string            `json:"unique_code"`
	Level      string            `json:"level"`
	Status     CertificateStatus `json:"status"`
	ExamScore  float64           `json:"exam_score"`
	FilePath   *string           `json:"-"`
	FileName   *string           `json:"file_name,omitempty"`
	IssuedAt   time.Time         `json:"issued_at"`
}

// RegistryPersonOut is one row of the public certified-persons registry.
type RegistryPersonOut struct {
	ID                int64             `json:"id"`
	FullName          string            `json:"full_name"`
	PhotoURL          string            `json:"photo_url"`
	UniqueCode        string            `json:"unique_code"`
	Qualification     string            `json:"qualification"`
	CertificateStatus CertificateStatus `json:"certificate_status"`
	Rating            float64           `json:"rating"`
	ExamScore         float64           `json:"exam_score"`
	RegistrationDate  time.Time         `json:"registration_date"`
}
