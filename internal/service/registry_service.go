package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/certifex/certifex-backend/internal/model"
	"github.com/certifex/certifex-backend/internal/repository"
	"github.com/certifex/certifex-backend/internal/response"
)

// UpsertCertificateRequest is the admin payload for issuing or replacing
// a user's certificate.
type UpsertCertificateRequest struct {
	UniqueCode string                  `json:"unique_code" binding:"required,max=32"`
	Level      string                  `json:"level" binding:"required,max=64"`
	Status     model.CertificateStatus `json:"status" binding:"required,oneof=active suspended expired"`
	ExamScore  float64                 `json:"exam_score" binding:"min=0,max=100"`
	IssuedAt   *time.Time              `json:"issued_at"`
}

// RegistryService handles certificates and the public certified-persons
// registry.
type RegistryService struct {
	userRepo *repository.UserRepository
	certRepo *repository.CertificateRepository
	log      zerolog.Logger
}

// NewRegistryService creates a new RegistryService.
func NewRegistryService(userRepo *repository.UserRepository, certRepo *repository.CertificateRepository, log zerolog.Logger) *RegistryService {
	return &RegistryService{
		userRepo: userRepo,
		certRepo: certRepo,
		log:      log.With().Str("component", "registry_service").Logger(),
	}
}

// ListRegistry retrieves the public registry, paginated.
func (s *RegistryService) ListRegistry(ctx context.Context, page, perPage int, search *string) ([]model.RegistryPersonOut, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	people, total, err := s.certRepo.ListRegistry(ctx, page, perPage, search)
	if err != nil {
		return nil, nil, err
	}
	if people == nil {
		people = []model.RegistryPersonOut{}
	}

	totalPages := (int(total) + perPage - 1) / perPage
	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages,
	}
	return people, pagination, nil
}

// GetCertificate retrieves one user's certificate.
func (s *RegistryService) GetCertificate(ctx context.Context, userID int64) (*model.Certificate, error) {
	return s.certRepo.GetByUser(ctx, userID)
}

// UpsertCertificate issues or replaces a user's certificate.
func (s *RegistryService) UpsertCertificate(ctx context.Context, userID int64, req *UpsertCertificateRequest) (*model.Certificate, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	issuedAt := time.Now()
	if req.IssuedAt != nil {
		issuedAt = *req.IssuedAt
	}

	cert := &model.Certificate{
		UserID:     userID,
		UniqueCode: req.UniqueCode,
		Level:      req.Level,
		Status:     req.Status,
		ExamScore:  req.ExamScore,
		IssuedAt:   issuedAt,
	}
	if err := s.certRepo.Upsert(ctx, cert); err != nil {
		return nil, fmt.Errorf("upsert certificate: %w", err)
	}

	s.log.Info().
		Int64("user_id", userID).
		Str("unique_code", req.UniqueCode).
		Msg("Certificate upserted")
	return cert, nil
}

// SetCertificateStatus updates a certificate's lifecycle status.
func (s *RegistryService) SetCertificateStatus(ctx context.Context, userID int64, status model.CertificateStatus) error {
	return s.certRepo.SetStatus(ctx, userID, status)
}

// AttachCertificateFile records an uploaded certificate file against a
// user's certificate.
func (s *RegistryService) AttachCertificateFile(ctx context.Context, userID int64, path, name string) (*model.Certificate, error) {
	cert, err := s.certRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	cert.FilePath = &path
	cert.FileName = &name
	if err := s.certRepo.Upsert(ctx, cert); err != nil {
		return nil, fmt.Errorf("attach certificate file: %w", err)
	}
	return cert, nil
}
