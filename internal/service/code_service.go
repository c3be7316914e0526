package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/certifex/certifex-backend/internal/config"
	"github.com/certifex/certifex-backend/internal/model"
	"github.com/certifex/certifex-backend/internal/repository"
)

// GeneratedCode pairs a stored code row with its plaintext. The plaintext
// exists only in this response; afterwards only the bcrypt hash remains.
type GeneratedCode struct {
	ID        int64  `json:"id"`
	Plaintext string `json:"code"`
}

// CodeService manages single-use exam access codes.
type CodeService struct {
	cfg      *config.Config
	examRepo *repository.ExamRepository
	codeRepo *repository.CodeRepository
	log      zerolog.Logger
}

// NewCodeService creates a new CodeService.
func NewCodeService(
	cfg *config.Config,
	examRepo *repository.ExamRepository,
	codeRepo *repository.CodeRepository,
	log zerolog.Logger,
) *CodeService {
	return &CodeService{
		cfg:      cfg,
		examRepo: examRepo,
		codeRepo: codeRepo,
		log:      log.With().Str("component", "code_service").Logger(),
	}
}

// Generate creates a batch of 6-digit codes for an exam and returns
// their plaintexts exactly once.
func (s *CodeService) Generate(ctx context.Context, req *model.GenerateCodesRequest) ([]GeneratedCode, error) {
	if _, err := s.examRepo.GetByID(ctx, req.ExamID); err != nil {
		return nil, err
	}

	plaintexts := make([]string, 0, req.Count)
	hashes := make([]string, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		code, err := randomDigits(6)
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(code), s.cfg.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash code: %w", err)
		}
		plaintexts = append(plaintexts, code)
		hashes = append(hashes, string(hash))
	}

	rows, err := s.codeRepo.CreateBatch(ctx, req.ExamID, hashes)
	if err != nil {
		return nil, fmt.Errorf("store codes: %w", err)
	}

	out := make([]GeneratedCode, len(rows))
	for i, row := range rows {
		out[i] = GeneratedCode{ID: row.ID, Plaintext: plaintexts[i]}
	}

	s.log.Info().
		Int64("exam_id", req.ExamID).
		Int("count", len(out)).
		Msg("Access codes generated")
	return out, nil
}

// List retrieves codes of an exam, paginated.
func (s *CodeService) List(ctx context.Context, examID int64, page, perPage int) ([]model.ExamCode, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	return s.codeRepo.List(ctx, examID, page, perPage)
}

// SetDisabled toggles a code. Disabling removes it from the redemption
// scan without consuming it.
func (s *CodeService) SetDisabled(ctx context.Context, id int64, disabled bool) error {
	return s.codeRepo.SetDisabled(ctx, id, disabled)
}

// CountAvailable returns how many codes of an exam are still redeemable.
func (s *CodeService) CountAvailable(ctx context.Context, examID int64) (int64, error) {
	return s.codeRepo.CountAvailable(ctx, examID)
}

// randomDigits returns n cryptographically random decimal digits.
func randomDigits(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits), nil
}
