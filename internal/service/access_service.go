package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/certifex/certifex-backend/internal/model"
	"github.com/certifex/certifex-backend/internal/repository"
)

// Access errors.
var (
	ErrCodeInvalid      = errors.New("invalid or already used access code")
	ErrSessionLive      = errors.New("a live session already exists for this candidate")
	ErrGateMismatch     = errors.New("wrong gate password")
	ErrExamHasNoContent = errors.New("exam has no enabled questions")
)

// AccessService opens exam sessions: code redemption, the named
// candidate-start path, and the gate password check.
type AccessService struct {
	examRepo    *repository.ExamRepository
	contentRepo *repository.ContentRepository
	sessionRepo *repository.SessionRepository
	monitor     *MonitorService
	log         zerolog.Logger
}

// NewAccessService creates a new AccessService.
func NewAccessService(
	examRepo *repository.ExamRepository,
	contentRepo *repository.ContentRepository,
	sessionRepo *repository.SessionRepository,
	monitor *MonitorService,
	log zerolog.Logger,
) *AccessService {
	return &AccessService{
		examRepo:    examRepo,
		contentRepo: contentRepo,
		sessionRepo: sessionRepo,
		monitor:     monitor,
		log:         log.With().Str("component", "access_service").Logger(),
	}
}

// RedeemCode atomically consumes a single-use access code and opens a
// session. The submitted plaintext is verified against every redeemable
// hash of the exam inside one transaction, so two racing redemptions of
// the same code cannot both succeed.
func (s *AccessService) RedeemCode(ctx context.Context, req *model.RedeemCodeRequest) (*model.SessionCreatedOut, error) {
	exam, err := s.examRepo.GetByID(ctx, req.ExamID)
	if err != nil {
		return nil, err
	}

	session, err := s.newSession(ctx, exam)
	if err != nil {
		return nil, err
	}

	verify := func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Code)) == nil
	}
	if err := s.sessionRepo.RedeemAndCreate(ctx, exam.ID, verify, session); err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return nil, ErrCodeInvalid
		}
		if errors.Is(err, repository.ErrCodeSessionLive) {
			return nil, ErrSessionLive
		}
		return nil, fmt.Errorf("redeem code: %w", err)
	}

	s.log.Info().
		Int64("exam_id", exam.ID).
		Int64("session_id", session.ID).
		Msg("Code redeemed, session opened")
	s.monitor.Publish(ctx, MonitorEvent{
		Type:      MonitorSessionStarted,
		ExamID:    exam.ID,
		SessionID: session.ID,
	})

	return sessionCreated(session, exam), nil
}

// StartSession opens a session through the candidate-start path: the
// candidate identifies by name and code instead of redeeming an access
// code. A still-running session for the same candidate code is refused.
func (s *AccessService) StartSession(ctx context.Context, req *model.StartSessionRequest) (*model.SessionCreatedOut, error) {
	exam, err := s.examRepo.GetByID(ctx, req.ExamID)
	if err != nil {
		return nil, err
	}

	if req.CandidateCode != "" {
		live, err := s.sessionRepo.GetLiveByCandidateCode(ctx, exam.ID, req.CandidateCode)
		if err == nil && live != nil {
			return nil, ErrSessionLive
		}
	}

	session, err := s.newSession(ctx, exam)
	if err != nil {
		return nil, err
	}
	session.CandidateFirstName = req.CandidateFirstName
	session.CandidateLastName = req.CandidateLastName
	session.CandidateCode = req.CandidateCode

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.Info().
		Int64("exam_id", exam.ID).
		Int64("session_id", session.ID).
		Msg("Candidate session opened")
	s.monitor.Publish(ctx, MonitorEvent{
		Type:      MonitorSessionStarted,
		ExamID:    exam.ID,
		SessionID: session.ID,
		Candidate: req.CandidateFirstName + " " + req.CandidateLastName,
	})

	return sessionCreated(session, exam), nil
}

// VerifyGate checks the exam's gate password.
func (s *AccessService) VerifyGate(ctx context.Context, req *model.GateVerifyRequest) error {
	exam, err := s.examRepo.GetByID(ctx, req.ExamID)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(exam.GatePassword), []byte(req.Password)) != 1 {
		return ErrGateMismatch
	}
	return nil
}

// newSession builds an unsaved session: bearer token, fixed time window
// and the frozen per-block question draw.
func (s *AccessService) newSession(ctx context.Context, exam *model.Exam) (*model.ExamSession, error) {
	selected, err := s.drawQuestions(ctx, exam.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &model.ExamSession{
		ExamID:      exam.ID,
		Token:       uuid.New().String(),
		StartedAt:   now,
		EndsAt:      now.Add(time.Duration(exam.DurationMinutes) * time.Minute),
		Active:      true,
		SelectedMap: selected,
	}, nil
}

// drawQuestions picks qty random enabled questions from each enabled
// block. The draw is made once and stored with the session, so repeated
// question fetches always serve the same set in the same order.
func (s *AccessService) drawQuestions(ctx context.Context, examID int64) (model.SelectedMap, error) {
	blocks, err := s.contentRepo.ListBlocks(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}

	selected := make(model.SelectedMap)
	for _, b := range blocks {
		if !b.Enabled || b.Qty <= 0 {
			continue
		}
		pool, err := s.contentRepo.ListEnabledQuestionIDs(ctx, b.ID)
		if err != nil {
			return nil, fmt.Errorf("list questions of block %d: %w", b.ID, err)
		}
		if len(pool) == 0 {
			continue
		}
		rand.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})
		n := b.Qty
		if n > len(pool) {
			n = len(pool)
		}
		selected[b.ID] = pool[:n]
	}

	if selected.TotalQuestions() == 0 {
		return nil, ErrExamHasNoContent
	}
	return selected, nil
}

func sessionCreated(s *model.ExamSession, exam *model.Exam) *model.SessionCreatedOut {
	return &model.SessionCreatedOut{
		SessionID:       s.ID,
		Token:           s.Token,
		ExamID:          exam.ID,
		DurationMinutes: exam.DurationMinutes,
		EndsAt:          s.EndsAt,
	}
}
