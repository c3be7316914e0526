package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/certifex/certifex-backend/internal/model"
	"github.com/certifex/certifex-backend/internal/repository"
)

// Answer errors.
var (
	ErrSessionNotLive       = errors.New("session is not accepting answers")
	ErrQuestionNotInSession = errors.New("question is not part of this session")
	ErrOptionWrongQuestion  = errors.New("option does not belong to the question")
)

// AnswerService maintains the per-session answer ledger.
type AnswerService struct {
	answerRepo *repository.AnswerRepository
	content    *ContentService
	monitor    *MonitorService
	log        zerolog.Logger
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(
	answerRepo *repository.AnswerRepository,
	content *ContentService,
	monitor *MonitorService,
	log zerolog.Logger,
) *AnswerService {
	return &AnswerService{
		answerRepo: answerRepo,
		content:    content,
		monitor:    monitor,
		log:        log.With().Str("component", "answer_service").Logger(),
	}
}

// Record stores one answer. The session must still be live against the
// current clock; a finished or timed-out session is refused even though
// nothing has closed it. The question must belong to the session's draw
// and the option to the question. Correctness is resolved now and frozen
// into the row; re-answering the same question replaces the earlier row.
func (s *AnswerService) Record(ctx context.Context, session *model.ExamSession, req *model.RecordAnswerRequest) (*model.RecordAnswerOut, error) {
	now := time.Now()
	if !SessionIsLive(session, now) {
		if session.FinishedAt != nil {
			return nil, ErrAlreadyFinished
		}
		return nil, ErrSessionNotLive
	}

	if !s.questionInDraw(session, req.QuestionID) {
		return nil, ErrQuestionNotInSession
	}

	questionID, isCorrect, err := s.content.LookupOption(ctx, session.ExamID, req.OptionID)
	if err != nil {
		return nil, fmt.Errorf("lookup option: %w", err)
	}
	if questionID != req.QuestionID {
		return nil, ErrOptionWrongQuestion
	}

	answer := &model.Answer{
		SessionID:  session.ID,
		QuestionID: req.QuestionID,
		OptionID:   req.OptionID,
		IsCorrect:  isCorrect,
		AnsweredAt: now,
	}
	if err := s.answerRepo.Upsert(ctx, answer); err != nil {
		return nil, fmt.Errorf("store answer: %w", err)
	}

	s.monitor.Publish(ctx, MonitorEvent{
		Type:       MonitorAnswerRecorded,
		ExamID:     session.ExamID,
		SessionID:  session.ID,
		QuestionID: req.QuestionID,
	})

	return &model.RecordAnswerOut{Correct: isCorrect}, nil
}

func (s *AnswerService) questionInDraw(session *model.ExamSession, questionID int64) bool {
	for _, questionIDs := range session.SelectedMap {
		for _, id := range questionIDs {
			if id == questionID {
				return true
			}
		}
	}
	return false
}
