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

// Session errors.
var (
	ErrAlreadyFinished = repository.ErrSessionFinished
	ErrBlockNotInDraw  = errors.New("block is not part of this session")
)

// SessionResultOut is the admin result-review payload: the session with
// freshly computed block statistics and the full answer detail list.
type SessionResultOut struct {
	Session    *model.ExamSession   `json:"session"`
	Status     model.SessionStatus  `json:"status"`
	BlockStats []model.BlockStat    `json:"block_stats"`
	Answers    []model.AnswerDetail `json:"answers"`
}

// SessionService serves the frozen question draw, closes sessions and
// exposes results to admins.
type SessionService struct {
	sessionRepo *repository.SessionRepository
	answerRepo  *repository.AnswerRepository
	contentRepo *repository.ContentRepository
	monitor     *MonitorService
	log         zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	sessionRepo *repository.SessionRepository,
	answerRepo *repository.AnswerRepository,
	contentRepo *repository.ContentRepository,
	monitor *MonitorService,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		answerRepo:  answerRepo,
		contentRepo: contentRepo,
		monitor:     monitor,
		log:         log.With().Str("component", "session_service").Logger(),
	}
}

// GetByToken resolves a session bearer token.
func (s *SessionService) GetByToken(ctx context.Context, token string) (*model.ExamSession, error) {
	return s.sessionRepo.GetByToken(ctx, token)
}

// GetBlockQuestions serves one block of a session's frozen draw. The
// questions come back in the order drawn at session creation, options
// stripped of their correctness flags.
func (s *SessionService) GetBlockQuestions(ctx context.Context, session *model.ExamSession, blockID int64) (*model.BlockQuestionsOut, error) {
	questionIDs, ok := session.SelectedMap[blockID]
	if !ok {
		return nil, ErrBlockNotInDraw
	}

	block, err := s.contentRepo.GetBlock(ctx, blockID)
	if err != nil {
		return nil, err
	}
	questions, err := s.contentRepo.GetQuestionsByIDs(ctx, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("get questions: %w", err)
	}

	out := &model.BlockQuestionsOut{
		BlockID:    block.ID,
		BlockTitle: block.Title,
		Qty:        len(questions),
		Questions:  make([]model.QuestionOut, 0, len(questions)),
	}
	for _, q := range questions {
		qo := model.QuestionOut{
			ID:         q.ID,
			Code:       q.Code,
			Text:       q.Text,
			OrderIndex: q.OrderIndex,
			Options:    make([]model.OptionOut, 0, len(q.Options)),
		}
		for _, o := range q.Options {
			qo.Options = append(qo.Options, model.OptionOut{ID: o.ID, Text: o.Text})
		}
		out.Questions = append(out.Questions, qo)
	}
	return out, nil
}

// Finish closes a session exactly once and computes its final score.
//
// Finishing is allowed past the end time: the candidate gets whatever
// their ledger holds. Only a second finish is refused. The score is
// taken over the answered questions only; blocks without a single
// answer are left out of the per-block statistics.
func (s *SessionService) Finish(ctx context.Context, session *model.ExamSession) (*model.FinishOut, error) {
	questionBlocks, blocks, err := s.scoringContext(ctx, session)
	if err != nil {
		return nil, err
	}
	blockOrder := make([]int64, 0, len(blocks))
	titles := make(map[int64]string, len(blocks))
	for _, b := range blocks {
		blockOrder = append(blockOrder, b.ID)
		titles[b.ID] = b.Title
	}

	total := session.SelectedMap.TotalQuestions()
	compute := func(answers []model.Answer) (float64, []model.BlockStat) {
		score := ComputeScore(answers)
		stats := ComputeBlockStats(answers, questionBlocks, blockOrder)
		for i := range stats {
			stats[i].BlockTitle = titles[stats[i].BlockID]
		}
		return score, stats
	}

	updated, answers, err := s.sessionRepo.FinishAndScore(ctx, session.ID, time.Now(), compute)
	if err != nil {
		return nil, err
	}

	correct := 0
	for _, a := range answers {
		if a.IsCorrect {
			correct++
		}
	}

	s.log.Info().
		Int64("session_id", session.ID).
		Float64("score", *updated.ScorePercent).
		Msg("Session finished")
	s.monitor.Publish(ctx, MonitorEvent{
		Type:         MonitorSessionFinished,
		ExamID:       session.ExamID,
		SessionID:    session.ID,
		ScorePercent: updated.ScorePercent,
	})

	return &model.FinishOut{
		TotalQuestions: total,
		Answered:       len(answers),
		Correct:        correct,
		ScorePercent:   *updated.ScorePercent,
		BlockStats:     updated.BlockStats,
	}, nil
}

// ListResults retrieves paginated session results for an exam.
func (s *SessionService) ListResults(ctx context.Context, examID int64, page, perPage int, search *string, status *model.SessionStatus) ([]repository.ResultRow, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	return s.sessionRepo.ListResults(ctx, examID, page, perPage, search, status)
}

// GetResult retrieves one session's full result for admin review. Block
// statistics are recomputed from the ledger on every read, so they stay
// consistent with the answer details even for sessions closed before a
// content edit.
func (s *SessionService) GetResult(ctx context.Context, sessionID int64) (*SessionResultOut, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	answers, err := s.answerRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	questionBlocks, blocks, err := s.scoringContext(ctx, session)
	if err != nil {
		return nil, err
	}
	blockOrder := make([]int64, 0, len(blocks))
	titles := make(map[int64]string, len(blocks))
	for _, b := range blocks {
		blockOrder = append(blockOrder, b.ID)
		titles[b.ID] = b.Title
	}
	stats := ComputeBlockStats(answers, questionBlocks, blockOrder)
	for i := range stats {
		stats[i].BlockTitle = titles[stats[i].BlockID]
	}

	details, err := s.answerRepo.ListDetails(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &SessionResultOut{
		Session:    session,
		Status:     session.Status(time.Now()),
		BlockStats: stats,
		Answers:    details,
	}, nil
}

// DeleteResult purges a session and its answer ledger.
func (s *SessionService) DeleteResult(ctx context.Context, sessionID int64) error {
	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.log.Info().Int64("session_id", sessionID).Msg("Session result purged")
	return nil
}

// ForceClose deactivates a running session without scoring it.
func (s *SessionService) ForceClose(ctx context.Context, sessionID int64) error {
	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		return err
	}
	return s.sessionRepo.Deactivate(ctx, sessionID)
}

// scoringContext loads the question-to-block mapping of a session's draw
// and the exam's blocks in presentation order.
func (s *SessionService) scoringContext(ctx context.Context, session *model.ExamSession) (map[int64]int64, []model.Block, error) {
	var allQuestionIDs []int64
	for _, blockID := range session.SelectedMap.BlockIDs() {
		allQuestionIDs = append(allQuestionIDs, session.SelectedMap[blockID]...)
	}
	questionBlocks, err := s.answerRepo.QuestionBlocks(ctx, allQuestionIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("map questions to blocks: %w", err)
	}
	blocks, err := s.contentRepo.ListBlocks(ctx, session.ExamID)
	if err != nil {
		return nil, nil, fmt.Errorf("list blocks: %w", err)
	}
	return questionBlocks, blocks, nil
}
