package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/certifex/certifex-backend/internal/config"
)

// MonitorEventType enumerates the live monitor event kinds.
type MonitorEventType string

const (
	MonitorSessionStarted  MonitorEventType = "session_started"
	MonitorAnswerRecorded  MonitorEventType = "answer_recorded"
	MonitorSessionFinished MonitorEventType = "session_finished"
)

// MonitorEvent is one message on an exam's monitor channel.
type MonitorEvent struct {
	Type         MonitorEventType `json:"type"`
	ExamID       int64            `json:"exam_id"`
	SessionID    int64            `json:"session_id"`
	Candidate    string           `json:"candidate,omitempty"`
	QuestionID   int64            `json:"question_id,omitempty"`
	ScorePercent *float64         `json:"score_percent,omitempty"`
	At           time.Time        `json:"at"`
}

// MonitorService fans session activity out to admin watchers through a
// per-exam Redis pub/sub channel. Publishing is fire-and-forget: a Redis
// hiccup must never fail the candidate's request.
type MonitorService struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewMonitorService creates a new MonitorService.
func NewMonitorService(rdb *redis.Client, log zerolog.Logger) *MonitorService {
	return &MonitorService{
		rdb: rdb,
		log: log.With().Str("component", "monitor_service").Logger(),
	}
}

// Publish sends one event to the exam's monitor channel.
func (s *MonitorService) Publish(ctx context.Context, event MonitorEvent) {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.log.Error().Err(err).Msg("marshal monitor event")
		return
	}
	channel := config.CacheKey.ExamMonitorChannel(event.ExamID)
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("channel", channel).Msg("publish monitor event")
	}
}

// Subscribe opens a subscription on the exam's monitor channel. The
// caller owns the returned PubSub and must close it.
func (s *MonitorService) Subscribe(ctx context.Context, examID int64) *redis.PubSub {
	return s.rdb.Subscribe(ctx, config.CacheKey.ExamMonitorChannel(examID))
}
