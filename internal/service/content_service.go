package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/certifex/certifex-backend/internal/config"
	"github.com/certifex/certifex-backend/internal/model"
	"github.com/certifex/certifex-backend/internal/repository"
)

// ErrContentInUse mirrors the repository sentinel for handlers.
var ErrContentInUse = repository.ErrContentInUse

// ContentService handles exam content: the admin editor tree, the
// candidate-facing exam config and the Redis caches derived from both.
type ContentService struct {
	examRepo    *repository.ExamRepository
	contentRepo *repository.ContentRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewContentService creates a new ContentService.
func NewContentService(
	examRepo *repository.ExamRepository,
	contentRepo *repository.ContentRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *ContentService {
	return &ContentService{
		examRepo:    examRepo,
		contentRepo: contentRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "content_service").Logger(),
	}
}

// GetExamConfig retrieves the candidate-facing exam config, preferring
// the Redis snapshot and falling back to PostgreSQL on a miss.
func (s *ContentService) GetExamConfig(ctx context.Context, examID int64) (*model.ExamConfig, error) {
	key := config.CacheKey.ExamConfigKey(examID)
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var cfg model.ExamConfig
		if err := json.Unmarshal(data, &cfg); err == nil {
			return &cfg, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Int64("exam_id", examID).Msg("config cache read failed")
	}

	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.buildExamConfig(ctx, exam)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(cfg); err == nil {
		if err := s.rdb.Set(ctx, key, payload, 0).Err(); err != nil {
			s.log.Warn().Err(err).Int64("exam_id", examID).Msg("config cache write failed")
		}
	}
	return cfg, nil
}

// GetTree retrieves the full editable content tree for the admin editor.
func (s *ContentService) GetTree(ctx context.Context, examID int64) (*model.ContentTree, error) {
	if _, err := s.examRepo.GetByID(ctx, examID); err != nil {
		return nil, err
	}
	return s.contentRepo.GetTree(ctx, examID)
}

// ReplaceTree applies the editor tree and rewarms the exam's caches.
func (s *ContentService) ReplaceTree(ctx context.Context, examID int64, tree *model.ContentTree) (*model.ContentTree, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if err := s.contentRepo.ReplaceTree(ctx, examID, tree); err != nil {
		return nil, err
	}
	if err := s.WarmExamCache(ctx, exam); err != nil {
		s.log.Warn().Err(err).Int64("exam_id", examID).Msg("cache rewarm after edit failed")
	}
	s.log.Info().Int64("exam_id", examID).Int("blocks", len(tree.Blocks)).Msg("Content tree replaced")
	return s.contentRepo.GetTree(ctx, examID)
}

// UpdateSettings applies the exam settings editor and refreshes the
// config snapshot.
func (s *ContentService) UpdateSettings(ctx context.Context, examID int64, req *model.UpdateExamSettingsRequest) (*model.Exam, error) {
	if err := s.examRepo.UpdateSettings(ctx, examID, req); err != nil {
		return nil, err
	}
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if err := s.WarmExamCache(ctx, exam); err != nil {
		s.log.Warn().Err(err).Int64("exam_id", examID).Msg("cache rewarm after settings failed")
	}
	return exam, nil
}

// WarmExamCache loads an exam's config snapshot and option key hash from
// PostgreSQL into Redis. Both are written in one pipeline so readers
// never observe a half-warmed exam.
func (s *ContentService) WarmExamCache(ctx context.Context, exam *model.Exam) error {
	cfg, err := s.buildExamConfig(ctx, exam)
	if err != nil {
		return err
	}
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	keys, err := s.contentRepo.ListOptionKeys(ctx, exam.ID)
	if err != nil {
		return fmt.Errorf("list option keys: %w", err)
	}
	optionKey := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		correct := "0"
		if k.IsCorrect {
			correct = "1"
		}
		optionKey[strconv.FormatInt(k.OptionID, 10)] = fmt.Sprintf("%d:%s", k.QuestionID, correct)
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.ExamConfigKey(exam.ID), cfgJSON, 0)
	pipe.Del(ctx, config.CacheKey.ExamOptionKeyKey(exam.ID))
	if len(optionKey) > 0 {
		pipe.HSet(ctx, config.CacheKey.ExamOptionKeyKey(exam.ID), optionKey)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache to redis: %w", err)
	}

	s.log.Debug().
		Int64("exam_id", exam.ID).
		Int("options", len(optionKey)).
		Msg("Cache warmed")
	return nil
}

// PrewarmAllCaches loads every exam into Redis on application startup.
func (s *ContentService) PrewarmAllCaches(ctx context.Context) error {
	exams, err := s.examRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list exams: %w", err)
	}
	if len(exams) == 0 {
		s.log.Info().Msg("No exams to prewarm")
		return nil
	}

	warmed := 0
	for i := range exams {
		if err := s.WarmExamCache(ctx, &exams[i]); err != nil {
			s.log.Warn().
				Err(err).
				Int64("exam_id", exams[i].ID).
				Msg("Failed to warm exam, skipping")
			continue
		}
		warmed++
	}

	s.log.Info().
		Int("warmed", warmed).
		Int("total", len(exams)).
		Msg("Prewarming complete")
	return nil
}

// LookupOption resolves an option to its owning question and correctness
// flag from the Redis hash, falling back to PostgreSQL on a miss.
func (s *ContentService) LookupOption(ctx context.Context, examID, optionID int64) (questionID int64, isCorrect bool, err error) {
	field := strconv.FormatInt(optionID, 10)
	val, err := s.rdb.HGet(ctx, config.CacheKey.ExamOptionKeyKey(examID), field).Result()
	if err == nil {
		parts := strings.SplitN(val, ":", 2)
		if len(parts) == 2 {
			qID, perr := strconv.ParseInt(parts[0], 10, 64)
			if perr == nil {
				return qID, parts[1] == "1", nil
			}
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Int64("exam_id", examID).Msg("option key cache read failed")
	}

	opt, err := s.contentRepo.GetOption(ctx, optionID)
	if err != nil {
		return 0, false, err
	}
	return opt.QuestionID, opt.IsCorrect, nil
}

// buildExamConfig assembles the candidate-facing snapshot: title,
// duration and enabled blocks only.
func (s *ContentService) buildExamConfig(ctx context.Context, exam *model.Exam) (*model.ExamConfig, error) {
	blocks, err := s.contentRepo.ListBlocks(ctx, exam.ID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	out := make([]model.BlockOut, 0, len(blocks))
	for _, b := range blocks {
		if !b.Enabled {
			continue
		}
		out = append(out, model.BlockOut{ID: b.ID, Title: b.Title, Qty: b.Qty, OrderIndex: b.OrderIndex})
	}
	return &model.ExamConfig{
		ExamID:          exam.ID,
		Title:           exam.Title,
		DurationMinutes: exam.DurationMinutes,
		Blocks:          out,
	}, nil
}
