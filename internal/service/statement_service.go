package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/certifex/certifex-backend/internal/model"
	"github.com/certifex/certifex-backend/internal/repository"
	"github.com/certifex/certifex-backend/internal/response"
)

// StatementService handles user statements and the admin inbox.
type StatementService struct {
	statementRepo *repository.StatementRepository
	log           zerolog.Logger
}

// NewStatementService creates a new StatementService.
func NewStatementService(statementRepo *repository.StatementRepository, log zerolog.Logger) *StatementService {
	return &StatementService{
		statementRepo: statementRepo,
		log:           log.With().Str("component", "statement_service").Logger(),
	}
}

// Create files a statement for a user.
func (s *StatementService) Create(ctx context.Context, userID int64, message string) (*model.Statement, error) {
	statement := &model.Statement{UserID: userID, Message: message}
	if err := s.statementRepo.Create(ctx, statement); err != nil {
		return nil, fmt.Errorf("create statement: %w", err)
	}
	s.log.Info().Int64("user_id", userID).Msg("Statement filed")
	return statement, nil
}

// ListOwn retrieves the calling user's statements.
func (s *StatementService) ListOwn(ctx context.Context, userID int64) ([]model.Statement, error) {
	statements, err := s.statementRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if statements == nil {
		statements = []model.Statement{}
	}
	return statements, nil
}

// ListAll retrieves the admin inbox, paginated.
func (s *StatementService) ListAll(ctx context.Context, page, perPage int) ([]model.StatementWithAuthor, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	statements, total, err := s.statementRepo.ListAll(ctx, page, perPage)
	if err != nil {
		return nil, nil, err
	}
	if statements == nil {
		statements = []model.StatementWithAuthor{}
	}

	totalPages := (int(total) + perPage - 1) / perPage
	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages,
	}
	return statements, pagination, nil
}
