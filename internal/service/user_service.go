package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/certifex/certifex-backend/internal/model"
	"github.com/certifex/certifex-backend/internal/repository"
	"github.com/certifex/certifex-backend/internal/response"
)

// User errors.
var (
	ErrIdentityTaken    = errors.New("email or personal ID already registered")
	ErrFounderImmutable = errors.New("the founder account cannot be demoted or deleted")
)

// UserService handles registration, profiles and admin user management.
type UserService struct {
	auth     *AuthService
	userRepo *repository.UserRepository
	log      zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(auth *AuthService, userRepo *repository.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{
		auth:     auth,
		userRepo: userRepo,
		log:      log.With().Str("component", "user_service").Logger(),
	}
}

// Register creates an account. The public 10-digit code is generated
// server-side and retried on the rare collision.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	taken, err := s.userRepo.EmailOrPersonalIDExists(ctx, req.Email, req.PersonalID)
	if err != nil {
		return nil, fmt.Errorf("check identity: %w", err)
	}
	if taken {
		return nil, ErrIdentityTaken
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		PersonalID:   req.PersonalID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Email:        req.Email,
		PasswordHash: hash,
		Code:         code,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Int64("user_id", user.ID).Msg("User registered")
	return user, nil
}

// GetProfile retrieves a user's public profile.
func (s *UserService) GetProfile(ctx context.Context, id int64) (*model.UserOut, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toOut(user), nil
}

// List retrieves users for the admin panel.
func (s *UserService) List(ctx context.Context, page, perPage int, search *string) ([]model.UserOut, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	users, total, err := s.userRepo.List(ctx, page, perPage, search)
	if err != nil {
		return nil, nil, err
	}

	out := make([]model.UserOut, 0, len(users))
	for i := range users {
		out = append(out, *s.toOut(&users[i]))
	}

	totalPages := (int(total) + perPage - 1) / perPage
	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages,
	}
	return out, pagination, nil
}

// Update applies the admin user edit.
func (s *UserService) Update(ctx context.Context, id int64, req *model.UpdateUserRequest) (*model.UserOut, error) {
	if err := s.userRepo.Update(ctx, id, req); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, id)
}

// SetAdmin toggles a user's admin flag. The founder account is refused:
// its admin access comes from configuration, not from this flag.
func (s *UserService) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if s.auth.IsFounder(user.Email) {
		return ErrFounderImmutable
	}
	return s.userRepo.SetAdmin(ctx, id, isAdmin)
}

// Delete removes a user. The founder account is refused.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if s.auth.IsFounder(user.Email) {
		return ErrFounderImmutable
	}
	return s.userRepo.Delete(ctx, id)
}

func (s *UserService) toOut(u *model.User) *model.UserOut {
	founder := s.auth.IsFounder(u.Email)
	return &model.UserOut{
		ID:         u.ID,
		PersonalID: u.PersonalID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Phone:      u.Phone,
		Email:      u.Email,
		Code:       u.Code,
		IsAdmin:    u.IsAdmin || founder,
		IsFounder:  founder,
		CreatedAt:  u.CreatedAt,
	}
}

// uniqueCode draws 10-digit public codes until one is free. Collisions
// are vanishingly rare but cheap to handle.
func (s *UserService) uniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code, err := randomDigits(10)
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		exists, err := s.userRepo.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not allocate a unique user code")
}
