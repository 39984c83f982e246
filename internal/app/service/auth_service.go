package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"taskzone/internal/common"
	"taskzone/internal/common/security"
	"taskzone/internal/domain/model"
	"taskzone/internal/domain/repository"

	"github.com/google/uuid"
)

// AuthService covers registration, login, user lookup and logout. Token
// issuance is delegated to the TokenService.
type AuthService struct {
	userRepo     repository.UserRepository
	tokenService *TokenService
}

func NewAuthService(userRepo repository.UserRepository, tokenService *TokenService) *AuthService {
	return &AuthService{userRepo: userRepo, tokenService: tokenService}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         *model.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, common.Errorf("username, email and password are required: %w", common.ErrValidation)
	}

	// Pre-check gives the common case a clean message; the unique constraint
	// still catches concurrent registrations with the same email.
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		log.Printf("WARN: registration attempt with existing email: %s", req.Email)
		return nil, common.Errorf("email already in use: %w", common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Role:           model.NormalizeRole(req.Role), // Defaults to regular
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("User registered successfully: %s", user.Username)
	user.HashedPassword = "" // Clear password before returning
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, common.Errorf("email and password are required: %w", common.ErrValidation)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			log.Printf("WARN: login attempt for unknown email: %s", req.Email)
			return nil, common.Errorf("user not found: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		log.Printf("WARN: invalid credentials for email: %s", req.Email)
		return nil, common.Errorf("invalid credentials: %w", common.ErrUnauthorized)
	}

	pair, err := s.tokenService.IssuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	user.HashedPassword = ""
	return &LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	}, nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (*model.User, error) {
	if uuid.Validate(id) != nil {
		return nil, common.Errorf("invalid user id: %w", common.ErrBadRequest)
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.HashedPassword = ""
	return user, nil
}

// Logout acknowledges the request; see TokenService.Revoke for the refresh
// token caveat.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	return s.tokenService.Revoke(ctx, accessToken)
}
