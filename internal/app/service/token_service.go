package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"taskzone/internal/common"
	"taskzone/internal/common/security"
	"taskzone/internal/domain/model"
	"taskzone/internal/domain/repository"
	"taskzone/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
)

// TokenService owns the access/refresh token lifecycle: issuing pairs at
// login, verifying bearer tokens, exchanging refresh tokens for new access
// tokens, and acknowledging logout.
type TokenService struct {
	refreshRepo repository.RefreshTokenRepository
}

func NewTokenService(refreshRepo repository.RefreshTokenRepository) *TokenService {
	return &TokenService{refreshRepo: refreshRepo}
}

// TokenPair carries the two credentials returned at login.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// IssuePair mints a 15-minute access token and a 7-day refresh token for the
// user and persists the refresh token record.
func (s *TokenService) IssuePair(ctx context.Context, user *model.User) (*TokenPair, error) {
	role := model.NormalizeRole(user.Role)

	accessToken, err := security.GenerateAccessToken(user.ID, role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := security.GenerateRefreshToken(user.ID, role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	record := &model.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(config.AppConfig.RefreshTokenTTL),
	}
	if err := s.refreshRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// VerifyAccess validates signature and expiry of a bearer token and returns
// the principal it encodes. Missing tokens map to 401, bad ones to 403.
func (s *TokenService) VerifyAccess(tokenString string) (model.Principal, error) {
	if tokenString == "" {
		return model.Principal{}, common.ErrUnauthorized
	}

	token, err := jwtauth.VerifyToken(security.AccessAuth, tokenString)
	if err != nil {
		return model.Principal{}, common.ErrInvalidToken
	}

	claims := token.PrivateClaims()
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return model.Principal{}, common.ErrInvalidToken
	}
	role, _ := claims["role"].(string)

	return model.Principal{UserID: userID, Role: model.NormalizeRole(role)}, nil
}

// Refresh exchanges a valid, still-stored refresh token for a new access
// token. The refresh token itself is not rotated: the same value stays
// usable until it expires or is removed from the store.
func (s *TokenService) Refresh(ctx context.Context, refreshValue string) (string, error) {
	if refreshValue == "" {
		return "", common.Errorf("refresh token is required: %w", common.ErrBadRequest)
	}

	claims, err := security.ParseRefreshToken(refreshValue)
	if err != nil {
		return "", common.ErrInvalidToken
	}

	record, err := s.refreshRepo.FindByToken(ctx, refreshValue)
	if err != nil {
		// Absent means revoked or never issued; both read as invalid.
		return "", common.ErrInvalidToken
	}

	if time.Now().After(record.ExpiresAt) {
		if delErr := s.refreshRepo.DeleteByToken(ctx, refreshValue); delErr != nil {
			log.Printf("WARN: failed to delete expired refresh token for user %s: %v", record.UserID, delErr)
		}
		return "", common.ErrInvalidToken
	}

	accessToken, err := security.GenerateAccessToken(claims.UserID, model.NormalizeRole(claims.Role))
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return accessToken, nil
}

// Revoke acknowledges a logout. Server-side refresh-token state is left
// untouched: a refresh token issued before logout keeps working until it
// expires. Known weakness, kept to match the API's observable behavior.
func (s *TokenService) Revoke(ctx context.Context, accessValue string) error {
	if accessValue == "" {
		return common.Errorf("token required for logout: %w", common.ErrBadRequest)
	}
	if _, err := s.VerifyAccess(accessValue); err != nil {
		log.Printf("INFO: logout with unverifiable access token")
	}
	return nil
}
