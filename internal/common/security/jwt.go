package security

import (
	"errors"
	"time"

	"taskzone/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// AccessAuth signs and verifies the short-lived bearer tokens. The router's
// Verifier middleware uses it to pull claims into the request context.
var AccessAuth *jwtauth.JWTAuth

func InitJWT() {
	AccessAuth = jwtauth.New("HS256", config.AppConfig.AccessTokenKey, nil)
}

// GenerateAccessToken mints a 15-minute bearer token embedding the principal.
func GenerateAccessToken(userID, role string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(config.AppConfig.AccessTokenTTL).Unix(),
		"iat":     time.Now().Unix(),
	}
	_, tokenString, err := AccessAuth.Encode(claims)
	return tokenString, err
}

// RefreshClaims mirror the access-token claims; refresh tokens are signed
// with a separate secret and a 7-day validity.
type RefreshClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func GenerateRefreshToken(userID, role string) (string, error) {
	now := time.Now()
	claims := &RefreshClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(config.AppConfig.RefreshTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(config.AppConfig.RefreshTokenKey)
}

// ParseRefreshToken validates signature and expiry and returns the claims.
func ParseRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return config.AppConfig.RefreshTokenKey, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired refresh token")
	}
	return claims, nil
}

// Helper functions to extract claims, can be used in middleware or services
func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}

func GetUserRoleFromClaims(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}
