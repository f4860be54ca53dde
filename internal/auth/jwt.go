package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mmynk/tracker/internal/models"
)

var (
	ErrInvalidToken = errors.New("given token not valid for any token type")
	ErrMissingToken = errors.New("authentication credentials were not provided")
)

// TokenType distinguishes short-lived access tokens from refresh tokens.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// TokenPair is returned on login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// JWTManager handles JWT token generation and validation.
type JWTManager struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// Claims represents the custom JWT claims for a user session.
type Claims struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// NewJWTManager creates a new JWT manager.
// secretKey should be a strong random string (e.g., 32 bytes).
func NewJWTManager(secretKey string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:  []byte(secretKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// GeneratePair issues an access and a refresh token for the user.
func (m *JWTManager) GeneratePair(user *models.User) (*TokenPair, error) {
	access, err := m.generate(user.ID, user.Username, AccessToken, m.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := m.generate(user.ID, user.Username, RefreshToken, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh validates a refresh token and issues a new access token for the
// same user. The refresh token itself is not rotated.
func (m *JWTManager) Refresh(refreshToken string) (string, error) {
	claims, err := m.Validate(refreshToken, RefreshToken)
	if err != nil {
		return "", err
	}
	return m.generate(claims.UserID, claims.Username, AccessToken, m.accessTTL)
}

func (m *JWTManager) generate(userID, username string, typ TokenType, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    userID,
		Username:  username,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Validate parses and validates a JWT token of the expected type,
// returning the claims if valid.
func (m *JWTManager) Validate(tokenString string, want TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// Verify the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != want {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, want)
	}

	return claims, nil
}
