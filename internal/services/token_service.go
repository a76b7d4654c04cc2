package services

import (
	"errors"
	"fmt"
	"time"

	"storeapi/internal/models"

	"github.com/dgrijalva/jwt-go"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = time.Hour

// ErrMissingSecret is returned when tokens are signed or verified without a
// configured secret.
var ErrMissingSecret = errors.New("jwt secret is not configured")

// Claims is the JWT payload carried by bearer tokens.
type Claims struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.StandardClaims
}

// TokenService signs and verifies bearer tokens with a process-wide secret.
type TokenService struct {
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewTokenService creates a TokenService. A non-positive ttl falls back to
// DefaultTokenTTL.
func NewTokenService(jwtSecret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  ttl,
		now:       time.Now,
	}
}

// GenerateToken issues a signed token for identity.
func (s *TokenService) GenerateToken(identity models.Identity) (string, error) {
	if len(s.jwtSecret) == 0 {
		return "", ErrMissingSecret
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ID:       identity.ID,
		Email:    identity.Email,
		Username: identity.Username,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(s.tokenTTL).Unix(),
			IssuedAt:  now.Unix(),
		},
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and verifies a token, returning the identity it
// carries. Expired, malformed and wrongly signed tokens are all errors.
func (s *TokenService) ValidateToken(tokenString string) (*models.Identity, error) {
	if len(s.jwtSecret) == 0 {
		return nil, ErrMissingSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return &models.Identity{ID: claims.ID, Email: claims.Email, Username: claims.Username}, nil
}
