package adminauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

const roleOperator = "operator"

type OperatorClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Service authenticates the single back-office operator configured at
// startup. No user table: email and bcrypt hash come from config.
type Service struct {
	email        string
	passwordHash string
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewService(email, passwordHash, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	return &Service{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: passwordHash,
		secret:       []byte(secret),
		ttl:          ttl,
		now:          time.Now,
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if s.email == "" || s.passwordHash == "" || len(s.secret) == 0 {
		return LoginResult{}, fmt.Errorf("admin auth is not configured")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email != s.email {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	now := s.now().UTC()
	expires := now.Add(s.ttl)
	claims := OperatorClaims{
		Email: email,
		Role:  roleOperator,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			NotBefore: jwt.NewNumericDate(now.Add(-5 * time.Second)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign jwt: %w", err)
	}

	return LoginResult{Token: signed, ExpiresAt: expires}, nil
}

func (s *Service) Verify(tokenString string) (OperatorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &OperatorClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return OperatorClaims{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*OperatorClaims)
	if !ok || !token.Valid {
		return OperatorClaims{}, ErrInvalidToken
	}
	if claims.Role != roleOperator || claims.Email == "" {
		return OperatorClaims{}, ErrInvalidToken
	}

	return *claims, nil
}

// HashPassword is a helper for provisioning the operator credential.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
