// Package auth implements account registration, credential checks, and
// bearer-token issuance for the Lingvo API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/lingvolab/lingvo/internal/domain"
	"github.com/lingvolab/lingvo/internal/infra/sqlite"
)

// Service issues and verifies credentials.
type Service struct {
	db     *sqlite.DB
	secret []byte
	ttl    time.Duration
}

// NewService creates an auth service. ttl bounds token lifetime.
func NewService(db *sqlite.DB, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Service{db: db, secret: []byte(secret), ttl: ttl}
}

// Register creates an account with registration-default progression state
// and returns it with a fresh token.
func (s *Service) Register(email, name, password string, now time.Time) (domain.User, string, error) {
	if _, err := s.db.UserByEmail(email); err == nil {
		return domain.User{}, "", domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	u, err := s.db.CreateUser(domain.NewUser(email, name, string(hash), now))
	if err != nil {
		return domain.User{}, "", err
	}

	token, err := s.TokenFor(u.ID, now)
	if err != nil {
		return domain.User{}, "", err
	}
	return u, token, nil
}

// Authenticate checks an email/password pair and returns the account.
func (s *Service) Authenticate(email, password string) (domain.User, error) {
	u, err := s.db.UserByEmail(email)
	if err != nil {
		return domain.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return domain.User{}, domain.ErrInvalidPassword
	}
	return u, nil
}

// TokenFor signs a bearer token for the user id.
func (s *Service) TokenFor(userID int64, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a bearer token and returns the user id it carries.
func (s *Service) ParseToken(raw string) (int64, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, domain.ErrInvalidToken
	}

	var id int64
	if _, err := fmt.Sscanf(claims.Subject, "%d", &id); err != nil || id <= 0 {
		return 0, domain.ErrInvalidToken
	}
	return id, nil
}
