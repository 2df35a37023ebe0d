// Package services – AuthService
//
// This file implements account registration and login. Passwords are stored
// as bcrypt hashes; successful logins are answered with a signed HS256 JWT
// whose subject is the user id. Predictable failures surface as the sentinel
// errors in errors.go so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/applicationtrack/applicationtrack-backend/internal/domain"
	"github.com/applicationtrack/applicationtrack-backend/internal/repo"
)

// minPasswordLen is the minimum accepted password length on registration.
const minPasswordLen = 8

// AuthService implements the account use cases.
type AuthService struct {
	// DB is the database handle used for all account operations.
	DB *gorm.DB
	// Secret signs and verifies access tokens (HS256).
	Secret string
	// AccessTTL bounds the lifetime of issued tokens.
	AccessTTL time.Duration
}

// NewAuthService constructs an AuthService.
func NewAuthService(db *gorm.DB, secret string, accessTTL time.Duration) *AuthService {
	return &AuthService{DB: db, Secret: secret, AccessTTL: accessTTL}
}

// Register creates a new account. Username, email, and password are all
// required; every missing field is reported together. Duplicate usernames and
// emails yield ErrUsernameTaken / ErrEmailTaken.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	var missing []string
	if username == "" {
		missing = append(missing, "username")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	if _, err := repo.GetUserByUsername(ctx, s.DB, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := repo.GetUserByEmail(ctx, s.DB, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return repo.CreateUser(ctx, s.DB, username, email, string(hash))
}

// Login checks the credentials and returns a signed access token together
// with the account. Unknown usernames and wrong passwords are both answered
// with ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	u, err := repo.GetUserByUsername(ctx, s.DB, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateAccessToken(u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// generateAccessToken issues an HS256 JWT for the user.
func (s *AuthService) generateAccessToken(u *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      u.ID,
		"username": u.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.AccessTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.Secret))
}
