package service

import (
	"context"
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/urcet/yourfest-api/internal/config"
)

var (
	ErrWrongCredentials = errors.New("wrong username or password")
	ErrAdminDisabled    = errors.New("admin access is not configured")
)

type Admin struct {
	Username string `json:"username"`
}

type AuthService struct {
	username     string
	passwordHash []byte
}

func NewAuthService(conf *config.AdminConfig) *AuthService {
	return &AuthService{
		username:     conf.Username,
		passwordHash: []byte(conf.PasswordHash),
	}
}

// HashPassword produces the admin.password_hash value printed by cmd/adminhash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

func (s *AuthService) Login(_ context.Context, username, password string) (Admin, error) {
	if len(s.passwordHash) == 0 {
		return Admin{}, ErrAdminDisabled
	}

	// compare the password even for an unknown user to keep timing flat
	passwordErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) != 1 || passwordErr != nil {
		return Admin{}, ErrWrongCredentials
	}

	return Admin{Username: s.username}, nil
}
