package service

import (
	"crypto/subtle"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rl1809/warehouse/internal/platform/observability"
)

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// AuthService checks the single admin account.
type AuthService struct {
	username     string
	passwordHash []byte
	logger       observability.Logger
}

func NewAuthService(username string, passwordHash []byte, logger observability.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{username: username, passwordHash: passwordHash, logger: logger}
}

func (s *AuthService) Login(username, password string) error {
	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	// compare the hash even for an unknown user so both paths cost the same
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		s.logger.Warn("login failed", zap.String("username", username))
		return ErrInvalidCredentials
	}

	s.logger.Info("admin logged in", zap.String("username", username))
	return nil
}
