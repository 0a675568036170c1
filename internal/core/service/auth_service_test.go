package service

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newAuth(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return NewAuthService("admin", hash, nil)
}

func TestLogin(t *testing.T) {
	svc := newAuth(t)

	testCases := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"valid admin", "admin", "admin123", nil},
		{"wrong password", "admin", "admin124", ErrInvalidCredentials},
		{"wrong user", "root", "admin123", ErrInvalidCredentials},
		{"case matters", "Admin", "admin123", ErrInvalidCredentials},
		{"missing password", "admin", "", ErrMissingCredentials},
		{"missing username", "", "admin123", ErrMissingCredentials},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Login(tc.username, tc.password)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
