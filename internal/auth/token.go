// Package auth resolves the bearer token the widget presents to the Green
// Buddy backend and exposes the display identity embedded in it.
//
// The widget never issues or refreshes tokens; sign-in happens in the web app
// and the token is handed to this process out of band. Resolution order is
// environment variable, OS keyring, then token file.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mitchellh/go-homedir"
	"github.com/zalando/go-keyring"
)

const (
	envToken       = "GREEN_BUDDY_TOKEN"
	keyringService = "green-buddy"
	keyringUser    = "token"
	tokenFile      = "~/.config/green-buddy/token"
)

// ErrNoToken indicates no bearer token could be found in any source.
var ErrNoToken = errors.New("no bearer token found")

// LoadToken returns the bearer token from the first source that has one.
// The "Bearer " prefix is stripped if present so callers always hold the raw
// token.
func LoadToken() (string, error) {
	if token := strings.TrimSpace(os.Getenv(envToken)); token != "" {
		return Normalize(token), nil
	}

	if token, err := keyring.Get(keyringService, keyringUser); err == nil {
		if token = strings.TrimSpace(token); token != "" {
			return Normalize(token), nil
		}
	}

	path, err := homedir.Expand(tokenFile)
	if err != nil {
		return "", fmt.Errorf("expand token path: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", ErrNoToken
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return Normalize(token), nil
}

// SaveToken stores the token in the OS keyring, falling back to the token
// file when no keyring backend is available.
func SaveToken(token string) error {
	token = Normalize(token)
	if token == "" {
		return errors.New("token is required")
	}
	if err := keyring.Set(keyringService, keyringUser, token); err == nil {
		return nil
	}
	path, err := homedir.Expand(tokenFile)
	if err != nil {
		return fmt.Errorf("expand token path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("prepare token directory: %w", err)
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

// Normalize strips an optional "Bearer " prefix and surrounding whitespace.
func Normalize(token string) string {
	token = strings.TrimSpace(token)
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

// Identity is the display identity carried inside the bearer token.
type Identity struct {
	Username string
	UserID   string
	ExpireAt time.Time
}

// Expired reports whether the token carried an expiry in the past.
func (i Identity) Expired(now time.Time) bool {
	return !i.ExpireAt.IsZero() && i.ExpireAt.Before(now)
}

type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// PeekIdentity decodes the token's claims without verifying its signature.
// Verification belongs to the backend; the widget only needs the username for
// message alignment and an expiry hint for early diagnostics.
func PeekIdentity(token string) (Identity, error) {
	token = Normalize(token)
	if token == "" {
		return Identity{}, errors.New("token is required")
	}

	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Identity{}, fmt.Errorf("decode token claims: %w", err)
	}

	identity := Identity{
		Username: strings.TrimSpace(claims.Username),
		UserID:   strings.TrimSpace(claims.Subject),
	}
	if identity.Username == "" {
		identity.Username = identity.UserID
	}
	if claims.ExpiresAt != nil {
		identity.ExpireAt = claims.ExpiresAt.Time
	}
	return identity, nil
}
