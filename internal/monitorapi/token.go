package monitorapi

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// TokenSource supplies the bearer token for outbound requests.
// An empty token with a nil error sends the request unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed bearer token
type StaticToken string

// Token returns the static token
func (t StaticToken) Token(ctx context.Context) (string, error) {
	return string(t), nil
}

// FileTokenSource reads the session token from a file maintained by an
// external session provider. A missing file or an expired JWT yields no
// token rather than an error.
type FileTokenSource struct {
	now  func() time.Time
	path string
}

// NewFileTokenSource creates a token source backed by path
func NewFileTokenSource(path string) *FileTokenSource {
	return &FileTokenSource{path: path, now: time.Now}
}

// Token reads the current token from disk
func (s *FileTokenSource) Token(ctx context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", nil
	}
	if tokenExpired(token, s.now()) {
		log.Printf("[MONITORAPI] Session token in %s has expired, sending requests unauthenticated", s.path)
		return "", nil
	}
	return token, nil
}

// tokenExpired reports whether raw is a JWT whose exp claim has passed.
// The signature is not checked; only the upstream API can verify it.
// Tokens that are not JWTs never expire here.
func tokenExpired(raw string, now time.Time) bool {
	tok, err := jwt.ParseInsecure([]byte(raw), jwt.WithValidate(false))
	if err != nil {
		return false
	}
	exp := tok.Expiration()
	return !exp.IsZero() && !now.Before(exp)
}
