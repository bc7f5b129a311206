package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/repdesk/repdesk/internal/shared"
)

// MinPasswordLength is the shortest password HashPassword accepts.
const MinPasswordLength = 8

// PasswordCost is the bcrypt cost of stored hashes and of the unknown-user
// comparison, so both take the same time.
const PasswordCost = bcrypt.DefaultCost

// ErrWeakPassword rejects passwords below MinPasswordLength.
var ErrWeakPassword = fmt.Errorf("password must be at least %d characters", MinPasswordLength)

// Service checks credentials and tracks server-side sessions.
type Service struct {
	repo      Repository
	dummyHash []byte
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	// Unknown emails still pay for one bcrypt comparison.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("repdesk-unknown-user"), PasswordCost)
	return &Service{repo: repo, dummyHash: dummy}
}

// Authenticate returns the active user matching email and password. Every
// failure is reported as shared.ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("auth: find user: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// CurrentUser loads the signed-in user. Inactive users count as signed out.
func (s *Service) CurrentUser(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.ErrUnauthenticated
	}
	return user, nil
}

// RegisterSession records a login in user_sessions.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	if id == "" || userID <= 0 {
		return errors.New("auth: session id and user required")
	}
	return s.repo.CreateSession(ctx, id, userID, expiresAt.UTC(), ip, truncate(ua, 512))
}

// RemoveSession deletes a session record.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.repo.DeleteSession(ctx, id)
}

// HashPassword returns the bcrypt hash stored for new users.
func HashPassword(password string) (string, error) {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "", ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
