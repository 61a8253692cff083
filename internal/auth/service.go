// Package auth implements login, logout, and session resolution for the
// auction command surface.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/domain"
)

// Config holds the credential material and session parameters.
type Config struct {
	// Teams are the valid team usernames. A team logs in with its own name
	// as the password.
	Teams []domain.TeamID
	// AdminUser is the administrator username.
	AdminUser string
	// AdminPassword is the plain admin password. Ignored when
	// AdminPasswordBcrypt is set.
	AdminPassword string
	// AdminPasswordBcrypt is a bcrypt hash of the admin password. Takes
	// precedence over AdminPassword.
	AdminPasswordBcrypt string
	// SessionTTL bounds how long an issued token stays valid.
	SessionTTL time.Duration
}

// Service issues bearer tokens on login and resolves them back to roles.
type Service struct {
	sessions domain.SessionStore
	cfg      Config
	logger   *slog.Logger
}

// NewService creates an auth Service with the given session store and config.
func NewService(sessions domain.SessionStore, cfg Config, logger *slog.Logger) *Service {
	return &Service{
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

// Login verifies the username/password pair and, on success, creates a session
// and returns it. Team logins use the team name as the password; the admin
// uses the configured password or bcrypt hash. All failures return
// domain.ErrUnauthorized without distinguishing unknown users from bad
// passwords.
func (s *Service) Login(ctx context.Context, username, password string) (domain.Session, error) {
	role, ok := s.verify(username, password)
	if !ok {
		s.logger.WarnContext(ctx, "auth: login rejected",
			slog.String("username", username),
		)
		return domain.Session{}, domain.ErrUnauthorized
	}

	session := domain.Session{
		Token:     uuid.New().String(),
		Username:  username,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.sessions.Create(ctx, session, s.cfg.SessionTTL); err != nil {
		return domain.Session{}, fmt.Errorf("auth: create session: %w", err)
	}

	s.logger.InfoContext(ctx, "auth: login",
		slog.String("username", username),
		slog.String("kind", string(role.Kind)),
	)
	return session, nil
}

// verify checks the credential pair and returns the matching role. Both the
// admin check and the team check run constant-time comparisons against the
// supplied password.
func (s *Service) verify(username, password string) (domain.Role, bool) {
	if username == s.cfg.AdminUser {
		if s.cfg.AdminPasswordBcrypt != "" {
			err := bcrypt.CompareHashAndPassword(
				[]byte(s.cfg.AdminPasswordBcrypt), []byte(password))
			return domain.AdminRole(), err == nil
		}
		if s.cfg.AdminPassword == "" {
			return domain.Role{}, false
		}
		ok := subtle.ConstantTimeCompare(
			[]byte(s.cfg.AdminPassword), []byte(password)) == 1
		return domain.AdminRole(), ok
	}

	for _, team := range s.cfg.Teams {
		if string(team) != username {
			continue
		}
		ok := subtle.ConstantTimeCompare(
			[]byte(team), []byte(password)) == 1
		return domain.TeamRole(team), ok
	}

	return domain.Role{}, false
}

// Logout deletes the session for the given token. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("auth: logout: %w", err)
	}
	return nil
}

// Resolve maps a bearer token back to its session. Expired or unknown tokens
// return domain.ErrUnauthorized.
func (s *Service) Resolve(ctx context.Context, token string) (domain.Session, error) {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Session{}, domain.ErrUnauthorized
		}
		return domain.Session{}, fmt.Errorf("auth: resolve session: %w", err)
	}
	return session, nil
}
