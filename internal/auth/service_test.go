package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/domain"
)

// memSessions is an in-memory domain.SessionStore for tests. TTLs are
// recorded but not enforced.
type memSessions struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: make(map[string]domain.Session)}
}

func (m *memSessions) Create(_ context.Context, s domain.Session, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = s
	return nil
}

func (m *memSessions) Get(_ context.Context, token string) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	return s, nil
}

func (m *memSessions) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

var _ domain.SessionStore = (*memSessions)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	return Config{
		Teams:         []domain.TeamID{"CSK", "MI", "RCB"},
		AdminUser:     "admin",
		AdminPassword: "hunter2",
		SessionTTL:    time.Hour,
	}
}

func TestTeamLoginWithOwnName(t *testing.T) {
	svc := NewService(newMemSessions(), testConfig(), discardLogger())

	session, err := svc.Login(context.Background(), "CSK", "CSK")
	assert.NoError(t, err)

	check.NotEqual(t, "", session.Token)
	check.Equal(t, "CSK", session.Username)
	check.Equal(t, domain.TeamRole("CSK"), session.Role)
}

func TestTeamLoginWrongPassword(t *testing.T) {
	svc := NewService(newMemSessions(), testConfig(), discardLogger())

	_, err := svc.Login(context.Background(), "CSK", "MI")
	check.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestUnknownUserRejected(t *testing.T) {
	svc := NewService(newMemSessions(), testConfig(), discardLogger())

	_, err := svc.Login(context.Background(), "GT", "GT")
	check.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestAdminLoginPlainPassword(t *testing.T) {
	svc := NewService(newMemSessions(), testConfig(), discardLogger())

	session, err := svc.Login(context.Background(), "admin", "hunter2")
	assert.NoError(t, err)
	check.True(t, session.Role.IsAdmin())

	_, err = svc.Login(context.Background(), "admin", "wrong")
	check.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestAdminLoginBcryptTakesPrecedence(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	assert.NoError(t, err)

	cfg := testConfig()
	cfg.AdminPasswordBcrypt = string(hash)
	svc := NewService(newMemSessions(), cfg, discardLogger())

	session, err := svc.Login(context.Background(), "admin", "s3cret")
	assert.NoError(t, err)
	check.True(t, session.Role.IsAdmin())

	// The plain password no longer works once a hash is configured.
	_, err = svc.Login(context.Background(), "admin", "hunter2")
	check.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestAdminWithoutAnyPasswordRejected(t *testing.T) {
	cfg := testConfig()
	cfg.AdminPassword = ""
	svc := NewService(newMemSessions(), cfg, discardLogger())

	_, err := svc.Login(context.Background(), "admin", "")
	check.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestResolveRoundTrip(t *testing.T) {
	svc := NewService(newMemSessions(), testConfig(), discardLogger())

	session, err := svc.Login(context.Background(), "MI", "MI")
	assert.NoError(t, err)

	resolved, err := svc.Resolve(context.Background(), session.Token)
	assert.NoError(t, err)
	check.Equal(t, session, resolved)
}

func TestResolveUnknownToken(t *testing.T) {
	svc := NewService(newMemSessions(), testConfig(), discardLogger())

	_, err := svc.Resolve(context.Background(), "nope")
	check.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogoutInvalidatesToken(t *testing.T) {
	svc := NewService(newMemSessions(), testConfig(), discardLogger())

	session, err := svc.Login(context.Background(), "RCB", "RCB")
	assert.NoError(t, err)

	assert.NoError(t, svc.Logout(context.Background(), session.Token))

	_, err = svc.Resolve(context.Background(), session.Token)
	check.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestTokensAreUnique(t *testing.T) {
	svc := NewService(newMemSessions(), testConfig(), discardLogger())

	a, err := svc.Login(context.Background(), "CSK", "CSK")
	assert.NoError(t, err)
	b, err := svc.Login(context.Background(), "CSK", "CSK")
	assert.NoError(t, err)

	check.NotEqual(t, a.Token, b.Token)
}
