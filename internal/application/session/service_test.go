package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neighbourlink-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockSessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) Update(ctx context.Context, sessionID string, updates map[string]interface{}) error {
	return m.Called(ctx, sessionID, updates).Error(0)
}
func (m *mockSessionStore) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error {
	return m.Called(ctx, sessionID, newToken, newExpiry).Error(0)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(userID, role, sessionID string) (string, error) {
	args := m.Called(userID, role, sessionID)
	return args.String(0), args.Error(1)
}

// --- helpers ---

func activeUser() *domain.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	return &domain.User{
		UserID:       "u1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Enable:       true,
	}
}

func newTestService(ss *mockSessionStore, us *mockUserStore, jwt *mockJWTSigner) Service {
	return NewService(ServiceDeps{
		SessionRepo:     ss,
		UserRepo:        us,
		JWTProvider:     jwt,
		RefreshTokenDur: 30 * 24 * time.Hour,
	})
}

// --- Login tests ---

func TestLogin_Success(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(activeUser(), nil)
	ss := &mockSessionStore{}
	ss.On("Put", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)
	jwt := &mockJWTSigner{}
	jwt.On("Sign", "u1", domain.RoleUser, mock.Anything).Return("bearer", nil)

	svc := newTestService(ss, us, jwt)
	res, err := svc.Login(context.Background(), LoginRequest{Username: "alice", Password: "password123"})

	require.NoError(t, err)
	assert.Equal(t, "bearer", res.Bearer)
	assert.Len(t, res.RefreshToken, 64)
	assert.Equal(t, "u1", res.Session.UserID)
	require.NotNil(t, res.Session.User)
}

func TestLogin_FallsBackToEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(activeUser(), nil)
	ss := &mockSessionStore{}
	ss.On("Put", mock.Anything, mock.Anything).Return(nil)
	jwt := &mockJWTSigner{}
	jwt.On("Sign", mock.Anything, mock.Anything, mock.Anything).Return("bearer", nil)

	svc := newTestService(ss, us, jwt)
	_, err := svc.Login(context.Background(), LoginRequest{Username: "alice@example.com", Password: "password123"})

	require.NoError(t, err)
}

func TestLogin_WrongPassword(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(activeUser(), nil)

	svc := newTestService(&mockSessionStore{}, us, &mockJWTSigner{})
	_, err := svc.Login(context.Background(), LoginRequest{Username: "alice", Password: "nope"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_DisabledAccount(t *testing.T) {
	u := activeUser()
	u.Enable = false
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(u, nil)

	svc := newTestService(&mockSessionStore{}, us, &mockJWTSigner{})
	_, err := svc.Login(context.Background(), LoginRequest{Username: "alice", Password: "password123"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

// --- Refresh tests ---

func TestRefresh_RotatesToken(t *testing.T) {
	sess := &domain.Session{
		SessionID:        "s1",
		UserID:           "u1",
		Enable:           true,
		RefreshToken:     "old-token",
		RefreshExpiresAt: time.Now().Add(time.Hour).Unix(),
	}
	ss := &mockSessionStore{}
	ss.On("GetByRefreshToken", mock.Anything, "old-token").Return(sess, nil)
	ss.On("RotateRefreshToken", mock.Anything, "s1", mock.Anything, mock.Anything).Return(nil)
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(activeUser(), nil)
	jwt := &mockJWTSigner{}
	jwt.On("Sign", "u1", domain.RoleUser, "s1").Return("new-bearer", nil)

	svc := newTestService(ss, us, jwt)
	bearer, newToken, err := svc.Refresh(context.Background(), "old-token")

	require.NoError(t, err)
	assert.Equal(t, "new-bearer", bearer)
	assert.NotEqual(t, "old-token", newToken)
	assert.Len(t, newToken, 64)
	ss.AssertExpectations(t)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	sess := &domain.Session{
		SessionID:        "s1",
		UserID:           "u1",
		Enable:           true,
		RefreshExpiresAt: time.Now().Add(-time.Hour).Unix(),
	}
	ss := &mockSessionStore{}
	ss.On("GetByRefreshToken", mock.Anything, "stale").Return(sess, nil)

	svc := newTestService(ss, &mockUserStore{}, &mockJWTSigner{})
	_, _, err := svc.Refresh(context.Background(), "stale")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

// --- Logout / GetCurrent tests ---

func TestLogout_DisablesSession(t *testing.T) {
	ss := &mockSessionStore{}
	ss.On("Update", mock.Anything, "s1", map[string]interface{}{"enable": false}).Return(nil)

	svc := newTestService(ss, &mockUserStore{}, &mockJWTSigner{})
	err := svc.Logout(context.Background(), "s1")

	require.NoError(t, err)
	ss.AssertExpectations(t)
}

func TestGetCurrent_DisabledSession(t *testing.T) {
	ss := &mockSessionStore{}
	ss.On("Get", mock.Anything, "s1").Return(&domain.Session{SessionID: "s1", Enable: false}, nil)

	svc := newTestService(ss, &mockUserStore{}, &mockJWTSigner{})
	_, err := svc.GetCurrent(context.Background(), "s1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}
