package user

import (
	"context"
	"errors"
	"testing"

	"github.com/neighbourlink-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

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
func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error) {
	args := m.Called(ctx, limit, cursor)
	return args.Get(0).([]domain.User), args.String(1), args.Error(2)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}
func (m *mockUserStore) SoftDelete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockSessionStore) SoftDeleteByUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(userID, role, sessionID string) (string, error) {
	args := m.Called(userID, role, sessionID)
	return args.String(0), args.Error(1)
}

type mockRegistrar struct{ mock.Mock }

func (m *mockRegistrar) RegisterDevice(ctx context.Context, fcmToken string) (string, error) {
	args := m.Called(ctx, fcmToken)
	return args.String(0), args.Error(1)
}

// --- helpers ---

func newService(us *mockUserStore, ss *mockSessionStore, jwt *mockJWTSigner, reg *mockRegistrar) Service {
	deps := ServiceDeps{
		UserRepo:        us,
		DefaultRadiusKm: 3,
		MaxRadiusKm:     50,
	}
	if ss != nil {
		deps.SessionRepo = ss
	}
	if jwt != nil {
		deps.JWTProvider = jwt
	}
	if reg != nil {
		deps.Push = reg
	}
	return NewService(deps)
}

func baseReq() domain.CreateUserRequest {
	return domain.CreateUserRequest{
		Username:  "alice",
		Password:  "password123",
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Smith",
	}
}

// --- Register tests ---

func TestRegister_Success(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	svc := newService(us, nil, nil, nil)
	u, err := svc.Register(context.Background(), baseReq())

	require.NoError(t, err)
	assert.NotEmpty(t, u.UserID)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.Equal(t, 3.0, u.PreferredRadiusKm)
	assert.True(t, u.NotifyEmergency)
	assert.True(t, u.NotifyResponses)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")))
	us.AssertExpectations(t)
}

func TestRegister_UsernameConflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(&domain.User{}, nil)

	svc := newService(us, nil, nil, nil)
	_, err := svc.Register(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestRegister_EmailConflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{}, nil)

	svc := newService(us, nil, nil, nil)
	_, err := svc.Register(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestRegisterWithSession_IssuesTokens(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.Anything).Return(nil)
	ss := &mockSessionStore{}
	ss.On("Put", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)
	jwt := &mockJWTSigner{}
	jwt.On("Sign", mock.Anything, domain.RoleUser, mock.Anything).Return("bearer-token", nil)

	svc := newService(us, ss, jwt, nil)
	sess, bearer, refresh, err := svc.RegisterWithSession(context.Background(), baseReq())

	require.NoError(t, err)
	assert.Equal(t, "bearer-token", bearer)
	assert.Len(t, refresh, 64)
	assert.True(t, sess.Enable)
	require.NotNil(t, sess.User)
	assert.Equal(t, "alice", sess.User.Username)
}

// --- Update tests ---

func TestUpdate_LocationAndPreferences(t *testing.T) {
	us := &mockUserStore{}
	coords := domain.RawCoordinates{Lat: "12.9716", Lng: "77.5946"}
	radius := 5.0
	notify := false
	expected := map[string]interface{}{
		fieldCoordinates:     coords,
		fieldPreferredRadius: 5.0,
		fieldNotifyEmergency: false,
	}
	us.On("Update", mock.Anything, "u1", expected).Return(nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	svc := newService(us, nil, nil, nil)
	_, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{
		Coordinates:       &coords,
		PreferredRadiusKm: &radius,
		NotifyEmergency:   &notify,
	})

	require.NoError(t, err)
	us.AssertExpectations(t)
}

func TestUpdate_RejectsBadCoordinates(t *testing.T) {
	us := &mockUserStore{}
	svc := newService(us, nil, nil, nil)

	_, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{
		Coordinates: &domain.RawCoordinates{Lat: "91.5", Lng: "0"},
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_ClampsPreferredRadius(t *testing.T) {
	us := &mockUserStore{}
	us.On("Update", mock.Anything, "u1", map[string]interface{}{fieldPreferredRadius: 50.0}).Return(nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	svc := newService(us, nil, nil, nil)
	radius := 300.0
	_, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{PreferredRadiusKm: &radius})

	require.NoError(t, err)
	us.AssertExpectations(t)
}

func TestUpdate_NoFieldsIsRead(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	svc := newService(us, nil, nil, nil)
	u, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{})

	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

// --- Push token tests ---

func TestUpdatePushToken_RegistersDevice(t *testing.T) {
	us := &mockUserStore{}
	us.On("Update", mock.Anything, "u1", map[string]interface{}{
		fieldFCMToken:     "fcm-abc",
		fieldPushEndpoint: "arn:endpoint",
	}).Return(nil)
	reg := &mockRegistrar{}
	reg.On("RegisterDevice", mock.Anything, "fcm-abc").Return("arn:endpoint", nil)

	svc := newService(us, nil, nil, reg)
	err := svc.UpdatePushToken(context.Background(), "u1", "fcm-abc")

	require.NoError(t, err)
	us.AssertExpectations(t)
	reg.AssertExpectations(t)
}

func TestUpdatePushToken_EmptyTokenUnregisters(t *testing.T) {
	us := &mockUserStore{}
	us.On("Update", mock.Anything, "u1", map[string]interface{}{
		fieldFCMToken:     "",
		fieldPushEndpoint: "",
	}).Return(nil)
	reg := &mockRegistrar{}

	svc := newService(us, nil, nil, reg)
	err := svc.UpdatePushToken(context.Background(), "u1", "")

	require.NoError(t, err)
	reg.AssertNotCalled(t, "RegisterDevice", mock.Anything, mock.Anything)
}

// --- Delete / ChangePassword tests ---

func TestDelete_DisablesSessionsToo(t *testing.T) {
	us := &mockUserStore{}
	us.On("SoftDelete", mock.Anything, "u1").Return(nil)
	ss := &mockSessionStore{}
	ss.On("SoftDeleteByUser", mock.Anything, "u1").Return(nil)

	svc := newService(us, ss, nil, nil)
	err := svc.Delete(context.Background(), "u1")

	require.NoError(t, err)
	us.AssertExpectations(t)
	ss.AssertExpectations(t)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", PasswordHash: string(hash)}, nil)

	svc := newService(us, nil, nil, nil)
	err := svc.ChangePassword(context.Background(), "u1", "wrong-password", "new-password")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}
