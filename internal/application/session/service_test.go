package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/studypal-api/internal/domain"
	"github.com/studypal-api/internal/infrastructure/google"
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
func (m *mockSessionStore) GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	args := m.Called(ctx, refreshToken)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) RotateRefreshToken(ctx context.Context, sessionID, refreshToken string, refreshExpiresAt int64) error {
	return m.Called(ctx, sessionID, refreshToken, refreshExpiresAt).Error(0)
}
func (m *mockSessionStore) SoftDeleteByUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
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
func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(userID, role, sessionID string) (string, error) {
	args := m.Called(userID, role, sessionID)
	return args.String(0), args.Error(1)
}

type mockGoogleVerifier struct{ mock.Mock }

func (m *mockGoogleVerifier) Verify(ctx context.Context, idToken string) (*google.Payload, error) {
	args := m.Called(ctx, idToken)
	if p, _ := args.Get(0).(*google.Payload); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func newService(ss *mockSessionStore, us *mockUserStore, jwt *mockJWTSigner, gv *mockGoogleVerifier) Service {
	deps := ServiceDeps{
		SessionRepo:     ss,
		UserRepo:        us,
		JWTProvider:     jwt,
		RefreshTokenDur: 30 * 24 * time.Hour,
	}
	if gv != nil {
		deps.GoogleVerifier = gv
	}
	return NewService(deps)
}

func enabledUser(password string) *domain.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return &domain.User{
		UserID:       "u1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Enable:       true,
	}
}

// --- Login tests ---

func TestLogin_ByUsername(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(enabledUser("password123"), nil)
	ss := &mockSessionStore{}
	ss.On("Put", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)
	jwt := &mockJWTSigner{}
	jwt.On("Sign", "u1", domain.RoleUser, mock.Anything).Return("bearer", nil)

	svc := newService(ss, us, jwt, nil)
	sess, bearer, refreshToken, err := svc.Login(context.Background(), "alice", "password123", "agent")

	require.NoError(t, err)
	assert.Equal(t, "bearer", bearer)
	assert.NotEmpty(t, refreshToken)
	assert.Equal(t, "u1", sess.UserID)
	us.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestLogin_ByEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(enabledUser("password123"), nil)
	ss := &mockSessionStore{}
	ss.On("Put", mock.Anything, mock.Anything).Return(nil)
	jwt := &mockJWTSigner{}
	jwt.On("Sign", "u1", domain.RoleUser, mock.Anything).Return("bearer", nil)

	svc := newService(ss, us, jwt, nil)
	_, _, _, err := svc.Login(context.Background(), "alice@example.com", "password123", "agent")

	require.NoError(t, err)
	us.AssertNotCalled(t, "GetByUsername", mock.Anything, mock.Anything)
}

func TestLogin_UnknownUser(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	svc := newService(&mockSessionStore{}, us, nil, nil)
	_, _, _, err := svc.Login(context.Background(), "ghost", "whatever", "agent")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_WrongPassword(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(enabledUser("password123"), nil)

	svc := newService(&mockSessionStore{}, us, nil, nil)
	_, _, _, err := svc.Login(context.Background(), "alice", "wrong", "agent")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_DisabledAccount(t *testing.T) {
	u := enabledUser("password123")
	u.Enable = false
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "alice").Return(u, nil)

	svc := newService(&mockSessionStore{}, us, nil, nil)
	_, _, _, err := svc.Login(context.Background(), "alice", "password123", "agent")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

// --- Google sign-in tests ---

func TestLoginWithGoogle_NotConfigured(t *testing.T) {
	svc := newService(&mockSessionStore{}, &mockUserStore{}, nil, nil)
	_, _, _, err := svc.LoginWithGoogle(context.Background(), "id-token", "agent")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotConfigured))
}

func TestLoginWithGoogle_InvalidToken(t *testing.T) {
	gv := &mockGoogleVerifier{}
	gv.On("Verify", mock.Anything, "bad-token").Return(nil, errors.New("invalid"))

	svc := newService(&mockSessionStore{}, &mockUserStore{}, nil, gv)
	_, _, _, err := svc.LoginWithGoogle(context.Background(), "bad-token", "agent")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLoginWithGoogle_ExistingUser(t *testing.T) {
	gv := &mockGoogleVerifier{}
	gv.On("Verify", mock.Anything, "id-token").Return(&google.Payload{
		Sub: "g-sub", Email: "alice@example.com", EmailVerified: true,
	}, nil)
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(enabledUser(""), nil)
	ss := &mockSessionStore{}
	ss.On("Put", mock.Anything, mock.Anything).Return(nil)
	jwt := &mockJWTSigner{}
	jwt.On("Sign", "u1", domain.RoleUser, mock.Anything).Return("bearer", nil)

	svc := newService(ss, us, jwt, gv)
	sess, _, _, err := svc.LoginWithGoogle(context.Background(), "id-token", "agent")

	require.NoError(t, err)
	assert.Equal(t, "u1", sess.UserID)
	us.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestLoginWithGoogle_ProvisionsNewUser(t *testing.T) {
	gv := &mockGoogleVerifier{}
	gv.On("Verify", mock.Anything, "id-token").Return(&google.Payload{
		Sub: "g-sub", Email: "newbie@example.com", FirstName: "New", LastName: "Bie", EmailVerified: true,
	}, nil)
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "newbie@example.com").Return(nil, domain.ErrNotFound)
	us.On("GetByUsername", mock.Anything, "newbie").Return(nil, domain.ErrNotFound)
	var created *domain.User
	us.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.User) }).
		Return(nil)
	ss := &mockSessionStore{}
	ss.On("Put", mock.Anything, mock.Anything).Return(nil)
	jwt := &mockJWTSigner{}
	jwt.On("Sign", mock.Anything, domain.RoleUser, mock.Anything).Return("bearer", nil)

	svc := newService(ss, us, jwt, gv)
	_, _, _, err := svc.LoginWithGoogle(context.Background(), "id-token", "agent")

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "newbie", created.Username)
	assert.Equal(t, "google", created.AuthProvider)
	assert.Equal(t, "g-sub", created.GoogleSub)
	assert.True(t, created.EmailVerified)
}

// --- Refresh tests ---

func TestRefresh_InvalidToken(t *testing.T) {
	ss := &mockSessionStore{}
	ss.On("GetByRefreshToken", mock.Anything, "bad").Return(nil, domain.ErrNotFound)

	svc := newService(ss, &mockUserStore{}, nil, nil)
	_, _, _, err := svc.Refresh(context.Background(), "bad")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestRefresh_ExpiredToken(t *testing.T) {
	ss := &mockSessionStore{}
	ss.On("GetByRefreshToken", mock.Anything, "stale").Return(&domain.Session{
		SessionID:        "s1",
		UserID:           "u1",
		RefreshExpiresAt: time.Now().Add(-time.Hour).Unix(),
	}, nil)

	svc := newService(ss, &mockUserStore{}, nil, nil)
	_, _, _, err := svc.Refresh(context.Background(), "stale")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestRefresh_RotatesToken(t *testing.T) {
	ss := &mockSessionStore{}
	ss.On("GetByRefreshToken", mock.Anything, "live").Return(&domain.Session{
		SessionID:        "s1",
		UserID:           "u1",
		RefreshToken:     "live",
		RefreshExpiresAt: time.Now().Add(time.Hour).Unix(),
	}, nil)
	ss.On("RotateRefreshToken", mock.Anything, "s1", mock.AnythingOfType("string"), mock.AnythingOfType("int64")).Return(nil)
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(enabledUser(""), nil)
	jwt := &mockJWTSigner{}
	jwt.On("Sign", "u1", domain.RoleUser, "s1").Return("new-bearer", nil)

	svc := newService(ss, us, jwt, nil)
	sess, bearer, newToken, err := svc.Refresh(context.Background(), "live")

	require.NoError(t, err)
	assert.Equal(t, "new-bearer", bearer)
	assert.NotEmpty(t, newToken)
	assert.NotEqual(t, "live", newToken)
	assert.Equal(t, newToken, sess.RefreshToken)
	ss.AssertExpectations(t)
}

// --- Logout / GetCurrent ---

func TestLogout(t *testing.T) {
	ss := &mockSessionStore{}
	ss.On("SoftDeleteByUser", mock.Anything, "u1").Return(nil)

	svc := newService(ss, &mockUserStore{}, nil, nil)
	require.NoError(t, svc.Logout(context.Background(), "u1"))
	ss.AssertExpectations(t)
}

func TestGetCurrent_AttachesUser(t *testing.T) {
	ss := &mockSessionStore{}
	ss.On("Get", mock.Anything, "s1").Return(&domain.Session{SessionID: "s1", UserID: "u1"}, nil)
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(enabledUser(""), nil)

	svc := newService(ss, us, nil, nil)
	sess, err := svc.GetCurrent(context.Background(), "s1")

	require.NoError(t, err)
	require.NotNil(t, sess.User)
	assert.Equal(t, "alice", sess.User.Username)
}
