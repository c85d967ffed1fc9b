package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/studypal-api/internal/domain"
	"github.com/studypal-api/internal/infrastructure/google"
	"github.com/studypal-api/internal/pkg/id"
	pkgtoken "github.com/studypal-api/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Login(ctx context.Context, identifier, password, userAgent string) (*domain.Session, string, string, error)
	LoginWithGoogle(ctx context.Context, idToken, userAgent string) (*domain.Session, string, string, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.Session, string, string, error)
	Logout(ctx context.Context, userID string) error
	GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error)
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, refreshToken string, refreshExpiresAt int64) error
	SoftDeleteByUser(ctx context.Context, userID string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
}

type jwtSigner interface {
	Sign(userID, role, sessionID string) (string, error)
}

type googleVerifier interface {
	Verify(ctx context.Context, idToken string) (*google.Payload, error)
}

type service struct {
	sessionRepo     sessionStore
	userRepo        userStore
	jwtProvider     jwtSigner
	google          googleVerifier
	refreshTokenDur time.Duration
}

type ServiceDeps struct {
	SessionRepo     sessionStore
	UserRepo        userStore
	JWTProvider     jwtSigner
	GoogleVerifier  googleVerifier
	RefreshTokenDur time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		sessionRepo:     deps.SessionRepo,
		userRepo:        deps.UserRepo,
		jwtProvider:     deps.JWTProvider,
		google:          deps.GoogleVerifier,
		refreshTokenDur: deps.RefreshTokenDur,
	}
}

// Login accepts either a username or an email as the identifier.
func (s *service) Login(ctx context.Context, identifier, password, userAgent string) (*domain.Session, string, string, error) {
	var u *domain.User
	var err error
	if strings.Contains(identifier, "@") {
		u, err = s.userRepo.GetByEmail(ctx, identifier)
	} else {
		u, err = s.userRepo.GetByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, "", "", fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if !u.Enable {
		return nil, "", "", fmt.Errorf("account disabled: %w", domain.ErrForbidden)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	return s.openSession(ctx, u, userAgent)
}

func (s *service) LoginWithGoogle(ctx context.Context, idToken, userAgent string) (*domain.Session, string, string, error) {
	if s.google == nil {
		return nil, "", "", fmt.Errorf("google sign-in not configured: %w", domain.ErrNotConfigured)
	}
	payload, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, "", "", fmt.Errorf("invalid google token: %w", domain.ErrUnauthorized)
	}
	u, err := s.userRepo.GetByEmail(ctx, payload.Email)
	if err != nil {
		u, err = s.provisionGoogleUser(ctx, payload)
		if err != nil {
			return nil, "", "", err
		}
	}
	if !u.Enable {
		return nil, "", "", fmt.Errorf("account disabled: %w", domain.ErrForbidden)
	}
	return s.openSession(ctx, u, userAgent)
}

func (s *service) provisionGoogleUser(ctx context.Context, payload *google.Payload) (*domain.User, error) {
	now := time.Now().UTC()
	u := &domain.User{
		UserID:        id.New(),
		Username:      usernameFromEmail(payload.Email),
		Email:         payload.Email,
		FirstName:     payload.FirstName,
		LastName:      payload.LastName,
		Role:          domain.RoleUser,
		AuthProvider:  "google",
		GoogleSub:     payload.Sub,
		EmailVerified: payload.EmailVerified,
		Enable:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := s.userRepo.GetByUsername(ctx, u.Username); err == nil {
		u.Username = u.Username + "-" + strings.ToLower(id.New()[20:])
	}
	if err := s.userRepo.Put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func usernameFromEmail(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}

func (s *service) openSession(ctx context.Context, u *domain.User, userAgent string) (*domain.Session, string, string, error) {
	refreshToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, "", "", err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID:        id.New(),
		UserID:           u.UserID,
		UserAgent:        userAgent,
		Enable:           true,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(s.refreshTokenDur).Unix(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		return nil, "", "", err
	}
	bearer, err := s.jwtProvider.Sign(u.UserID, u.Role, sess.SessionID)
	if err != nil {
		return nil, "", "", err
	}
	sess.User = u
	return sess, bearer, refreshToken, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*domain.Session, string, string, error) {
	sess, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, "", "", fmt.Errorf("invalid refresh token: %w", domain.ErrUnauthorized)
	}
	if time.Now().Unix() > sess.RefreshExpiresAt {
		return nil, "", "", fmt.Errorf("refresh token expired: %w", domain.ErrUnauthorized)
	}
	u, err := s.userRepo.Get(ctx, sess.UserID)
	if err != nil {
		return nil, "", "", fmt.Errorf("user not found: %w", domain.ErrUnauthorized)
	}
	if !u.Enable {
		return nil, "", "", fmt.Errorf("account disabled: %w", domain.ErrForbidden)
	}
	newToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, "", "", err
	}
	expiresAt := time.Now().UTC().Add(s.refreshTokenDur).Unix()
	if err := s.sessionRepo.RotateRefreshToken(ctx, sess.SessionID, newToken, expiresAt); err != nil {
		return nil, "", "", err
	}
	sess.RefreshToken = newToken
	sess.RefreshExpiresAt = expiresAt
	bearer, err := s.jwtProvider.Sign(u.UserID, u.Role, sess.SessionID)
	if err != nil {
		return nil, "", "", err
	}
	sess.User = u
	return sess, bearer, newToken, nil
}

func (s *service) Logout(ctx context.Context, userID string) error {
	return s.sessionRepo.SoftDeleteByUser(ctx, userID)
}

func (s *service) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	u, err := s.userRepo.Get(ctx, sess.UserID)
	if err == nil {
		sess.User = u
	}
	return sess, nil
}
