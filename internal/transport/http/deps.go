package http

import (
	"context"
	"io"
	"time"

	"github.com/studypal-api/internal/domain"
	"github.com/studypal-api/internal/infrastructure/checkout"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, userID string) error
	// ScanPage returns a page of users with a base64 cursor for the next page.
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
}

// SessionRepository is the minimal interface the router requires from a session store.
type SessionRepository interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error
	SoftDeleteByUser(ctx context.Context, userID string) error
}

// OtpStore is the minimal interface the router requires from a passcode store.
// DeleteMatching must delete the record only when the stored code matches, and
// at most one of any set of concurrent matching calls may succeed.
type OtpStore interface {
	Put(ctx context.Context, rec *domain.OtpRecord) error
	Get(ctx context.Context, email string) (*domain.OtpRecord, error)
	DeleteMatching(ctx context.Context, email, code string) error
}

// EntitlementStore is the minimal interface the router requires from an
// entitlement store. Grant must write the entitlement and the user's premium
// flag atomically.
type EntitlementStore interface {
	Grant(ctx context.Context, e *domain.Entitlement) error
	ListByUser(ctx context.Context, userID string) ([]domain.Entitlement, error)
}

// StudyRepository is the minimal interface the router requires from a study history store.
type StudyRepository interface {
	Put(ctx context.Context, rec *domain.StudyRecord) error
	Get(ctx context.Context, recordID string) (*domain.StudyRecord, error)
	ListByUser(ctx context.Context, userID string, limit int32) ([]domain.StudyRecord, error)
	Delete(ctx context.Context, recordID string) error
}

// DocumentRepository is the minimal interface the router requires from a document store.
type DocumentRepository interface {
	Put(ctx context.Context, d *domain.Document) error
	Get(ctx context.Context, documentID string) (*domain.Document, error)
	ListByOwner(ctx context.Context, userID string) ([]domain.Document, error)
	SoftDelete(ctx context.Context, documentID string) error
}

// ObjectStore is the minimal interface the router requires from an object storage backend.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// OrderCreator is the minimal interface the router requires from the payment processor client.
type OrderCreator interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*checkout.Order, error)
}
