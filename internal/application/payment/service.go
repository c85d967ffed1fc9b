package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/studypal-api/internal/domain"
	"github.com/studypal-api/internal/infrastructure/checkout"
	"github.com/studypal-api/internal/infrastructure/sns"
	"github.com/studypal-api/internal/pkg/id"
)

type Service interface {
	CreateOrder(ctx context.Context, userID string) (*checkout.Order, error)
	VerifyPayment(ctx context.Context, orderID, paymentID, signature, userID string) (*domain.Entitlement, error)
	ListEntitlements(ctx context.Context, userID string) ([]domain.Entitlement, error)
}

// entitlementStore persists and reads premium grants. Grant must apply the
// entitlement write and the user premium flag atomically.
type entitlementStore interface {
	Grant(ctx context.Context, e *domain.Entitlement) error
	ListByUser(ctx context.Context, userID string) ([]domain.Entitlement, error)
}

// orderCreator registers an order with the payment processor.
type orderCreator interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*checkout.Order, error)
}

type service struct {
	entitlements entitlementStore
	orders       orderCreator
	events       sns.EventPublisher
	secret       string
	price        int64
	currency     string
}

type ServiceDeps struct {
	EntitlementRepo entitlementStore
	Orders          orderCreator
	Events          sns.EventPublisher // optional
	Secret          string
	Price           int64
	Currency        string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		entitlements: deps.EntitlementRepo,
		orders:       deps.Orders,
		events:       deps.Events,
		secret:       deps.Secret,
		price:        deps.Price,
		currency:     deps.Currency,
	}
}

// CreateOrder opens a processor order for the premium plan.
func (s *service) CreateOrder(ctx context.Context, userID string) (*checkout.Order, error) {
	if s.secret == "" {
		return nil, fmt.Errorf("payment secret missing: %w", domain.ErrNotConfigured)
	}
	receipt := "premium_" + id.New()
	order, err := s.orders.CreateOrder(ctx, s.price, s.currency, receipt)
	if err != nil {
		return nil, err
	}
	slog.Info("payment order created", "order_id", order.ID, "user_id", userID)
	return order, nil
}

// VerifyPayment recomputes the processor's signature over orderID|paymentID
// and, on an exact match, grants the premium entitlement. A mismatch writes
// nothing.
func (s *service) VerifyPayment(ctx context.Context, orderID, paymentID, signature, userID string) (*domain.Entitlement, error) {
	if s.secret == "" {
		// An empty secret must never "verify" anything.
		return nil, fmt.Errorf("payment secret missing: %w", domain.ErrNotConfigured)
	}
	if orderID == "" || paymentID == "" || signature == "" {
		return nil, fmt.Errorf("order_id, payment_id and signature required: %w", domain.ErrBadRequest)
	}

	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	// Constant-time compare of the hex strings; exact match only.
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return nil, fmt.Errorf("payment attestation rejected: %w", domain.ErrSignatureMismatch)
	}

	e := &domain.Entitlement{
		EntitlementID: id.New(),
		UserID:        userID,
		PaymentID:     paymentID,
		OrderID:       orderID,
		Status:        domain.EntitlementStatusActive,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.entitlements.Grant(ctx, e); err != nil {
		return nil, fmt.Errorf("grant entitlement: %v: %w", err, domain.ErrStorageUnavailable)
	}

	if s.events != nil {
		if err := s.events.PublishEntitlementGranted(ctx, e); err != nil {
			slog.Warn("failed to publish entitlement event", "entitlement_id", e.EntitlementID, "err", err)
		}
	}
	return e, nil
}

func (s *service) ListEntitlements(ctx context.Context, userID string) ([]domain.Entitlement, error) {
	out, err := s.entitlements.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list entitlements: %v: %w", err, domain.ErrStorageUnavailable)
	}
	return out, nil
}
