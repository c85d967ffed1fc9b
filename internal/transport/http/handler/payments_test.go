package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/studypal-api/internal/application/payment"
	"github.com/studypal-api/internal/domain"
	"github.com/studypal-api/internal/infrastructure/checkout"
	jwtinfra "github.com/studypal-api/internal/infrastructure/jwt"
	"github.com/studypal-api/internal/transport/http/middleware"
)

type mockPaymentService struct{ mock.Mock }

func (m *mockPaymentService) CreateOrder(ctx context.Context, userID string) (*checkout.Order, error) {
	args := m.Called(ctx, userID)
	if o, _ := args.Get(0).(*checkout.Order); o != nil {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPaymentService) VerifyPayment(ctx context.Context, orderID, paymentID, signature, userID string) (*domain.Entitlement, error) {
	args := m.Called(ctx, orderID, paymentID, signature, userID)
	if e, _ := args.Get(0).(*domain.Entitlement); e != nil {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPaymentService) ListEntitlements(ctx context.Context, userID string) ([]domain.Entitlement, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]domain.Entitlement)
	return list, args.Error(1)
}

var _ payment.Service = (*mockPaymentService)(nil)

func authedPost(t *testing.T, h http.HandlerFunc, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.ClaimsKey, &jwtinfra.Claims{UserID: userID})
	rr := httptest.NewRecorder()
	h(rr, req.WithContext(ctx))
	return rr
}

func TestPaymentVerify_NoClaims(t *testing.T) {
	h := NewPaymentHandler(&mockPaymentService{})
	rr := postJSON(t, h.Verify, `{"order_id":"o1","payment_id":"p1","signature":"s"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestPaymentVerify_MissingFields(t *testing.T) {
	h := NewPaymentHandler(&mockPaymentService{})
	rr := authedPost(t, h.Verify, "u1", `{"order_id":"o1"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPaymentVerify_SignatureMismatch(t *testing.T) {
	svc := &mockPaymentService{}
	svc.On("VerifyPayment", mock.Anything, "o1", "p1", "bad", "u1").
		Return(nil, fmt.Errorf("verify: %w", domain.ErrSignatureMismatch))

	h := NewPaymentHandler(svc)
	rr := authedPost(t, h.Verify, "u1", `{"order_id":"o1","payment_id":"p1","signature":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestPaymentVerify_NotConfigured(t *testing.T) {
	svc := &mockPaymentService{}
	svc.On("VerifyPayment", mock.Anything, "o1", "p1", "s", "u1").
		Return(nil, fmt.Errorf("verify: %w", domain.ErrNotConfigured))

	h := NewPaymentHandler(svc)
	rr := authedPost(t, h.Verify, "u1", `{"order_id":"o1","payment_id":"p1","signature":"s"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestPaymentVerify_HappyPath(t *testing.T) {
	svc := &mockPaymentService{}
	svc.On("VerifyPayment", mock.Anything, "o1", "p1", "good", "u1").
		Return(&domain.Entitlement{EntitlementID: "e1", Status: domain.EntitlementStatusActive}, nil)

	h := NewPaymentHandler(svc)
	rr := authedPost(t, h.Verify, "u1", `{"order_id":"o1","payment_id":"p1","signature":"good"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "e1")
	svc.AssertExpectations(t)
}

func TestPaymentCreateOrder_HappyPath(t *testing.T) {
	svc := &mockPaymentService{}
	svc.On("CreateOrder", mock.Anything, "u1").
		Return(&checkout.Order{ID: "order_1", Amount: 49900, Currency: "INR"}, nil)

	h := NewPaymentHandler(svc)
	rr := authedPost(t, h.CreateOrder, "u1", "")

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), "order_1")
}
