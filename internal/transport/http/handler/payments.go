package handler

import (
	"encoding/json"
	"net/http"

	"github.com/studypal-api/internal/application/payment"
	"github.com/studypal-api/internal/domain"
	"github.com/studypal-api/internal/pkg/validate"
	"github.com/studypal-api/internal/transport/http/middleware"
)

// PaymentHandler handles premium purchase endpoints.
type PaymentHandler struct {
	svc payment.Service
}

func NewPaymentHandler(svc payment.Service) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

type orderResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type verifyPaymentRequest struct {
	OrderID   string `json:"order_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

type entitlementResponse struct {
	EntitlementID string `json:"entitlement_id"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	order, err := h.svc.CreateOrder(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, orderResponse{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
	})
}

func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req verifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	e, err := h.svc.VerifyPayment(r.Context(), req.OrderID, req.PaymentID, req.Signature, claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entitlementResponse{
		EntitlementID: e.EntitlementID,
		Status:        e.Status,
		Message:       "payment verified, premium activated",
	})
}

func (h *PaymentHandler) ListEntitlements(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	out, err := h.svc.ListEntitlements(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	if out == nil {
		out = []domain.Entitlement{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": out})
}
