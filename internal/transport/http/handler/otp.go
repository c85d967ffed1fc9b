package handler

import (
	"encoding/json"
	"net/http"

	"github.com/studypal-api/internal/application/otp"
	"github.com/studypal-api/internal/pkg/validate"
)

// OtpHandler handles one-time passcode endpoints.
type OtpHandler struct {
	svc otp.Service
	// fallbackInResponse allows the issued code to be echoed back when mail
	// delivery fails. Off in production.
	fallbackInResponse bool
}

func NewOtpHandler(svc otp.Service, fallbackInResponse bool) *OtpHandler {
	return &OtpHandler{svc: svc, fallbackInResponse: fallbackInResponse}
}

type requestCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type requestCodeResponse struct {
	Message   string `json:"message"`
	Delivered bool   `json:"delivered"`
	ExpiresAt int64  `json:"expires_at"`
	Code      string `json:"code,omitempty"`
}

type verifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

func (h *OtpHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req requestCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.svc.RequestCode(r.Context(), req.Email)
	if err != nil {
		httpError(w, err)
		return
	}
	resp := requestCodeResponse{
		Message:   "verification code sent",
		Delivered: result.Delivered,
		ExpiresAt: result.ExpiresAt,
	}
	if !result.Delivered {
		resp.Message = "verification code issued but could not be delivered"
		if h.fallbackInResponse {
			resp.Code = result.Code
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OtpHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.VerifyCode(r.Context(), req.Email, req.Code); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "code verified"})
}
