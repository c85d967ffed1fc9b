package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/studypal-api/internal/application/otp"
	"github.com/studypal-api/internal/domain"
)

type mockOtpService struct{ mock.Mock }

func (m *mockOtpService) RequestCode(ctx context.Context, email string) (*otp.IssueResult, error) {
	args := m.Called(ctx, email)
	if r, _ := args.Get(0).(*otp.IssueResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockOtpService) VerifyCode(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestOtpRequest_InvalidBody(t *testing.T) {
	h := NewOtpHandler(&mockOtpService{}, false)
	rr := postJSON(t, h.Request, "not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestOtpRequest_MissingEmail(t *testing.T) {
	h := NewOtpHandler(&mockOtpService{}, false)
	rr := postJSON(t, h.Request, `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestOtpRequest_Delivered(t *testing.T) {
	svc := &mockOtpService{}
	svc.On("RequestCode", mock.Anything, "a@b.com").
		Return(&otp.IssueResult{Delivered: true, ExpiresAt: 1234}, nil)

	h := NewOtpHandler(svc, false)
	rr := postJSON(t, h.Request, `{"email":"a@b.com"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp requestCodeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Delivered)
	assert.Empty(t, resp.Code)
	assert.Equal(t, int64(1234), resp.ExpiresAt)
}

func TestOtpRequest_FallbackDisabled_HidesCode(t *testing.T) {
	svc := &mockOtpService{}
	svc.On("RequestCode", mock.Anything, "a@b.com").
		Return(&otp.IssueResult{Delivered: false, Code: "123456"}, nil)

	h := NewOtpHandler(svc, false)
	rr := postJSON(t, h.Request, `{"email":"a@b.com"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp requestCodeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Delivered)
	assert.Empty(t, resp.Code)
}

func TestOtpRequest_FallbackEnabled_ReturnsCode(t *testing.T) {
	svc := &mockOtpService{}
	svc.On("RequestCode", mock.Anything, "a@b.com").
		Return(&otp.IssueResult{Delivered: false, Code: "123456"}, nil)

	h := NewOtpHandler(svc, true)
	rr := postJSON(t, h.Request, `{"email":"a@b.com"}`)

	var resp requestCodeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "123456", resp.Code)
}

func TestOtpRequest_StorageUnavailable(t *testing.T) {
	svc := &mockOtpService{}
	svc.On("RequestCode", mock.Anything, "a@b.com").
		Return(nil, fmt.Errorf("store otp record: %w", domain.ErrStorageUnavailable))

	h := NewOtpHandler(svc, false)
	rr := postJSON(t, h.Request, `{"email":"a@b.com"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestOtpVerify_StatusPerFailureMode(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"malformed", domain.ErrMalformedCode, http.StatusUnprocessableEntity},
		{"no code requested", domain.ErrNoCodeRequested, http.StatusNotFound},
		{"expired", domain.ErrCodeExpired, http.StatusGone},
		{"mismatch", domain.ErrCodeMismatch, http.StatusUnauthorized},
		{"storage unavailable", domain.ErrStorageUnavailable, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockOtpService{}
			svc.On("VerifyCode", mock.Anything, "a@b.com", "123456").
				Return(fmt.Errorf("verify: %w", tc.err))

			h := NewOtpHandler(svc, false)
			rr := postJSON(t, h.Verify, `{"email":"a@b.com","code":"123456"}`)
			assert.Equal(t, tc.status, rr.Code)
		})
	}
}

func TestOtpVerify_HappyPath(t *testing.T) {
	svc := &mockOtpService{}
	svc.On("VerifyCode", mock.Anything, "a@b.com", "123456").Return(nil)

	h := NewOtpHandler(svc, false)
	rr := postJSON(t, h.Verify, `{"email":"a@b.com","code":"123456"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}
