package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/studypal-api/internal/domain"
	"github.com/studypal-api/internal/infrastructure/smtp"
)

// codeLength is fixed by the client contract; anything else is malformed
// before the store is ever consulted.
const codeLength = 6

// IssueResult reports the outcome of issuing a code. Delivered is false when
// the mail could not be sent; issuance itself still succeeded (the code is
// stored and verifiable). Code is populated only on delivery failure, for
// the operational fallback path; handlers decide whether to expose it.
type IssueResult struct {
	Delivered bool
	Code      string
	ExpiresAt int64
}

type Service interface {
	RequestCode(ctx context.Context, email string) (*IssueResult, error)
	VerifyCode(ctx context.Context, email, code string) error
}

// otpStore is the narrow record-store contract the service relies on.
// DeleteMatching must be atomic: of any set of concurrent calls for the same
// email and code, at most one may succeed.
type otpStore interface {
	Put(ctx context.Context, rec *domain.OtpRecord) error
	Get(ctx context.Context, email string) (*domain.OtpRecord, error)
	DeleteMatching(ctx context.Context, email, code string) error
}

type service struct {
	repo   otpStore
	mailer smtp.Mailer
	ttl    time.Duration
}

type ServiceDeps struct {
	OtpRepo otpStore
	Mailer  smtp.Mailer
	TTL     time.Duration
}

func NewService(deps ServiceDeps) Service {
	ttl := deps.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &service{repo: deps.OtpRepo, mailer: deps.Mailer, ttl: ttl}
}

// RequestCode issues a fresh 6-digit code for email, replacing any live one,
// and dispatches it by mail. Mail failure does not fail the operation.
func (s *service) RequestCode(ctx context.Context, email string) (*IssueResult, error) {
	if email == "" {
		return nil, fmt.Errorf("email required: %w", domain.ErrBadRequest)
	}

	code, err := generateCode()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	rec := &domain.OtpRecord{
		Email:     email,
		Code:      code,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}
	// Put is keyed by email, so this also invalidates any previous code.
	if err := s.repo.Put(ctx, rec); err != nil {
		return nil, storeErr("store otp record", err)
	}

	result := &IssueResult{Delivered: true, ExpiresAt: rec.ExpiresAt}
	subject := "Your StudyPal verification code"
	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(s.ttl.Minutes()))
	if err := s.mailer.SendEmail(email, subject, body); err != nil {
		slog.Warn("otp mail dispatch failed", "email", email, "err", err)
		result.Delivered = false
		result.Code = code
	}
	return result, nil
}

// VerifyCode checks a submitted code against the live record for email and
// consumes the record on success. The three failure modes are reported
// distinctly so the caller knows whether to request a new code or retype.
func (s *service) VerifyCode(ctx context.Context, email, code string) error {
	if !wellFormed(code) {
		return fmt.Errorf("code must be %d digits: %w", codeLength, domain.ErrMalformedCode)
	}

	rec, err := s.repo.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no code issued for %s: %w", email, domain.ErrNoCodeRequested)
		}
		return storeErr("load otp record", err)
	}

	// Liveness is decided here, not by the store's TTL reaper: an expired
	// record never verifies even if it hasn't been physically removed yet.
	if time.Now().Unix() > rec.ExpiresAt {
		if err := s.repo.DeleteMatching(ctx, email, rec.Code); err != nil && !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("failed to purge expired otp record", "email", email, "err", err)
		}
		return fmt.Errorf("code expired: %w", domain.ErrCodeExpired)
	}

	if rec.Code != code {
		return fmt.Errorf("wrong code: %w", domain.ErrCodeMismatch)
	}

	// Single-use: the conditional delete is the consume. If a concurrent
	// verify got there first the record is gone and this attempt loses.
	if err := s.repo.DeleteMatching(ctx, email, code); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("code already consumed: %w", domain.ErrNoCodeRequested)
		}
		return storeErr("consume otp record", err)
	}
	return nil
}

func wellFormed(code string) bool {
	if len(code) != codeLength {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// generateCode draws uniformly over the 900,000-value space [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// storeErr normalizes record-store failures so drivers never leak upward.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, domain.ErrStorageUnavailable)
}
