package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/studypal-api/internal/domain"
)

const fieldIsPremium = "is_premium"

// userFlagger is the slice of the user repository Grant needs so the
// premium flag lands on the profile the rest of the app reads.
type userFlagger interface {
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

// Store is the volatile in-process record store for the verification and
// payment protocols. It satisfies the same narrow interfaces as the DynamoDB
// repos, so the services never learn which backend they run against. One
// mutex guards all maps: DeleteMatching and Grant are each a single critical
// section, which is the whole concurrency contract.
//
// Single process only. Used for local development without AWS and in tests.
type Store struct {
	mu           sync.Mutex
	users        userFlagger
	otps         map[string]domain.OtpRecord
	entitlements map[string]domain.Entitlement
	premium      map[string]bool
}

func NewStore() *Store {
	return &Store{
		otps:         make(map[string]domain.OtpRecord),
		entitlements: make(map[string]domain.Entitlement),
		premium:      make(map[string]bool),
	}
}

// SetUserStore wires the user repository that Grant flags premium through.
// Must be called before the store serves traffic.
func (s *Store) SetUserStore(users userFlagger) {
	s.users = users
}

// Put stores the record, replacing any previous code for the same email.
func (s *Store) Put(_ context.Context, rec *domain.OtpRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.otps[rec.Email] = *rec
	return nil
}

func (s *Store) Get(_ context.Context, email string) (*domain.OtpRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.otps[email]
	if !ok {
		return nil, fmt.Errorf("otp record not found: %w", domain.ErrNotFound)
	}
	out := rec
	return &out, nil
}

// DeleteMatching removes the record for email only if its stored code equals
// code. Exactly one of any set of concurrent callers with the right code
// succeeds; the rest get ErrNotFound.
func (s *Store) DeleteMatching(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.otps[email]
	if !ok || rec.Code != code {
		return fmt.Errorf("otp record not found: %w", domain.ErrNotFound)
	}
	delete(s.otps, email)
	return nil
}

// Grant records the entitlement and marks the user premium under one lock,
// mirroring the transactional write of the durable store. When a user store
// is wired, the flag goes through it so profile reads see it; the grant is
// not recorded if that write fails.
func (s *Store) Grant(ctx context.Context, e *domain.Entitlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users != nil {
		if err := s.users.Update(ctx, e.UserID, map[string]interface{}{fieldIsPremium: true}); err != nil {
			return err
		}
	}
	s.entitlements[e.EntitlementID] = *e
	s.premium[e.UserID] = true
	return nil
}

func (s *Store) ListByUser(_ context.Context, userID string) ([]domain.Entitlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Entitlement
	for _, e := range s.entitlements {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

// IsPremium reports whether a premium grant has been recorded for userID.
func (s *Store) IsPremium(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.premium[userID]
}
