package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studypal-api/internal/domain"
)

func rec(email, code string) *domain.OtpRecord {
	now := time.Now()
	return &domain.OtpRecord{
		Email:     email,
		Code:      code,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(10 * time.Minute).Unix(),
	}
}

func TestPut_ReplacesPreviousCode(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, rec("a@b.com", "111111")))
	require.NoError(t, s.Put(ctx, rec("a@b.com", "222222")))

	got, err := s.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", got.Code)

	// The replaced code no longer consumes anything.
	err = s.DeleteMatching(ctx, "a@b.com", "111111")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestGet_Missing(t *testing.T) {
	s := NewStore()
	_, err := s.Get(context.Background(), "nobody@b.com")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDeleteMatching_WrongCode(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, rec("a@b.com", "123456")))

	err := s.DeleteMatching(ctx, "a@b.com", "654321")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	// Record survives a failed conditional delete.
	_, err = s.Get(ctx, "a@b.com")
	require.NoError(t, err)
}

func TestDeleteMatching_Consumes(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, rec("a@b.com", "123456")))

	require.NoError(t, s.DeleteMatching(ctx, "a@b.com", "123456"))

	_, err := s.Get(ctx, "a@b.com")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDeleteMatching_ExactlyOneConcurrentWinner(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, rec("a@b.com", "123456")))

	const n = 64
	var wg sync.WaitGroup
	results := make(chan error, n)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results <- s.DeleteMatching(ctx, "a@b.com", "123456")
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.True(t, errors.Is(err, domain.ErrNotFound))
		}
	}
	assert.Equal(t, 1, wins)
}

type fakeUserStore struct {
	mu      sync.Mutex
	err     error
	updates map[string]map[string]interface{}
}

func (f *fakeUserStore) Update(_ context.Context, userID string, fields map[string]interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updates == nil {
		f.updates = make(map[string]map[string]interface{})
	}
	f.updates[userID] = fields
	return nil
}

func TestGrant_FlagsPremiumOnUserStore(t *testing.T) {
	s := NewStore()
	users := &fakeUserStore{}
	s.SetUserStore(users)

	e := &domain.Entitlement{
		EntitlementID: "e1",
		UserID:        "u1",
		OrderID:       "o1",
		PaymentID:     "p1",
		Status:        domain.EntitlementStatusActive,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, s.Grant(context.Background(), e))

	fields, ok := users.updates["u1"]
	require.True(t, ok, "user store never saw the premium update")
	assert.Equal(t, true, fields["is_premium"])
	assert.True(t, s.IsPremium("u1"))
}

func TestGrant_UserStoreFailureRecordsNothing(t *testing.T) {
	s := NewStore()
	s.SetUserStore(&fakeUserStore{err: errors.New("users table down")})

	e := &domain.Entitlement{
		EntitlementID: "e1",
		UserID:        "u1",
		OrderID:       "o1",
		PaymentID:     "p1",
		Status:        domain.EntitlementStatusActive,
		CreatedAt:     time.Now().UTC(),
	}
	require.Error(t, s.Grant(context.Background(), e))

	assert.False(t, s.IsPremium("u1"))
	list, err := s.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGrant_MarksPremiumAtomically(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	assert.False(t, s.IsPremium("u1"))
	e := &domain.Entitlement{
		EntitlementID: "e1",
		UserID:        "u1",
		OrderID:       "o1",
		PaymentID:     "p1",
		Status:        domain.EntitlementStatusActive,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, s.Grant(ctx, e))
	assert.True(t, s.IsPremium("u1"))

	list, err := s.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "e1", list[0].EntitlementID)

	other, err := s.ListByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)
}
