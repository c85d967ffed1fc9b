package id

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// New returns a fresh ULID. Record ids across all tables (users, sessions,
// entitlements, study records, documents) come from here so listings sort
// by creation time without a separate timestamp key.
func New() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
