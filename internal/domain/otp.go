package domain

// OtpRecord is a one-time passcode proving control of a mailbox.
// Keyed by email so issuing works before an account exists.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL; a record past it must
// never verify, whether or not it has been physically removed.
type OtpRecord struct {
	Email     string `json:"email" dynamodbav:"email"`
	Code      string `json:"code" dynamodbav:"code"`
	IssuedAt  int64  `json:"issued_at" dynamodbav:"issued_at"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}
