package domain

import "time"

const EntitlementStatusActive = "active"

// Entitlement grants a user premium access. Created only after the payment
// processor's signature has been independently recomputed and matched.
type Entitlement struct {
	EntitlementID string    `json:"id" dynamodbav:"entitlement_id"`
	UserID        string    `json:"user_id" dynamodbav:"user_id"`
	PaymentID     string    `json:"payment_id" dynamodbav:"payment_id"`
	OrderID       string    `json:"order_id" dynamodbav:"order_id"`
	Status        string    `json:"status" dynamodbav:"status"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
}
