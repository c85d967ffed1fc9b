package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	UserID        string     `json:"id" dynamodbav:"user_id"`
	Username      string     `json:"username" dynamodbav:"username"`
	Email         string     `json:"email" dynamodbav:"email"`
	PasswordHash  string     `json:"-" dynamodbav:"password_hash"`
	Role          string     `json:"role" dynamodbav:"role"`
	FirstName     string     `json:"first_name" dynamodbav:"first_name"`
	LastName      string     `json:"last_name" dynamodbav:"last_name"`
	IsPremium     bool       `json:"is_premium" dynamodbav:"is_premium"`
	EmailVerified bool       `json:"email_verified" dynamodbav:"email_verified"`
	AuthProvider  string     `json:"auth_provider,omitempty" dynamodbav:"auth_provider"` // "local" | "google"
	GoogleSub     string     `json:"-"                       dynamodbav:"google_sub"`
	Enable        bool       `json:"enable" dynamodbav:"enable"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt     time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type CreateUserRequest struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type UpdateUserRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
}
