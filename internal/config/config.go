package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	// StoreBackend selects the record store: "dynamo" (durable) or "memory"
	// (volatile, single process, for local development without AWS).
	StoreBackend string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string
	SNSTopicARN    string // entitlement events; empty disables publishing

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration
	RefreshTokenDur   time.Duration

	GoogleClientID string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	// OtpTTL bounds how long an issued code verifies.
	OtpTTL time.Duration
	// OtpFallbackInResponse echoes the code in the HTTP response when (and
	// only when) mail delivery failed. Operational escape hatch, off by default.
	OtpFallbackInResponse bool

	// Payment processor credentials. An empty PaymentSecret means attestation
	// verification is not configured and must be reported as such.
	PaymentKeyID    string
	PaymentSecret   string
	PaymentBaseURL  string
	PremiumPrice    int64 // minor units
	PremiumCurrency string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users        string
	Sessions     string
	Otps         string
	Entitlements string
	StudyRecords string
	Documents    string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		StoreBackend: getEnv("STORE_BACKEND", "dynamo"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:        getEnv("DYNAMO_TABLE_USERS", "users"),
			Sessions:     getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			Otps:         getEnv("DYNAMO_TABLE_OTPS", "otps"),
			Entitlements: getEnv("DYNAMO_TABLE_ENTITLEMENTS", "entitlements"),
			StudyRecords: getEnv("DYNAMO_TABLE_STUDY_RECORDS", "study_records"),
			Documents:    getEnv("DYNAMO_TABLE_DOCUMENTS", "documents"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "studypal-documents"),
		SNSTopicARN:  getEnv("SNS_TOPIC_ARN", ""),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,
		RefreshTokenDur:   time.Duration(getEnvInt("REFRESH_TOKEN_EXPIRY_DAYS", 30)) * 24 * time.Hour,

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		OtpTTL:                time.Duration(getEnvInt("OTP_TTL_MINUTES", 10)) * time.Minute,
		OtpFallbackInResponse: getEnvBool("OTP_FALLBACK_IN_RESPONSE", false),

		PaymentKeyID:    getEnv("PAYMENT_KEY_ID", ""),
		PaymentSecret:   getEnv("PAYMENT_SECRET", ""),
		PaymentBaseURL:  getEnv("PAYMENT_BASE_URL", "https://api.razorpay.com/v1"),
		PremiumPrice:    int64(getEnvInt("PREMIUM_PRICE", 49900)),
		PremiumCurrency: getEnv("PREMIUM_CURRENCY", "INR"),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
