package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/studypal-api/internal/config"
	"github.com/studypal-api/internal/infrastructure/checkout"
	"github.com/studypal-api/internal/infrastructure/dynamo"
	"github.com/studypal-api/internal/infrastructure/google"
	jwtinfra "github.com/studypal-api/internal/infrastructure/jwt"
	"github.com/studypal-api/internal/infrastructure/memory"
	s3infra "github.com/studypal-api/internal/infrastructure/s3"
	"github.com/studypal-api/internal/infrastructure/smtp"
	"github.com/studypal-api/internal/infrastructure/sns"
	transporthttp "github.com/studypal-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional, auth routes degrade to passthrough without it).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// S3 store.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// SNS entitlement event publisher (optional).
	var events sns.EventPublisher
	if pub, err := sns.NewPublisher(cfg); err == nil {
		events = pub
	} else {
		log.Printf("WARN: SNS publisher not available: %v", err)
	}

	// Google sign-in (optional).
	var googleVerifier *google.Verifier
	if cfg.GoogleClientID != "" {
		googleVerifier = google.NewVerifier(cfg.GoogleClientID)
	}

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)

	deps := &transporthttp.Deps{
		UserRepo:       userRepo,
		SessionRepo:    dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		StudyRepo:      dynamo.NewStudyRecordRepo(dynamoClient, cfg.DynamoTables.StudyRecords),
		DocumentRepo:   dynamo.NewDocumentRepo(dynamoClient, cfg.DynamoTables.Documents),
		ObjectStore:    s3Store,
		Orders:         checkout.NewClient(cfg),
		Mailer:         mailer,
		Events:         events,
		JWTProvider:    jwtProvider,
		GoogleVerifier: googleVerifier,
	}

	// The passcode and entitlement stores can run against a volatile
	// in-process backend for local development without AWS.
	switch cfg.StoreBackend {
	case "memory":
		log.Println("WARN: using in-memory passcode/entitlement store, records do not survive restarts")
		mem := memory.NewStore()
		mem.SetUserStore(userRepo)
		deps.OtpStore = mem
		deps.EntitlementRepo = mem
	default:
		deps.OtpStore = dynamo.NewOtpRepo(dynamoClient, cfg.DynamoTables.Otps)
		deps.EntitlementRepo = dynamo.NewEntitlementRepo(dynamoClient, cfg.DynamoTables.Entitlements, cfg.DynamoTables.Users)
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
