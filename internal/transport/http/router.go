package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/studypal-api/internal/application/document"
	"github.com/studypal-api/internal/application/otp"
	"github.com/studypal-api/internal/application/payment"
	"github.com/studypal-api/internal/application/session"
	"github.com/studypal-api/internal/application/study"
	"github.com/studypal-api/internal/application/user"
	"github.com/studypal-api/internal/config"
	"github.com/studypal-api/internal/domain"
	"github.com/studypal-api/internal/infrastructure/google"
	jwtinfra "github.com/studypal-api/internal/infrastructure/jwt"
	"github.com/studypal-api/internal/infrastructure/smtp"
	"github.com/studypal-api/internal/infrastructure/sns"
	"github.com/studypal-api/internal/transport/http/handler"
	appmiddleware "github.com/studypal-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo        UserRepository
	SessionRepo     SessionRepository
	OtpStore        OtpStore
	EntitlementRepo EntitlementStore
	StudyRepo       StudyRepository
	DocumentRepo    DocumentRepository
	ObjectStore     ObjectStore
	Orders          OrderCreator
	Mailer          smtp.Mailer
	Events          sns.EventPublisher // optional
	JWTProvider     *jwtinfra.Provider
	GoogleVerifier  *google.Verifier // optional
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10, applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:        deps.UserRepo,
		SessionRepo:     deps.SessionRepo,
		JWTProvider:     deps.JWTProvider,
		RefreshTokenDur: cfg.RefreshTokenDur,
	})
	sessDeps := session.ServiceDeps{
		SessionRepo:     deps.SessionRepo,
		UserRepo:        deps.UserRepo,
		JWTProvider:     deps.JWTProvider,
		RefreshTokenDur: cfg.RefreshTokenDur,
	}
	if deps.GoogleVerifier != nil {
		sessDeps.GoogleVerifier = deps.GoogleVerifier
	}
	sessionSvc := session.NewService(sessDeps)
	otpSvc := otp.NewService(otp.ServiceDeps{
		OtpRepo: deps.OtpStore,
		Mailer:  deps.Mailer,
		TTL:     cfg.OtpTTL,
	})
	paymentSvc := payment.NewService(payment.ServiceDeps{
		EntitlementRepo: deps.EntitlementRepo,
		Orders:          deps.Orders,
		Events:          deps.Events,
		Secret:          cfg.PaymentSecret,
		Price:           cfg.PremiumPrice,
		Currency:        cfg.PremiumCurrency,
	})
	studySvc := study.NewService(study.ServiceDeps{StudyRepo: deps.StudyRepo})
	documentSvc := document.NewService(document.ServiceDeps{
		DocumentRepo: deps.DocumentRepo,
		ObjectStore:  deps.ObjectStore,
	})

	healthH := handler.NewHealthHandler()
	userH := handler.NewUserHandler(userSvc)
	sessionH := handler.NewSessionHandler(sessionSvc)
	otpH := handler.NewOtpHandler(otpSvc, cfg.OtpFallbackInResponse)
	paymentH := handler.NewPaymentHandler(paymentSvc)
	studyH := handler.NewStudyHandler(studySvc)
	documentH := handler.NewDocumentHandler(documentSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.With(sensitiveRL.Limit).Post("/sessions/google", sessionH.LoginWithGoogle)
		r.Post("/sessions/refresh", sessionH.Refresh)
		r.With(sensitiveRL.Limit).Post("/otp/request", otpH.Request)
		r.With(sensitiveRL.Limit).Post("/otp/verify", otpH.Verify)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)

			r.Get("/users/{id}", userH.Get)
			r.Put("/users/{id}", userH.Update)
			r.Post("/users/change-password", userH.ChangePassword)

			r.Post("/payments/orders", paymentH.CreateOrder)
			r.Post("/payments/verify", paymentH.Verify)
			r.Get("/payments/entitlements", paymentH.ListEntitlements)

			r.Post("/study/records", studyH.Record)
			r.Get("/study/records", studyH.List)
			r.Delete("/study/records/{id}", studyH.Delete)

			r.Post("/documents", documentH.Upload)
			r.Get("/documents", documentH.List)
			r.Get("/documents/{id}/download", documentH.Download)
			r.Delete("/documents/{id}", documentH.Delete)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/users", userH.List)
				r.Delete("/users/{id}", userH.Delete)
			})
		})
	})

	return r
}
