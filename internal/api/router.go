package api

import (
	"net/http"
	"time"

	"challengehub/internal/api/handler"
	"challengehub/internal/app/service"
	"challengehub/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	challengeService *service.ChallengeService,
	submissionService *service.SubmissionService,
	userService *service.UserService,
	rankingService *service.RankingService,
	executionService *service.ExecutionService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies "Authorization: Bearer T" tokens and puts claims in context.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		// Auth routes (public)
		authHandler := handler.NewAuthHandler(authService)
		v1.Group(func(publicAuth chi.Router) {
			authHandler.RegisterRoutes(publicAuth)
		})

		// Challenge routes (public catalog, admin mutations, validation for authed users)
		challengeHandler := handler.NewChallengeHandler(challengeService, executionService)
		v1.Route("/challenges", challengeHandler.RegisterRoutes)

		// Submission routes (authenticated)
		submissionHandler := handler.NewSubmissionHandler(submissionService)
		v1.Route("/submissions", submissionHandler.RegisterRoutes)

		// User routes (authenticated, admin for list/update)
		userHandler := handler.NewUserHandler(userService)
		v1.Route("/users", userHandler.RegisterRoutes)

		// Ranking routes (public)
		rankingHandler := handler.NewRankingHandler(rankingService)
		v1.Route("/rankings", rankingHandler.RegisterRoutes)

		// Webhook routes (called by the executor, should be secured at the network layer)
		webhookHandler := handler.NewWebhookHandler(executionService)
		v1.Route("/webhook", webhookHandler.RegisterRoutes)
	})

	return r
}
