package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/adstudio/backend/internal/config"
	"github.com/adstudio/backend/internal/handlers"
	mW "github.com/adstudio/backend/internal/middleware"
	"github.com/adstudio/backend/internal/services"
)

func newRouter(cfg *config.Config, deps routerDeps) http.Handler {
	creditsService := services.NewCreditsService(deps.ledger, deps.logger)
	checkoutService := services.NewCheckoutService(deps.ledger, deps.checkout, services.NewQRService(), cfg.Credits, cfg.BaseURL, deps.logger)
	studioService := services.NewStudioService(deps.ledger, deps.generator, deps.redis, cfg.Credits, deps.metrics, deps.logger)
	studioHandler := handlers.NewStudioHandler(studioService, deps.logger)
	authenticator := mW.NewAuthenticator(cfg.JWT.SecretKey, deps.redis, deps.logger)

	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(mW.Metrics(deps.metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.BaseURL},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := deps.ledger.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	r.Handle("/metrics", deps.metrics.Handler())

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Handle("/static/samples/*", http.StripPrefix("/static/samples/",
		mW.StaticFileServer("./static/samples")))

	r.Route("/api/v1", func(r chi.Router) {
		// Stripe signs the raw body; no auth, no JSON decoding upstream.
		r.Post("/webhooks/stripe", checkoutService.HandleStripeWebhook)

		var authService *services.AuthService
		if deps.db != nil {
			authService = services.NewAuthService(deps.db, deps.redis, deps.ledger, cfg, deps.logger)
			r.Post("/auth/register", authService.Register)
			r.Post("/auth/login", authService.Login)
			r.Post("/auth/logout", authService.Logout)
			r.Get("/auth/google", authService.GoogleLogin)
			r.Get("/auth/google/callback", authService.GoogleCallback)
		}

		r.Group(func(r chi.Router) {
			r.Use(authenticator.Middleware)

			if authService != nil {
				r.Get("/auth/account", authService.GetUserAccount)
			}

			r.Get("/credits", creditsService.GetCredits)
			r.Post("/credits/checkout", checkoutService.CreateCheckout)

			r.Post("/images/generate", studioHandler.GenerateImage)
			r.Post("/images/edit", studioHandler.EditImage)

			r.Post("/prompts/transcribe", deps.voice.TranscribePrompt)
		})
	})

	return r
}
