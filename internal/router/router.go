package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/VIDUSHH/kindnesshome-backend/internal/handler"
	"github.com/VIDUSHH/kindnesshome-backend/internal/middleware"
)

type Handlers struct {
	Auth          *handler.AuthHandler
	OAuth         *handler.OAuthHandler
	Organizations *handler.OrganizationHandler
	Campaigns     *handler.CampaignHandler
	Donations     *handler.DonationHandler
	MatchingGifts *handler.MatchingGiftHandler
	Users         *handler.UserHandler
	Feed          *handler.FeedHandler
	Health        *handler.HealthHandler
}

func SetupRoutes(h Handlers, auth *middleware.AuthMiddleware, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.Refresh)
			r.With(auth.Require).Get("/me", h.Auth.Me)
			r.With(auth.Require).Post("/logout", h.Auth.Logout)
		})

		r.Route("/oauth", func(r chi.Router) {
			r.Post("/google", h.OAuth.GoogleSignIn)
			r.Group(func(r chi.Router) {
				r.Use(auth.Require)
				r.Post("/google/link", h.OAuth.Link)
				r.Delete("/google/link", h.OAuth.Unlink)
				r.Get("/status", h.OAuth.Status)
			})
		})

		r.Route("/organizations", func(r chi.Router) {
			r.Get("/", h.Organizations.List)
			r.Get("/search", h.Organizations.Search)
			r.Get("/categories", h.Organizations.Categories)
			r.Get("/{id}", h.Organizations.Get)
			r.With(auth.Require).Post("/{id}/verify", h.Organizations.Verify)
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", h.Campaigns.List)
			r.Get("/featured", h.Campaigns.Featured)
			r.With(auth.Require).Post("/", h.Campaigns.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Campaigns.Get)
				r.With(auth.Require).Put("/", h.Campaigns.Update)
				r.With(auth.Require).Delete("/", h.Campaigns.Delete)

				r.Get("/updates", h.Campaigns.ListUpdates)
				r.With(auth.Require).Post("/updates", h.Campaigns.AddUpdate)

				// Anonymous donations are allowed; signed-in donors are
				// attributed via the optional token.
				r.With(auth.Optional).Post("/donate", h.Campaigns.Donate)
				r.Get("/donations", h.Campaigns.Donations)
				r.With(auth.Require).Get("/analytics", h.Campaigns.Analytics)

				r.Get("/feed", h.Feed.Subscribe)
				r.Get("/feed/subscribers", h.Feed.Subscribers)
			})
		})

		r.Route("/donations", func(r chi.Router) {
			r.Use(auth.Require)
			r.Post("/", h.Donations.Create)
			r.Post("/bulk", h.Donations.BulkImport)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Donations.Get)
				r.Post("/confirm", h.Donations.Confirm)
				r.Post("/cancel", h.Donations.Cancel)
				r.Get("/receipt", h.Donations.Receipt)
				r.Post("/matching-gift", h.Donations.CreateMatchingGift)
			})
		})

		r.With(auth.Require).Patch("/matching-gifts/{id}/status", h.MatchingGifts.UpdateStatus)

		r.Route("/users/me", func(r chi.Router) {
			r.Use(auth.Require)
			r.Put("/", h.Users.UpdateProfile)
			r.Get("/donations", h.Users.Donations)
			r.Get("/tax-receipts", h.Users.TaxReceipts)
			r.Route("/payment-methods", func(r chi.Router) {
				r.Get("/", h.Users.PaymentMethods)
				r.Post("/", h.Users.AddPaymentMethod)
				r.Put("/{id}/default", h.Users.SetDefaultPaymentMethod)
				r.Delete("/{id}", h.Users.RemovePaymentMethod)
			})
		})
	})

	return r
}

// LoggerMiddleware logs HTTP requests
func LoggerMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()))
		})
	}
}
