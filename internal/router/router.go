package router

import (
	"context"
	"net/http"
	"time"

	"gugarden/internal/handler"
	"gugarden/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// readyTimeout bounds the database ping behind /ready.
const readyTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	Payment *handler.PaymentHandler
	User    *handler.UserHandler
	Rental  *handler.RentalHandler
}

// Options configures cross-cutting router behaviour.
type Options struct {
	AllowedOrigin string
	Tokens        middleware.TokenParser
	DB            Pinger
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware order: RequestID -> RealIP -> Recovery -> Logging -> CORS
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(opts.AllowedOrigin))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := opts.DB.Ping(ctx); err != nil {
			logger.Warn().Err(err).Msg("readiness check failed")
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})

	authenticate := middleware.Authenticate(opts.Tokens, logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Get("/me", h.Auth.Me)
				r.Put("/me", h.Auth.UpdateProfile)
				r.Put("/password", h.Auth.ChangePassword)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Product.List)
			r.Get("/featured", h.Product.Featured)
			r.Get("/category/{slug}", h.Product.List)
			r.Get("/{id}", h.Product.GetByID)
		})
		r.Get("/categories", h.Product.Categories)

		r.Post("/rental/inquiry", h.Rental.Submit)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.Cart.Get)
				r.Post("/", h.Cart.Add)
				r.Delete("/", h.Cart.Clear)
				r.Put("/{id}", h.Cart.Update)
				r.Delete("/{id}", h.Cart.Remove)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", h.Order.Create)
				r.Get("/", h.Order.List)
				r.Get("/{id}", h.Order.GetByID)
				r.Put("/{id}/cancel", h.Order.Cancel)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Post("/prepare", h.Payment.Prepare)
				r.Post("/approve", h.Payment.Approve)
				r.Post("/cancel", h.Payment.Cancel)
				r.Get("/status/{orderId}", h.Payment.Status)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logger))

				r.Get("/dashboard", h.Order.Dashboard)

				r.Get("/orders", h.Order.AdminList)
				r.Get("/orders/{id}", h.Order.AdminGet)
				r.Put("/orders/{id}/status", h.Order.AdminUpdateStatus)

				r.Get("/products", h.Product.AdminList)
				r.Post("/products", h.Product.Create)
				r.Get("/products/export", h.Product.Export)
				r.Put("/products/{id}", h.Product.Update)
				r.Delete("/products/{id}", h.Product.Delete)

				r.Get("/users", h.User.List)
				r.Get("/users/{id}", h.User.Get)
				r.Put("/users/{id}/role", h.User.UpdateRole)

				r.Get("/categories", h.Product.Categories)
				r.Get("/rentals", h.Rental.List)
			})
		})
	})

	return r
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(`{"status":"` + status + `"}`))
}
