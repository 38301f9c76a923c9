package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robertarktes/flight-booking-web/internal/config"
	"github.com/robertarktes/flight-booking-web/internal/observability"
	"github.com/robertarktes/flight-booking-web/internal/rateLimit"
	"github.com/robertarktes/flight-booking-web/internal/session"
)

func SetupRouter(cfg *config.Config, h *Handlers, logger observability.Logger, rl *rateLimit.RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(MetricsMiddleware)

	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware(rl, cfg.RateLimitPerMinute))
		r.Use(session.Middleware(cfg.SessionTTL, cfg.SecureCookies))

		r.Get("/", h.Search)
		r.Get("/index.html", h.Search)
		r.Post("/flights/select", h.SelectFlight)
		r.Get("/flights/{id}", h.FlightDetail)

		r.Get("/booking.html", h.BookingForm)
		r.Post("/booking.html", h.CreateBooking)

		r.Get("/payment.html", h.PaymentForm)
		r.Post("/payment.html", h.Pay)

		r.Get("/confirmation.html", h.Confirmation)
		r.Get("/receipt/download", h.DownloadReceipt)

		r.Get("/cancel.html", h.CancelForm)
		r.Post("/cancel.html", h.CancelBooking)

		r.Get("/bookings.html", h.Bookings)
	})

	return r
}
