package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
)

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	if app.config.OtelCollectorUrl != "" {
		r.Use(otelchi.Middleware("seat-reservation-api", otelchi.WithChiRoutes(r)))
	}

	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(app.recoverPanic)
	r.Use(app.requestLogger)
	r.Use(app.sessionManager.LoadAndSave)
	r.Use(app.ensureGuestSession)

	r.Route("/showings/{showingID}", func(r chi.Router) {
		r.Get("/seats", app.GetSeatMapHandler)
		r.Get("/events", app.StreamSeatEventsHandler)
		r.Post("/holds", app.CreateHoldHandler)
	})

	r.Route("/holds/{token}", func(r chi.Router) {
		r.Patch("/", app.RenewHoldHandler)
		r.Delete("/", app.ReleaseHoldHandler)
	})

	r.Route("/checkout", func(r chi.Router) {
		r.Post("/", app.CheckoutHandler)
		r.Post("/resolve", app.ResolvePaymentHandler)
	})

	r.Route("/bookings/{bookingID}", func(r chi.Router) {
		r.Get("/", app.GetBookingHandler)
		r.Post("/cancel", app.CancelBookingHandler)
	})

	r.Get("/health", app.GetHealth)

	return r
}
