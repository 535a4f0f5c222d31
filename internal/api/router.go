// Package api exposes the booking coordination logic over HTTP for the
// marketing site's booking pages and the operator console.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/TejjP/zyero-lead-accelerator/internal/admin"
	"github.com/TejjP/zyero-lead-accelerator/internal/availability"
	"github.com/TejjP/zyero-lead-accelerator/internal/booking"
)

type RouterConfig struct {
	Availability *availability.Service
	Flows        map[string]*booking.Flow
	Sessions     *booking.SessionStore
	Console      *admin.Console
	Logger       *zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	h := &handlers{
		avail:    cfg.Availability,
		flows:    cfg.Flows,
		sessions: cfg.Sessions,
		console:  cfg.Console,
		logger:   cfg.Logger,
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/availability", h.getAvailability)

		// Stepwise flow for the booking dialog.
		r.Post("/sessions", h.createSession)
		r.Post("/sessions/{id}/select", h.selectSlot)
		r.Post("/sessions/{id}/contact", h.submitContact)
		r.Post("/sessions/{id}/back", h.backToContact)
		r.Post("/sessions/{id}/submit", h.submitBooking)

		// Single-shot booking for clients that collect everything upfront.
		r.Post("/bookings", h.createBooking)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.adminLogin)
			r.Group(func(r chi.Router) {
				r.Use(adminGate(h.console.Authenticate))
				r.Get("/bookings", h.adminBookings)
				r.Get("/availability", h.adminAvailability)
				r.Post("/actions", h.adminAction)
				r.Get("/export", h.adminExport)
			})
		})
	})

	return r
}
