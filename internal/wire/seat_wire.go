package wire

import (
	"net/http"

	"event-ticketing/internal/adaptor"
	"event-ticketing/internal/data/entity"
	"event-ticketing/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireSeat(
	r chi.Router,
	seatHandler *adaptor.SeatHandler,
	auth func(http.Handler) http.Handler,
	log *zap.Logger,
) {
	r.Route("/seats", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		r.Get("/event/{eventId}", seatHandler.ListSeats)
		r.Get("/booked/{eventId}", seatHandler.ListBookedSeats)

		// ==================== PROTECTED ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(auth)

			r.With(middleware.RequireRole(log, entity.RoleCustomer)).Post("/lock", seatHandler.LockSeat)

			// holder or admin, checked against the lock itself
			r.Post("/unlock", seatHandler.UnlockSeat)
		})
	})
}
