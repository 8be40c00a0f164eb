package wire

import (
	"net/http"

	"event-ticketing/internal/adaptor"
	"event-ticketing/internal/data/entity"
	"event-ticketing/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	auth func(http.Handler) http.Handler,
	log *zap.Logger,
) {
	// every booking route is authenticated; ownership is checked per booking
	r.Route("/bookings", func(r chi.Router) {
		r.Use(auth)

		r.With(middleware.RequireRole(log, entity.RoleCustomer)).Post("/", bookingHandler.CreateBooking)
		r.Post("/payment", bookingHandler.ProcessPayment)

		r.Get("/customer/{customerId}", bookingHandler.GetCustomerBookings)
		r.Get("/{id}", bookingHandler.GetBookingByID)
		r.Delete("/{id}", bookingHandler.DeleteBooking)

		// ==================== ADMIN ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(log, entity.RoleAdmin))

			r.Get("/admin/all", bookingHandler.GetAllBookings)
			r.Patch("/{id}/cancel", bookingHandler.CancelBooking)
		})
	})
}
