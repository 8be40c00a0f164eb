package wire

import (
	"net/http"

	"event-ticketing/internal/adaptor"
	"event-ticketing/internal/data/entity"
	"event-ticketing/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCheckIn(
	r chi.Router,
	checkInHandler *adaptor.CheckInHandler,
	auth func(http.Handler) http.Handler,
	log *zap.Logger,
) {
	r.Route("/checkin", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		r.Get("/ticket/{ticketId}", checkInHandler.GetTicketStatus)

		// ==================== STAFF ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Use(middleware.RequireRole(log, entity.RoleStaff))

			r.Post("/scan", checkInHandler.ScanTicket)
			r.Patch("/ticket/{ticketId}/use", checkInHandler.MarkTicketUsed)
			r.Get("/event/{eventId}", checkInHandler.GetEventCheckIns)
		})
	})
}
