package adaptor

import (
	"net/http"

	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type SeatHandler struct {
	service usecase.SeatService
	log     *zap.Logger
}

func NewSeatHandler(service usecase.SeatService, log *zap.Logger) *SeatHandler {
	return &SeatHandler{
		service: service,
		log:     log.With(zap.String("handler", "seat")),
	}
}

// ListSeats handles GET /api/seats/event/{eventId} (public)
func (h *SeatHandler) ListSeats(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}

	seats, err := h.service.ListSeats(r.Context(), eventID)
	if err != nil {
		writeError(w, h.log, err, "list seats")
		return
	}

	utils.ResponseSuccess(w, "success", seats)
}

// ListBookedSeats handles GET /api/seats/booked/{eventId} (public)
func (h *SeatHandler) ListBookedSeats(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}

	booked, err := h.service.ListBookedSeats(r.Context(), eventID)
	if err != nil {
		writeError(w, h.log, err, "list booked seats")
		return
	}

	utils.ResponseSuccess(w, "success", booked)
}

// LockSeat handles POST /api/seats/lock (customer)
func (h *SeatHandler) LockSeat(w http.ResponseWriter, r *http.Request) {
	var req request.LockSeatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	seat, err := h.service.LockSeat(r.Context(), callerFrom(r), &req)
	if err != nil {
		writeError(w, h.log, err, "lock seat")
		return
	}

	utils.ResponseSuccess(w, "Seat locked", seat)
}

// UnlockSeat handles POST /api/seats/unlock (lock holder or admin)
func (h *SeatHandler) UnlockSeat(w http.ResponseWriter, r *http.Request) {
	var req request.UnlockSeatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	seat, err := h.service.UnlockSeat(r.Context(), callerFrom(r), &req)
	if err != nil {
		writeError(w, h.log, err, "unlock seat")
		return
	}

	utils.ResponseSuccess(w, "Seat unlocked", seat)
}
