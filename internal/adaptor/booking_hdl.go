package adaptor

import (
	"net/http"

	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/bookings (customer)
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req request.CreateBookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), callerFrom(r), &req)
	if err != nil {
		writeError(w, h.log, err, "create booking")
		return
	}

	utils.ResponseCreated(w, "Booking created", booking)
}

// GetBookingByID handles GET /api/bookings/{id} (owner, staff, admin)
func (h *BookingHandler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	booking, err := h.service.GetBookingByID(r.Context(), callerFrom(r), bookingID)
	if err != nil {
		writeError(w, h.log, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// GetCustomerBookings handles GET /api/bookings/customer/{customerId} (self or admin)
func (h *BookingHandler) GetCustomerBookings(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "customerId")
	if !ok {
		return
	}

	page, perPage := paginationFrom(r)
	req := &request.PaginatedRequest{Page: page, PerPage: perPage}

	bookings, err := h.service.GetCustomerBookings(r.Context(), callerFrom(r), customerID, req)
	if err != nil {
		writeError(w, h.log, err, "get customer bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetAllBookings handles GET /api/bookings/admin/all (admin)
func (h *BookingHandler) GetAllBookings(w http.ResponseWriter, r *http.Request) {
	page, perPage := paginationFrom(r)
	req := &request.PaginatedRequest{Page: page, PerPage: perPage}

	bookings, err := h.service.GetAllBookings(r.Context(), callerFrom(r), req)
	if err != nil {
		writeError(w, h.log, err, "get all bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// ProcessPayment handles POST /api/bookings/payment (owner or admin)
func (h *BookingHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req request.ProcessPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	payment, err := h.service.ProcessPayment(r.Context(), callerFrom(r), &req)
	if err != nil {
		writeError(w, h.log, err, "process payment")
		return
	}

	utils.ResponseSuccess(w, "Payment completed", payment)
}

// DeleteBooking handles DELETE /api/bookings/{id} (owner or admin)
func (h *BookingHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteBooking(r.Context(), callerFrom(r), bookingID); err != nil {
		writeError(w, h.log, err, "delete booking")
		return
	}

	utils.ResponseSuccess(w, "Booking deleted", nil)
}

// CancelBooking handles PATCH /api/bookings/{id}/cancel (admin)
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	booking, err := h.service.CancelBooking(r.Context(), callerFrom(r), bookingID)
	if err != nil {
		writeError(w, h.log, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "Booking cancelled", booking)
}
