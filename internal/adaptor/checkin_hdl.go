package adaptor

import (
	"net/http"

	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/dto/response"
	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CheckInHandler struct {
	service usecase.CheckInService
	log     *zap.Logger
}

func NewCheckInHandler(service usecase.CheckInService, log *zap.Logger) *CheckInHandler {
	return &CheckInHandler{
		service: service,
		log:     log.With(zap.String("handler", "checkin")),
	}
}

// ScanTicket handles POST /api/checkin/scan (staff). The body is the scan
// result itself; repeat scans are a normal 200 outcome.
func (h *CheckInHandler) ScanTicket(w http.ResponseWriter, r *http.Request) {
	var req request.ScanTicketRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.ScanTicket(r.Context(), callerFrom(r), &req)
	if err != nil {
		writeError(w, h.log, err, "scan ticket")
		return
	}

	utils.WriteJSON(w, scanHTTPStatus(result), result)
}

func scanHTTPStatus(result *response.ScanResponse) int {
	switch result.Status {
	case response.ScanValid, response.ScanAlreadyScanned:
		return http.StatusOK
	case response.ScanInvalid:
		if !result.Found {
			return http.StatusNotFound
		}
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}

// GetTicketStatus handles GET /api/checkin/ticket/{ticketId} (public)
func (h *CheckInHandler) GetTicketStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.GetTicketStatus(r.Context(), chi.URLParam(r, "ticketId"))
	if err != nil {
		writeError(w, h.log, err, "get ticket status")
		return
	}

	utils.ResponseSuccess(w, "success", status)
}

// MarkTicketUsed handles PATCH /api/checkin/ticket/{ticketId}/use (staff)
func (h *CheckInHandler) MarkTicketUsed(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.MarkTicketUsed(r.Context(), callerFrom(r), chi.URLParam(r, "ticketId"))
	if err != nil {
		writeError(w, h.log, err, "mark ticket used")
		return
	}

	utils.ResponseSuccess(w, "Ticket marked used", status)
}

// GetEventCheckIns handles GET /api/checkin/event/{eventId} (staff)
func (h *CheckInHandler) GetEventCheckIns(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}

	checkIns, err := h.service.GetEventCheckIns(r.Context(), callerFrom(r), eventID)
	if err != nil {
		writeError(w, h.log, err, "list event check-ins")
		return
	}

	utils.ResponseSuccess(w, "success", checkIns)
}
