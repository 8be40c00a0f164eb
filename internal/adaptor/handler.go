package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/apperror"
	"event-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies; every request in this API is small JSON
const maxBodyBytes = 1 << 20

type Handler struct {
	Seat    *SeatHandler
	Booking *BookingHandler
	CheckIn *CheckInHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Seat:    NewSeatHandler(service.Seat, log),
		Booking: NewBookingHandler(service.Booking, log),
		CheckIn: NewCheckInHandler(service.CheckIn, log),
	}
}

// callerFrom reads the identity Authenticate stored on the request.
// Anonymous requests yield the zero Caller, which Authorize rejects.
func callerFrom(r *http.Request) usecase.Caller {
	id, _ := utils.GetUserIDFromContext(r.Context())
	role, _ := utils.GetRoleFromContext(r.Context())
	return usecase.Caller{ID: id, Role: entity.UserRole(role)}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) {
		utils.ResponseBadRequest(w, "Request body is required", nil)
		return false
	}
	utils.ResponseBadRequest(w, "Invalid request body", nil)
	return false
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		utils.ResponseBadRequest(w, "Invalid "+name, nil)
		return 0, false
	}
	return id, true
}

func paginationFrom(r *http.Request) (page, perPage int) {
	query := r.URL.Query()
	page = utils.ParseInt(query.Get("page"), utils.DefaultPage)
	perPage = utils.ClampPerPage(utils.ParseInt(query.Get("per_page"), utils.DefaultPerPage))
	return page, perPage
}

// writeError maps a service error to the JSON error envelope. Internal causes
// are logged and never sent to the client.
func writeError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	appErr, ok := apperror.As(err)
	if !ok {
		appErr = apperror.Persistence(operation, err)
	}
	status := apperror.HTTPStatus(appErr.Kind)

	if status >= http.StatusInternalServerError {
		log.Error(operation+" failed",
			zap.Error(err),
			zap.String("operation", operation),
		)
		utils.ResponseError(w, status, appErr.Code, "Internal server error", nil)
		return
	}

	log.Warn(operation+" rejected",
		zap.String("operation", operation),
		zap.String("kind", string(appErr.Kind)),
		zap.String("code", appErr.Code),
		zap.String("message", appErr.Message),
	)
	utils.ResponseError(w, status, appErr.Code, appErr.Message, appErr.Details)
}
