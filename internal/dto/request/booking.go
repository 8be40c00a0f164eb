package request

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SeatList accepts either a JSON array of labels or one comma-separated string
type SeatList []string

func (s *SeatList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*s = nil
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var labels []string
		if err := json.Unmarshal(data, &labels); err != nil {
			return fmt.Errorf("seats must be an array of strings: %w", err)
		}
		*s = normalizeLabels(labels)
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("seats must be an array or a comma-separated string: %w", err)
	}
	*s = normalizeLabels(strings.Split(joined, ","))
	return nil
}

func normalizeLabels(labels []string) SeatList {
	out := make(SeatList, 0, len(labels))
	for _, label := range labels {
		if label = strings.TrimSpace(label); label != "" {
			out = append(out, label)
		}
	}
	return out
}

type CreateBookingRequest struct {
	CustomerID    int64    `json:"customerId" validate:"required,gt=0"`
	EventID       int64    `json:"eventId" validate:"required,gt=0"`
	Seats         SeatList `json:"seats" validate:"omitempty,max=50,dive,seatlabel"`
	NumberOfSeats int      `json:"numberOfSeats" validate:"omitempty,gt=0,max=50"`
	TotalAmount   *float64 `json:"totalAmount,omitempty" validate:"omitempty,gt=0"`
}

type ProcessPaymentRequest struct {
	BookingID      int64   `json:"bookingId" validate:"required,gt=0"`
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	CardholderName string  `json:"cardholderName,omitempty" validate:"omitempty,max=100"`
}
