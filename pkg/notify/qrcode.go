package notify

import (
	"encoding/json"
	"fmt"
	"net/url"
)

const DefaultQRBaseURL = "https://api.qrserver.com/v1/create-qr-code/"

type ticketPayload struct {
	TicketID         string `json:"ticketId"`
	BookingReference string `json:"bookingReference"`
	EventID          int64  `json:"eventId"`
}

// QRCoder builds a third-party URL that renders the ticket as a QR image
type QRCoder struct {
	baseURL string
}

func NewQRCoder(baseURL string) *QRCoder {
	if baseURL == "" {
		baseURL = DefaultQRBaseURL
	}
	return &QRCoder{baseURL: baseURL}
}

func (q *QRCoder) TicketURL(ticketID, bookingReference string, eventID int64) (string, error) {
	if ticketID == "" {
		return "", fmt.Errorf("build qr code: empty ticket id")
	}

	data, err := json.Marshal(ticketPayload{
		TicketID:         ticketID,
		BookingReference: bookingReference,
		EventID:          eventID,
	})
	if err != nil {
		return "", fmt.Errorf("build qr code payload: %w", err)
	}

	base, err := url.Parse(q.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse qr base url: %w", err)
	}

	params := url.Values{}
	params.Set("size", "200x200")
	params.Set("data", string(data))
	base.RawQuery = params.Encode()

	return base.String(), nil
}
