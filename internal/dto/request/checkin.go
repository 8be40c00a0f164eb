package request

type ScanTicketRequest struct {
	TicketID string `json:"ticketId" validate:"required,max=64"`
}
