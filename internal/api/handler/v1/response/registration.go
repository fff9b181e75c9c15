package response

import "github.com/urcet/yourfest-api/internal/domain"

type RegistrationCreated struct {
	Message  string         `json:"message"`
	ID       uint64         `json:"id"`
	TicketID string         `json:"ticketId"`
	QRCode   string         `json:"qrCode"`
	Pricing  domain.Pricing `json:"pricing"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

type ClearedResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted,omitempty"`
}
