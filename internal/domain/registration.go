package domain

import "time"

type RegistrationCategory string

const (
	RegistrationCategoryTech     RegistrationCategory = "tech"
	RegistrationCategoryCultural RegistrationCategory = "cultural"
	RegistrationCategoryBoth     RegistrationCategory = "both"
)

// CategoryForEvents derives the registration category from a selection.
func CategoryForEvents(events []Event) RegistrationCategory {
	var tech, cultural bool
	for _, e := range events {
		switch e.Category {
		case EventCategoryTech:
			tech = true
		case EventCategoryCultural:
			cultural = true
		}
	}

	switch {
	case tech && cultural:
		return RegistrationCategoryBoth
	case cultural:
		return RegistrationCategoryCultural
	default:
		return RegistrationCategoryTech
	}
}

type Participant struct {
	Name           string `json:"participantName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	RollNumber     string `json:"rollNumber"`
	Branch         string `json:"participantBranch"`
	Year           string `json:"participantYear"`
	EducationLevel string `json:"educationLevel"`
	Institution    string `json:"college"`
}

type RegistrationInput struct {
	Participant
	EventIDs []string
	TeamName string
	Category RegistrationCategory
}

type Registration struct {
	ID       uint64   `json:"id"`
	TicketID string   `json:"ticketId"`
	EventIDs []string `json:"eventIds"`
	TeamName string   `json:"teamName,omitempty"`
	Participant
	Category  RegistrationCategory `json:"regType"`
	Pricing   Pricing              `json:"pricing"`
	QRCode    string               `json:"qrCode"`
	CreatedAt time.Time            `json:"createdAt"`
}

// Ticket is a registration together with the catalog entries it still
// resolves to.
type Ticket struct {
	Registration Registration   `json:"registration"`
	Events       []EventSummary `json:"events"`
}
