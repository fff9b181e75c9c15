package domain

type EventCategory string

const (
	EventCategoryTech     EventCategory = "tech"
	EventCategoryCultural EventCategory = "cultural"
)

// DepartmentAll marks an event that is open to every branch.
const DepartmentAll = "ALL"

type Event struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	Category           EventCategory `json:"category"`
	Department         string        `json:"department"`
	ShortDescription   string        `json:"shortDescription"`
	FullDescription    string        `json:"fullDescription"`
	Date               string        `json:"date"`
	StartTime          string        `json:"startTime"`
	EndTime            string        `json:"endTime"`
	Venue              string        `json:"venue"`
	TeamSize           int           `json:"teamSize"`
	RegistrationFee    int           `json:"registrationFee"`
	Prize              string        `json:"prize"`
	Rules              []string      `json:"rules"`
	Tags               []string      `json:"tags"`
	Image              string        `json:"image"`
	FacultyCoordinator string        `json:"facultyCoordinator,omitempty"`
	StudentCoordinator string        `json:"studentCoordinator,omitempty"`
}

// EventSummary is the slice of an Event printed on a ticket.
type EventSummary struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	Venue           string `json:"venue"`
	RegistrationFee int    `json:"registrationFee"`
}

func (e Event) Summary() EventSummary {
	return EventSummary{
		ID:              e.ID,
		Title:           e.Title,
		Date:            e.Date,
		StartTime:       e.StartTime,
		EndTime:         e.EndTime,
		Venue:           e.Venue,
		RegistrationFee: e.RegistrationFee,
	}
}
