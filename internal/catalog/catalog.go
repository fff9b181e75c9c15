// Package catalog ships the festival's default events and stalls.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/urcet/yourfest-api/internal/domain"
)

//go:embed seed.yaml
var seedFile []byte

type seedEvent struct {
	ID                 string   `yaml:"id"`
	Title              string   `yaml:"title"`
	Category           string   `yaml:"category"`
	Department         string   `yaml:"department"`
	ShortDescription   string   `yaml:"shortDescription"`
	FullDescription    string   `yaml:"fullDescription"`
	Date               string   `yaml:"date"`
	StartTime          string   `yaml:"startTime"`
	EndTime            string   `yaml:"endTime"`
	Venue              string   `yaml:"venue"`
	TeamSize           int      `yaml:"teamSize"`
	RegistrationFee    int      `yaml:"registrationFee"`
	Prize              string   `yaml:"prize"`
	Rules              []string `yaml:"rules"`
	Tags               []string `yaml:"tags"`
	Image              string   `yaml:"image"`
	FacultyCoordinator string   `yaml:"facultyCoordinator"`
	StudentCoordinator string   `yaml:"studentCoordinator"`
}

type seedHours struct {
	Day   string `yaml:"day"`
	Open  string `yaml:"open"`
	Close string `yaml:"close"`
}

type seedStall struct {
	ID           string      `yaml:"id"`
	Name         string      `yaml:"name"`
	Category     string      `yaml:"category"`
	Description  string      `yaml:"description"`
	Owner        string      `yaml:"owner"`
	Booth        string      `yaml:"booth"`
	Location     string      `yaml:"location"`
	Items        []string    `yaml:"items"`
	PriceRange   string      `yaml:"priceRange"`
	OpeningHours []seedHours `yaml:"openingHours"`
	Contact      struct {
		Phone string `yaml:"phone"`
		Email string `yaml:"email"`
	} `yaml:"contact"`
	Image string `yaml:"image"`
}

type seed struct {
	Events []seedEvent `yaml:"events"`
	Stalls []seedStall `yaml:"stalls"`
}

// Default returns the embedded catalog.
func Default() ([]domain.Event, []domain.Stall, error) {
	return Parse(seedFile)
}

func Parse(data []byte) ([]domain.Event, []domain.Stall, error) {
	var s seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, nil, fmt.Errorf("yaml.Unmarshal -> %w", err)
	}

	seen := make(map[string]struct{}, len(s.Events)+len(s.Stalls))

	events := make([]domain.Event, 0, len(s.Events))
	for _, e := range s.Events {
		if err := checkID(seen, e.ID); err != nil {
			return nil, nil, err
		}
		if e.RegistrationFee < 0 {
			return nil, nil, fmt.Errorf("event %s: negative registration fee", e.ID)
		}

		department := e.Department
		if department == "" {
			department = domain.DepartmentAll
		}
		teamSize := e.TeamSize
		if teamSize == 0 {
			teamSize = 1
		}

		events = append(events, domain.Event{
			ID:                 e.ID,
			Title:              e.Title,
			Category:           domain.EventCategory(e.Category),
			Department:         department,
			ShortDescription:   e.ShortDescription,
			FullDescription:    e.FullDescription,
			Date:               e.Date,
			StartTime:          e.StartTime,
			EndTime:            e.EndTime,
			Venue:              e.Venue,
			TeamSize:           teamSize,
			RegistrationFee:    e.RegistrationFee,
			Prize:              e.Prize,
			Rules:              e.Rules,
			Tags:               e.Tags,
			Image:              e.Image,
			FacultyCoordinator: e.FacultyCoordinator,
			StudentCoordinator: e.StudentCoordinator,
		})
	}

	stalls := make([]domain.Stall, 0, len(s.Stalls))
	for _, st := range s.Stalls {
		if err := checkID(seen, st.ID); err != nil {
			return nil, nil, err
		}

		hours := make([]domain.OpeningHours, 0, len(st.OpeningHours))
		for _, h := range st.OpeningHours {
			hours = append(hours, domain.OpeningHours{Day: h.Day, Open: h.Open, Close: h.Close})
		}

		stalls = append(stalls, domain.Stall{
			ID:           st.ID,
			Name:         st.Name,
			Category:     st.Category,
			Description:  st.Description,
			Owner:        st.Owner,
			Booth:        st.Booth,
			Location:     st.Location,
			Items:        st.Items,
			PriceRange:   st.PriceRange,
			OpeningHours: hours,
			Contact:      domain.StallContact{Phone: st.Contact.Phone, Email: st.Contact.Email},
			Image:        st.Image,
		})
	}

	return events, stalls, nil
}

func checkID(seen map[string]struct{}, id string) error {
	if id == "" {
		return fmt.Errorf("catalog entry without id")
	}
	if _, dup := seen[id]; dup {
		return fmt.Errorf("duplicate catalog id %q", id)
	}
	seen[id] = struct{}{}

	return nil
}
