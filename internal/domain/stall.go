package domain

type OpeningHours struct {
	Day   string `json:"day"`
	Open  string `json:"open"`
	Close string `json:"close"`
}

type StallContact struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type Stall struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Category     string         `json:"category"` // "food", "gaming", "merchandise", ...
	Description  string         `json:"description"`
	Owner        string         `json:"owner"`
	Booth        string         `json:"booth"`
	Location     string         `json:"location"`
	Items        []string       `json:"items"`
	PriceRange   string         `json:"priceRange"`
	OpeningHours []OpeningHours `json:"openingHours"`
	Contact      StallContact   `json:"contact"`
	Image        string         `json:"image"`
}
