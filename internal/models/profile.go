package models

// QuizProfile holds one user's quiz answers. It is read-only for the whole
// request; condition evaluation runs against the raw decoded mapping, this
// typed view feeds the personalization prompt.
type QuizProfile struct {
	MoveType       string          `json:"moveType"`
	Destination    string          `json:"destination"`
	MoveDate       string          `json:"moveDate"`
	HasHousing     bool            `json:"hasHousing"`
	Family         map[string]bool `json:"family"`
	Vehicle        string          `json:"vehicle"`
	CurrentHousing string          `json:"currentHousing"`
	NewHousing     string          `json:"newHousing"`
	Services       map[string]bool `json:"services"`
	HasJob         bool            `json:"hasJob"`
}
