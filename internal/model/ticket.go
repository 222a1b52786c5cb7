package model

// Ticket is an issue tracker ticket assigned to the user.
type Ticket struct {
	ID          string `json:"id"`
	Project     string `json:"project"`
	Status      string `json:"status"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
}
