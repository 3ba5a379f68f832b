package model

// Hospital represents a requesting hospital. Read-only to the dispatch
// engine; its name and phone are embedded in outbound notifications.
type Hospital struct {
	ID       string
	Name     string
	Phone    string
	Location Coordinates
}
