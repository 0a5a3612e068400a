package models

// Group is the container created once per import run.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Splitwise").
	Name string

	// Currency is the ISO-4217 code of every amount in the group.
	Currency string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Participant is one person of a group, taken from a column header of the export.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string

	// GroupID is the group owning this participant.
	GroupID string

	// Name is the column header the participant was read from.
	Name string
}
