package models

import "time"

// Folder organizes documents into a hierarchy via a self-referencing parent
// pointer. Folders themselves hold no encrypted payload.
type Folder struct {
	ID       string
	Name     string
	ParentID *string

	CreatedAt time.Time
}
