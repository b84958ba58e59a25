// Package models defines the vault's persisted record types.
package models

import "time"

// Document is a logical scanned document: an ordered set of encrypted page
// blobs plus metadata kept in the relational index.
type Document struct {
	// ID is a globally unique identifier (uuid).
	ID string

	// Title is a user-facing name.
	Title string

	// Pages holds the encrypted page blob names in page order. The order in
	// this slice is the only page-ordering the system maintains.
	Pages []string

	// Thumbnail is the encrypted thumbnail blob name, or "" when none exists.
	Thumbnail string

	// OCRText is recognized text for the document. In memory it is
	// plaintext; the repository encrypts it before it reaches the index.
	OCRText string

	// FolderID references the containing folder, nil for unfiled documents.
	FolderID *string

	// CreatedAt / UpdatedAt are UTC timestamps.
	CreatedAt time.Time
	UpdatedAt time.Time
}
