// Package index provides the relational metadata index for vault documents:
// one row per document with its ordered page blob names, plus the folder
// table used for organization.
//
// The index stores what it is given. Sensitive fields (OCR text) arrive
// already encrypted from the vault layer.
package index

import (
	"context"

	"github.com/dkozyrev/docvault/internal/vault/models"
)

// Repository describes the document metadata index. Implementations are
// backed by SQLite (on-device default) or PostgreSQL.
type Repository interface {
	// InsertDocument adds a new document row.
	InsertDocument(ctx context.Context, doc *models.Document) error

	// GetDocument returns a document by id or common.ErrDocumentNotFound.
	GetDocument(ctx context.Context, id string) (*models.Document, error)

	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]*models.Document, error)

	// ListByFolder returns the documents filed under a folder, newest first.
	ListByFolder(ctx context.Context, folderID string) ([]*models.Document, error)

	// UpdateDocument rewrites the mutable fields (title, pages, thumbnail,
	// ocr text, folder reference, updated_at) of an existing row.
	UpdateDocument(ctx context.Context, doc *models.Document) error

	// DeleteDocument removes the row. Deleting a missing document returns
	// common.ErrDocumentNotFound.
	DeleteDocument(ctx context.Context, id string) error

	// InsertFolder adds a folder row.
	InsertFolder(ctx context.Context, folder *models.Folder) error

	// ListFolders returns all folders.
	ListFolders(ctx context.Context) ([]*models.Folder, error)

	// DeleteFolder removes a folder and clears the folder reference of every
	// document filed under it, atomically.
	DeleteFolder(ctx context.Context, id string) error
}
