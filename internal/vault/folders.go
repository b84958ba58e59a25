package vault

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dkozyrev/docvault/internal/common"
	"github.com/dkozyrev/docvault/internal/vault/models"
)

// CreateFolder adds a folder, optionally nested under a parent.
func (r *Repository) CreateFolder(ctx context.Context, name string, parentID *string) (*models.Folder, error) {
	folder := &models.Folder{
		ID:        uuid.NewString(),
		Name:      name,
		ParentID:  parentID,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.idx.InsertFolder(ctx, folder); err != nil {
		return nil, fmt.Errorf("%w: create folder: %w", common.ErrRepository, err)
	}
	return folder, nil
}

// ListFolders returns all folders ordered by name.
func (r *Repository) ListFolders(ctx context.Context) ([]*models.Folder, error) {
	folders, err := r.idx.ListFolders(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list folders: %w", common.ErrRepository, err)
	}
	return folders, nil
}

// MoveToFolder files a document under a folder; a nil folderID unfiles it.
func (r *Repository) MoveToFolder(ctx context.Context, doc *models.Document, folderID *string) error {
	previous := doc.FolderID
	doc.FolderID = folderID
	doc.UpdatedAt = time.Now().UTC()

	if err := r.idx.UpdateDocument(ctx, r.storedCopyBestEffort(ctx, doc)); err != nil {
		doc.FolderID = previous
		return fmt.Errorf("%w: index document %s: %w", common.ErrRepository, doc.ID, err)
	}
	return nil
}

// DeleteFolder removes a folder. Documents filed under it are kept and
// become unfiled; their contents are untouched.
func (r *Repository) DeleteFolder(ctx context.Context, id string) error {
	if err := r.idx.DeleteFolder(ctx, id); err != nil {
		return fmt.Errorf("%w: delete folder %s: %w", common.ErrRepository, id, err)
	}
	return nil
}
