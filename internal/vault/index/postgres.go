package index

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dkozyrev/docvault/internal/dbx"
	"github.com/dkozyrev/docvault/internal/vault/models"
)

// PostgresRepository implements the index over PostgreSQL (pgx stdlib
// driver). Used by server/desktop deployments sharing one index.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) InsertDocument(ctx context.Context, doc *models.Document) error {
	pages, err := marshalPages(doc.Pages)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO documents (id, title, pages, thumbnail, ocr_text, folder_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		doc.ID, doc.Title, pages, doc.Thumbnail, doc.OCRText, nullable(doc.FolderID),
		doc.CreatedAt.UTC(), doc.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	query := `
		SELECT id, title, pages, thumbnail, ocr_text, folder_id, created_at, updated_at
		FROM documents WHERE id = $1
	`
	return scanDocument(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) ListDocuments(ctx context.Context) ([]*models.Document, error) {
	query := `
		SELECT id, title, pages, thumbnail, ocr_text, folder_id, created_at, updated_at
		FROM documents ORDER BY created_at DESC, id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

func (r *PostgresRepository) ListByFolder(ctx context.Context, folderID string) ([]*models.Document, error) {
	query := `
		SELECT id, title, pages, thumbnail, ocr_text, folder_id, created_at, updated_at
		FROM documents WHERE folder_id = $1 ORDER BY created_at DESC, id
	`
	rows, err := r.db.QueryContext(ctx, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents by folder: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

func (r *PostgresRepository) UpdateDocument(ctx context.Context, doc *models.Document) error {
	pages, err := marshalPages(doc.Pages)
	if err != nil {
		return err
	}

	query := `
		UPDATE documents
		SET title = $1, pages = $2, thumbnail = $3, ocr_text = $4, folder_id = $5, updated_at = $6
		WHERE id = $7
	`
	res, err := r.db.ExecContext(ctx, query,
		doc.Title, pages, doc.Thumbnail, doc.OCRText, nullable(doc.FolderID),
		doc.UpdatedAt.UTC(), doc.ID)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	return requireOneRow(res, doc.ID)
}

func (r *PostgresRepository) DeleteDocument(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return requireOneRow(res, id)
}

func (r *PostgresRepository) InsertFolder(ctx context.Context, folder *models.Folder) error {
	query := `INSERT INTO folders (id, name, parent_id, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query,
		folder.ID, folder.Name, nullable(folder.ParentID), folder.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert folder: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListFolders(ctx context.Context) ([]*models.Folder, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, parent_id, created_at FROM folders ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer rows.Close()

	return scanFolders(rows)
}

func (r *PostgresRepository) DeleteFolder(ctx context.Context, id string) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `UPDATE documents SET folder_id = NULL WHERE folder_id = $1`, id); err != nil {
			return fmt.Errorf("failed to clear folder references: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM folders WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete folder: %w", err)
		}
		return nil
	})
}
