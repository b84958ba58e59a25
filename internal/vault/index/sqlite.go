package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dkozyrev/docvault/internal/common"
	"github.com/dkozyrev/docvault/internal/dbx"
	"github.com/dkozyrev/docvault/internal/vault/models"
)

// SQLiteRepository implements the index over a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) InsertDocument(ctx context.Context, doc *models.Document) error {
	pages, err := marshalPages(doc.Pages)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO documents (id, title, pages, thumbnail, ocr_text, folder_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		doc.ID, doc.Title, pages, doc.Thumbnail, doc.OCRText, nullable(doc.FolderID),
		doc.CreatedAt.UTC(), doc.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	query := `
		SELECT id, title, pages, thumbnail, ocr_text, folder_id, created_at, updated_at
		FROM documents WHERE id = ?
	`
	return scanDocument(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteRepository) ListDocuments(ctx context.Context) ([]*models.Document, error) {
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

func (r *SQLiteRepository) ListByFolder(ctx context.Context, folderID string) ([]*models.Document, error) {
	query := `
		SELECT id, title, pages, thumbnail, ocr_text, folder_id, created_at, updated_at
		FROM documents WHERE folder_id = ? ORDER BY created_at DESC, id
	`
	rows, err := r.db.QueryContext(ctx, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents by folder: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

func (r *SQLiteRepository) UpdateDocument(ctx context.Context, doc *models.Document) error {
	pages, err := marshalPages(doc.Pages)
	if err != nil {
		return err
	}

	query := `
		UPDATE documents
		SET title = ?, pages = ?, thumbnail = ?, ocr_text = ?, folder_id = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, query,
		doc.Title, pages, doc.Thumbnail, doc.OCRText, nullable(doc.FolderID),
		doc.UpdatedAt.UTC(), doc.ID)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	return requireOneRow(res, doc.ID)
}

func (r *SQLiteRepository) DeleteDocument(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return requireOneRow(res, id)
}

func (r *SQLiteRepository) InsertFolder(ctx context.Context, folder *models.Folder) error {
	query := `INSERT INTO folders (id, name, parent_id, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		folder.ID, folder.Name, nullable(folder.ParentID), folder.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert folder: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListFolders(ctx context.Context) ([]*models.Folder, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, parent_id, created_at FROM folders ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer rows.Close()

	return scanFolders(rows)
}

// DeleteFolder clears folder references and removes the folder in one
// transaction, so documents are never left pointing at a missing folder.
func (r *SQLiteRepository) DeleteFolder(ctx context.Context, id string) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `UPDATE documents SET folder_id = NULL WHERE folder_id = ?`, id); err != nil {
			return fmt.Errorf("failed to clear folder references: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete folder: %w", err)
		}
		return nil
	})
}

func marshalPages(pages []string) (string, error) {
	if pages == nil {
		pages = []string{}
	}
	data, err := json.Marshal(pages)
	if err != nil {
		return "", fmt.Errorf("failed to marshal pages: %w", err)
	}
	return string(data), nil
}

func unmarshalPages(data string) ([]string, error) {
	var pages []string
	if err := json.Unmarshal([]byte(data), &pages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pages: %w", err)
	}
	return pages, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func requireOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", common.ErrDocumentNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocumentRow(s rowScanner) (*models.Document, error) {
	var doc models.Document
	var pages string
	var folderID sql.NullString

	err := s.Scan(&doc.ID, &doc.Title, &pages, &doc.Thumbnail, &doc.OCRText,
		&folderID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}

	doc.Pages, err = unmarshalPages(pages)
	if err != nil {
		return nil, err
	}
	if folderID.Valid {
		doc.FolderID = &folderID.String
	}
	return &doc, nil
}

func scanDocument(row *sql.Row) (*models.Document, error) {
	doc, err := scanDocumentRow(row)
	if err == sql.ErrNoRows {
		return nil, common.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}
	return doc, nil
}

func scanDocuments(rows *sql.Rows) ([]*models.Document, error) {
	var result []*models.Document
	for rows.Next() {
		doc, err := scanDocumentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		result = append(result, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanFolders(rows *sql.Rows) ([]*models.Folder, error) {
	var result []*models.Folder
	for rows.Next() {
		var f models.Folder
		var parentID sql.NullString
		if err := rows.Scan(&f.ID, &f.Name, &parentID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		if parentID.Valid {
			f.ParentID = &parentID.String
		}
		result = append(result, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
