package index

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/dkozyrev/docvault/internal/common"
	"github.com/dkozyrev/docvault/internal/vault/models"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testDocument(id string) *models.Document {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.Document{
		ID:        id,
		Title:     "scan " + id,
		Pages:     []string{id + "-p0.enc", id + "-p1.enc"},
		Thumbnail: id + "-thumb.enc",
		OCRText:   "b64-encrypted-ocr",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSQLiteRepository_InsertGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	doc := testDocument("d1")
	require.NoError(t, r.InsertDocument(ctx, doc))

	got, err := r.GetDocument(ctx, "d1")
	require.NoError(t, err)

	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, doc.Pages, got.Pages, "page order must survive the round trip")
	assert.Equal(t, doc.Thumbnail, got.Thumbnail)
	assert.Equal(t, doc.OCRText, got.OCRText)
	assert.Nil(t, got.FolderID)
	assert.WithinDuration(t, doc.CreatedAt, got.CreatedAt, time.Second)
}

func TestSQLiteRepository_GetMissing(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	_, err := r.GetDocument(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrDocumentNotFound)
}

func TestSQLiteRepository_ListNewestFirst(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	older := testDocument("older")
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	newer := testDocument("newer")

	require.NoError(t, r.InsertDocument(ctx, older))
	require.NoError(t, r.InsertDocument(ctx, newer))

	docs, err := r.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "newer", docs[0].ID)
	assert.Equal(t, "older", docs[1].ID)
}

func TestSQLiteRepository_Update(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	doc := testDocument("d1")
	require.NoError(t, r.InsertDocument(ctx, doc))

	doc.Title = "renamed"
	doc.Pages = append(doc.Pages, "d1-p2.enc")
	doc.OCRText = "new-encrypted-ocr"
	doc.UpdatedAt = doc.UpdatedAt.Add(time.Minute)
	require.NoError(t, r.UpdateDocument(ctx, doc))

	got, err := r.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Len(t, got.Pages, 3)
	assert.Equal(t, "new-encrypted-ocr", got.OCRText)
}

func TestSQLiteRepository_UpdateMissing(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	err := r.UpdateDocument(context.Background(), testDocument("ghost"))
	assert.ErrorIs(t, err, common.ErrDocumentNotFound)
}

func TestSQLiteRepository_Delete(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.InsertDocument(ctx, testDocument("d1")))
	require.NoError(t, r.DeleteDocument(ctx, "d1"))

	_, err := r.GetDocument(ctx, "d1")
	assert.ErrorIs(t, err, common.ErrDocumentNotFound)

	assert.ErrorIs(t, r.DeleteDocument(ctx, "d1"), common.ErrDocumentNotFound)
}

func TestSQLiteRepository_Folders(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	folder := &models.Folder{ID: "f1", Name: "taxes", CreatedAt: time.Now().UTC()}
	require.NoError(t, r.InsertFolder(ctx, folder))

	child := &models.Folder{ID: "f2", Name: "2026", ParentID: &folder.ID, CreatedAt: time.Now().UTC()}
	require.NoError(t, r.InsertFolder(ctx, child))

	folders, err := r.ListFolders(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 2)

	doc := testDocument("d1")
	doc.FolderID = &folder.ID
	require.NoError(t, r.InsertDocument(ctx, doc))

	filed, err := r.ListByFolder(ctx, "f1")
	require.NoError(t, err)
	require.Len(t, filed, 1)
	require.NotNil(t, filed[0].FolderID)
	assert.Equal(t, "f1", *filed[0].FolderID)
}

func TestSQLiteRepository_DeleteFolderClearsReferences(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	folder := &models.Folder{ID: "f1", Name: "taxes", CreatedAt: time.Now().UTC()}
	require.NoError(t, r.InsertFolder(ctx, folder))

	doc := testDocument("d1")
	doc.FolderID = &folder.ID
	require.NoError(t, r.InsertDocument(ctx, doc))

	require.NoError(t, r.DeleteFolder(ctx, "f1"))

	got, err := r.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Nil(t, got.FolderID, "document must be unfiled when its folder goes away")

	folders, err := r.ListFolders(ctx)
	require.NoError(t, err)
	assert.Empty(t, folders)
}

func TestSQLiteRepository_EmptyPagesRoundTrip(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	doc := testDocument("d1")
	doc.Pages = nil
	require.NoError(t, r.InsertDocument(ctx, doc))

	got, err := r.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Empty(t, got.Pages)
}
