// Package vault implements the encrypted document repository: it maps
// logical documents onto encrypted page and thumbnail blobs plus a relational
// metadata row, and owns the temp directory where plaintext is materialized
// for viewing.
//
// Plaintext exists on disk only under temp/, and only between an explicit
// decrypt call and the next sweep.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dkozyrev/docvault/internal/blob"
	"github.com/dkozyrev/docvault/internal/common"
	"github.com/dkozyrev/docvault/internal/cryptox"
	"github.com/dkozyrev/docvault/internal/filex"
	"github.com/dkozyrev/docvault/internal/logging"
	"github.com/dkozyrev/docvault/internal/shred"
	"github.com/dkozyrev/docvault/internal/vault/index"
	"github.com/dkozyrev/docvault/internal/vault/models"
)

// DefaultMaxParallel bounds page fan-out. Real documents have single-digit
// to low-tens page counts, so the cap is a no-op in practice; it only guards
// against pathological inputs exhausting file handles.
const DefaultMaxParallel = 16

// Dir names under the vault base directory.
const (
	DocumentsDir  = "documents"
	ThumbnailsDir = "thumbnails"
	TempDir       = "temp"
)

// Repository orchestrates encryption, blob storage and the metadata index.
type Repository struct {
	engine  *cryptox.Engine
	idx     index.Repository
	docs    blob.Store
	thumbs  blob.Store
	tempDir string

	maxParallel int
	log         logging.Logger
}

// Option tweaks Repository construction.
type Option func(*Repository)

// WithMaxParallel overrides the fan-out bound for multi-page operations.
func WithMaxParallel(n int) Option {
	return func(r *Repository) {
		if n > 0 {
			r.maxParallel = n
		}
	}
}

// NewRepository wires a repository from its collaborators. tempDir is
// created if missing; decrypted plaintext is only ever written there.
func NewRepository(engine *cryptox.Engine, idx index.Repository, docs, thumbs blob.Store,
	tempDir string, log logging.Logger, opts ...Option) (*Repository, error) {

	abs, err := filex.EnsureDir(tempDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrRepository, err)
	}

	r := &Repository{
		engine:      engine,
		idx:         idx,
		docs:        docs,
		thumbs:      thumbs,
		tempDir:     abs,
		maxParallel: DefaultMaxParallel,
		log:         log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// NewLocalRepository builds a repository with filesystem blob stores laid out
// under baseDir: documents/, thumbnails/ and temp/.
func NewLocalRepository(engine *cryptox.Engine, idx index.Repository, baseDir string,
	log logging.Logger, opts ...Option) (*Repository, error) {

	docs, err := blob.NewFSStore(filepath.Join(baseDir, DocumentsDir))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrRepository, err)
	}
	thumbs, err := blob.NewFSStore(filepath.Join(baseDir, ThumbnailsDir))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrRepository, err)
	}
	return NewRepository(engine, idx, docs, thumbs, filepath.Join(baseDir, TempDir), log, opts...)
}

// TempDirPath returns the directory holding transient decrypted files.
func (r *Repository) TempDirPath() string {
	return r.tempDir
}

// CreateDocumentWithPages encrypts the source images into page blobs and
// inserts one metadata row. All page encryptions run concurrently; the
// operation succeeds only when every page does. On any failure no document
// is persisted and already-written blobs are removed best-effort.
func (r *Repository) CreateDocumentWithPages(ctx context.Context, title string, sourcePaths []string) (*models.Document, error) {
	if len(sourcePaths) == 0 {
		return nil, fmt.Errorf("%w: document needs at least one page", common.ErrRepository)
	}

	names := make([]string, len(sourcePaths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxParallel)

	for i, src := range sourcePaths {
		g.Go(func() error {
			data, err := os.ReadFile(src)
			if err != nil {
				return fmt.Errorf("page %d: read source: %w", i, err)
			}

			encrypted, err := r.engine.Encrypt(gctx, data)
			if err != nil {
				return fmt.Errorf("page %d: %w", i, err)
			}

			name := uuid.NewString() + common.EncryptedExt
			if err := r.docs.Write(gctx, name, encrypted); err != nil {
				return fmt.Errorf("page %d: %w", i, err)
			}

			names[i] = name
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.removeBlobs(ctx, r.docs, names)
		return nil, fmt.Errorf("%w: create document: %w", common.ErrRepository, err)
	}

	now := time.Now().UTC()
	doc := &models.Document{
		ID:        uuid.NewString(),
		Title:     title,
		Pages:     names,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.idx.InsertDocument(ctx, r.storedCopyBestEffort(ctx, doc)); err != nil {
		r.removeBlobs(ctx, r.docs, names)
		return nil, fmt.Errorf("%w: index document %s: %w", common.ErrRepository, doc.ID, err)
	}

	return doc, nil
}

// DecryptAllPages materializes every page of doc into the temp directory and
// returns the plaintext paths in page order. Page decryptions run
// concurrently; one failure fails the whole call so callers never see a
// partial document. Temp files written by sibling tasks before the failure
// are left behind for the sweeper.
func (r *Repository) DecryptAllPages(ctx context.Context, doc *models.Document) ([]string, error) {
	paths := make([]string, len(doc.Pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxParallel)

	for i, name := range doc.Pages {
		g.Go(func() error {
			path, err := r.decryptPageToTemp(gctx, doc.ID, i, name)
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: document %s: %w", common.ErrRepository, doc.ID, err)
	}

	return paths, nil
}

// DecryptPage materializes a single page into the temp directory.
func (r *Repository) DecryptPage(ctx context.Context, doc *models.Document, page int) (string, error) {
	if page < 0 || page >= len(doc.Pages) {
		return "", fmt.Errorf("%w: document %s has no page %d", common.ErrRepository, doc.ID, page)
	}

	path, err := r.decryptPageToTemp(ctx, doc.ID, page, doc.Pages[page])
	if err != nil {
		return "", fmt.Errorf("%w: document %s: %w", common.ErrRepository, doc.ID, err)
	}
	return path, nil
}

func (r *Repository) decryptPageToTemp(ctx context.Context, docID string, page int, name string) (string, error) {
	ok, err := r.docs.Exists(ctx, name)
	if err != nil {
		return "", fmt.Errorf("page %d: %w", page, err)
	}
	if !ok {
		return "", fmt.Errorf("page %d: %w: %s", page, common.ErrPageNotFound, name)
	}

	encrypted, err := r.docs.Read(ctx, name)
	if err != nil {
		return "", fmt.Errorf("page %d: %w", page, err)
	}

	plaintext, err := r.engine.Decrypt(ctx, encrypted)
	if err != nil {
		if !cryptox.IsLikelyEncrypted(encrypted) {
			r.log.Warn(ctx, "stored page blob does not look encrypted", "doc_id", docID, "page", page)
		}
		return "", fmt.Errorf("page %d: %w", page, err)
	}

	// doc id + page + timestamp keeps repeated decrypts of the same page
	// from colliding
	tempName := fmt.Sprintf("%s_page_%d_%d.png", docID, page, time.Now().UnixNano())
	tempPath := filepath.Join(r.tempDir, tempName)

	if err := os.WriteFile(tempPath, plaintext, 0o600); err != nil {
		return "", fmt.Errorf("page %d: write temp file: %w", page, err)
	}
	return tempPath, nil
}

// SetThumbnail encrypts the image at imagePath as the document thumbnail,
// replacing (and removing) any previous one.
func (r *Repository) SetThumbnail(ctx context.Context, doc *models.Document, imagePath string) error {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("%w: read thumbnail source: %w", common.ErrRepository, err)
	}

	encrypted, err := r.engine.Encrypt(ctx, data)
	if err != nil {
		return fmt.Errorf("%w: document %s: %w", common.ErrRepository, doc.ID, err)
	}

	name := uuid.NewString() + common.EncryptedExt
	if err := r.thumbs.Write(ctx, name, encrypted); err != nil {
		return fmt.Errorf("%w: document %s: %w", common.ErrRepository, doc.ID, err)
	}

	previous := doc.Thumbnail
	doc.Thumbnail = name
	doc.UpdatedAt = time.Now().UTC()

	if err := r.idx.UpdateDocument(ctx, r.storedCopyBestEffort(ctx, doc)); err != nil {
		doc.Thumbnail = previous
		_ = r.thumbs.Delete(ctx, name)
		return fmt.Errorf("%w: index document %s: %w", common.ErrRepository, doc.ID, err)
	}

	if previous != "" {
		if err := r.thumbs.Delete(ctx, previous); err != nil {
			r.log.Warn(ctx, "failed to remove replaced thumbnail", "doc_id", doc.ID, "error", err)
		}
	}
	return nil
}

// DecryptThumbnail returns the decrypted thumbnail bytes of a document.
// Unlike pages, the plaintext never touches disk.
func (r *Repository) DecryptThumbnail(ctx context.Context, doc *models.Document) ([]byte, error) {
	if doc.Thumbnail == "" {
		return nil, fmt.Errorf("%w: document %s has no thumbnail", common.ErrRepository, doc.ID)
	}

	encrypted, err := r.thumbs.Read(ctx, doc.Thumbnail)
	if err != nil {
		return nil, fmt.Errorf("%w: document %s: %w", common.ErrRepository, doc.ID, err)
	}

	data, err := r.engine.Decrypt(ctx, encrypted)
	if err != nil {
		return nil, fmt.Errorf("%w: document %s: %w", common.ErrRepository, doc.ID, err)
	}
	return data, nil
}

// BatchDecryptThumbnails decrypts every document's thumbnail concurrently.
// Thumbnails are best-effort: a failed entry is nil in the result, logged,
// and never aborts the batch. The result is aligned with docs.
func (r *Repository) BatchDecryptThumbnails(ctx context.Context, docs []*models.Document) [][]byte {
	results := make([][]byte, len(docs))

	var wg sync.WaitGroup
	sem := make(chan struct{}, r.maxParallel)

	for i, doc := range docs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			data, err := r.DecryptThumbnail(ctx, doc)
			if err != nil {
				r.log.Warn(ctx, "thumbnail decrypt failed", "doc_id", doc.ID, "error", err)
				return
			}
			results[i] = data
		}()
	}
	wg.Wait()

	return results
}

// UpdateOCRText stores recognized text for the document. The text is
// encrypted before it reaches the index; here the text is the payload, so an
// encryption failure fails the call instead of being dropped.
func (r *Repository) UpdateOCRText(ctx context.Context, doc *models.Document, text string) error {
	previous := doc.OCRText
	doc.OCRText = text
	doc.UpdatedAt = time.Now().UTC()

	stored, err := r.storedCopy(ctx, doc)
	if err != nil {
		doc.OCRText = previous
		return fmt.Errorf("%w: document %s: %w", common.ErrRepository, doc.ID, err)
	}

	if err := r.idx.UpdateDocument(ctx, stored); err != nil {
		doc.OCRText = previous
		return fmt.Errorf("%w: index document %s: %w", common.ErrRepository, doc.ID, err)
	}
	return nil
}

// GetDocument loads a document from the index, decrypting its OCR text.
func (r *Repository) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	doc, err := r.idx.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrDocumentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: get document %s: %w", common.ErrRepository, id, err)
	}
	r.loadOCRText(ctx, doc)
	return doc, nil
}

// ListDocuments returns all documents, newest first, OCR text decrypted.
func (r *Repository) ListDocuments(ctx context.Context) ([]*models.Document, error) {
	docs, err := r.idx.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %w", common.ErrRepository, err)
	}
	for _, doc := range docs {
		r.loadOCRText(ctx, doc)
	}
	return docs, nil
}

// ListByFolder returns the documents filed under a folder, newest first.
func (r *Repository) ListByFolder(ctx context.Context, folderID string) ([]*models.Document, error) {
	docs, err := r.idx.ListByFolder(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("%w: list folder %s: %w", common.ErrRepository, folderID, err)
	}
	for _, doc := range docs {
		r.loadOCRText(ctx, doc)
	}
	return docs, nil
}

// DeleteDocument removes the index row and shreds the document's blobs.
// Blob removal is best-effort and logged; the index row removal is what
// makes the document gone.
func (r *Repository) DeleteDocument(ctx context.Context, id string) error {
	doc, err := r.idx.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrDocumentNotFound) {
			return err
		}
		return fmt.Errorf("%w: get document %s: %w", common.ErrRepository, id, err)
	}

	if err := r.idx.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("%w: delete document %s: %w", common.ErrRepository, id, err)
	}

	r.removeBlobs(ctx, r.docs, doc.Pages)
	if doc.Thumbnail != "" {
		r.removeBlobs(ctx, r.thumbs, []string{doc.Thumbnail})
	}
	return nil
}

// CleanupTempFiles shreds every file currently under temp/, whatever created
// it. Idempotent; an empty or missing directory is a no-op. Per-file shred
// failures are logged and skipped so cleanup never blocks its caller.
func (r *Repository) CleanupTempFiles(ctx context.Context) error {
	entries, err := os.ReadDir(r.tempDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: read temp dir: %w", common.ErrRepository, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(r.tempDir, entry.Name())
		if err := shred.File(path); err != nil {
			r.log.Warn(ctx, "temp file shred failed", "path", path, "error", err)
		}
	}
	return nil
}

// removeBlobs deletes blobs best-effort, shredding when the store exposes
// local paths. Used for rollback and document deletion; failures are logged,
// never propagated.
func (r *Repository) removeBlobs(ctx context.Context, store blob.Store, names []string) {
	type pather interface{ Path(string) string }

	local, hasPaths := store.(pather)

	for _, name := range names {
		if name == "" {
			continue
		}
		if hasPaths {
			if err := shred.File(local.Path(name)); err != nil {
				r.log.Warn(ctx, "blob shred failed", "blob", name, "error", err)
			}
			continue
		}
		if err := store.Delete(ctx, name); err != nil {
			r.log.Warn(ctx, "blob delete failed", "blob", name, "error", err)
		}
	}
}

// storedCopy returns a shallow copy of doc with OCR text replaced by its
// encrypted form, ready for the index.
func (r *Repository) storedCopy(ctx context.Context, doc *models.Document) (*models.Document, error) {
	stored := *doc
	if doc.OCRText == "" {
		return &stored, nil
	}

	encrypted, err := r.engine.EncryptString(ctx, doc.OCRText)
	if err != nil {
		return nil, err
	}
	stored.OCRText = encrypted
	return &stored, nil
}

// storedCopyBestEffort is storedCopy for metadata writes where the OCR text
// is incidental to the operation. Encryption failure downgrades to a logged
// warning with the text omitted rather than failing the write: the text is
// derived data and can be regenerated. UpdateOCRText, where the text is the
// payload, surfaces the error instead.
func (r *Repository) storedCopyBestEffort(ctx context.Context, doc *models.Document) *models.Document {
	stored, err := r.storedCopy(ctx, doc)
	if err != nil {
		r.log.Warn(ctx, "ocr text encrypt failed, omitting from index", "doc_id", doc.ID, "error", err)
		fallback := *doc
		fallback.OCRText = ""
		return &fallback
	}
	return stored
}

// loadOCRText decrypts the OCR text loaded from the index in place. A blob
// that fails to decrypt is surfaced as empty text and a warning; the rest of
// the document stays usable.
func (r *Repository) loadOCRText(ctx context.Context, doc *models.Document) {
	if doc.OCRText == "" {
		return
	}

	text, err := r.engine.DecryptString(ctx, doc.OCRText)
	if err != nil {
		r.log.Warn(ctx, "ocr text decrypt failed", "doc_id", doc.ID, "error", err)
		doc.OCRText = ""
		return
	}
	doc.OCRText = text
}
