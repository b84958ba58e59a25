package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/dkozyrev/docvault/internal/vault/models"
)

func (a *App) Init(ctx context.Context) error {
	created, err := a.engine.EnsureKeyInitialized(ctx)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintln(a.out, "encryption key created")
	} else {
		fmt.Fprintln(a.out, "encryption key already present")
	}
	return nil
}

func (a *App) Add(ctx context.Context, title string, sources []string) error {
	doc, err := a.repo.CreateDocumentWithPages(ctx, title, sources)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s  %q  %d page(s)\n", doc.ID, doc.Title, len(doc.Pages))
	return nil
}

func (a *App) List(ctx context.Context, folderID string) error {
	docs, err := a.listDocs(ctx, folderID)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintln(a.out, "no documents")
		return nil
	}
	for _, doc := range docs {
		fmt.Fprintf(a.out, "%s  %s  %q  %d page(s)\n",
			doc.ID, doc.CreatedAt.Local().Format("2006-01-02 15:04"), doc.Title, len(doc.Pages))
	}
	return nil
}

func (a *App) Pages(ctx context.Context, docID string) error {
	doc, err := a.repo.GetDocument(ctx, docID)
	if err != nil {
		return err
	}
	paths, err := a.repo.DecryptAllPages(ctx, doc)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(a.out, p)
	}
	fmt.Fprintln(a.out, "decrypted files are shredded on the next run or 'cleanup'")
	return nil
}

func (a *App) Page(ctx context.Context, docID, page string) error {
	n, err := strconv.Atoi(page)
	if err != nil {
		return fmt.Errorf("page number %q: %w", page, err)
	}
	doc, err := a.repo.GetDocument(ctx, docID)
	if err != nil {
		return err
	}
	path, err := a.repo.DecryptPage(ctx, doc, n)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, path)
	return nil
}

func (a *App) Thumb(ctx context.Context, docID, outPath string) error {
	doc, err := a.repo.GetDocument(ctx, docID)
	if err != nil {
		return err
	}
	data, err := a.repo.DecryptThumbnail(ctx, doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	fmt.Fprintln(a.out, outPath)
	return nil
}

func (a *App) SetThumb(ctx context.Context, docID, imagePath string) error {
	doc, err := a.repo.GetDocument(ctx, docID)
	if err != nil {
		return err
	}
	return a.repo.SetThumbnail(ctx, doc, imagePath)
}

func (a *App) OCR(ctx context.Context, docID, text string) error {
	doc, err := a.repo.GetDocument(ctx, docID)
	if err != nil {
		return err
	}
	return a.repo.UpdateOCRText(ctx, doc, text)
}

func (a *App) Mkdir(ctx context.Context, name string) error {
	folder, err := a.repo.CreateFolder(ctx, name, nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s  %q\n", folder.ID, folder.Name)
	return nil
}

func (a *App) Folders(ctx context.Context) error {
	folders, err := a.repo.ListFolders(ctx)
	if err != nil {
		return err
	}
	if len(folders) == 0 {
		fmt.Fprintln(a.out, "no folders")
		return nil
	}
	for _, f := range folders {
		fmt.Fprintf(a.out, "%s  %q\n", f.ID, f.Name)
	}
	return nil
}

func (a *App) Move(ctx context.Context, docID, folderID string) error {
	doc, err := a.repo.GetDocument(ctx, docID)
	if err != nil {
		return err
	}
	var target *string
	if folderID != "-" {
		target = &folderID
	}
	return a.repo.MoveToFolder(ctx, doc, target)
}

func (a *App) Rmdir(ctx context.Context, folderID string) error {
	return a.repo.DeleteFolder(ctx, folderID)
}

func (a *App) Remove(ctx context.Context, docID string) error {
	return a.repo.DeleteDocument(ctx, docID)
}

func (a *App) Cleanup(ctx context.Context) error {
	return a.repo.CleanupTempFiles(ctx)
}

func (a *App) listDocs(ctx context.Context, folderID string) ([]*models.Document, error) {
	if folderID != "" {
		return a.repo.ListByFolder(ctx, folderID)
	}
	return a.repo.ListDocuments(ctx)
}
