package cli

import (
	"context"
	"fmt"
	"io"
)

// commands is the surface the dispatcher needs. App satisfies it; tests can
// provide a lightweight stub.
type commands interface {
	Init(ctx context.Context) error
	Add(ctx context.Context, title string, sources []string) error
	List(ctx context.Context, folderID string) error
	Pages(ctx context.Context, docID string) error
	Page(ctx context.Context, docID, page string) error
	Thumb(ctx context.Context, docID, outPath string) error
	SetThumb(ctx context.Context, docID, imagePath string) error
	OCR(ctx context.Context, docID, text string) error
	Mkdir(ctx context.Context, name string) error
	Folders(ctx context.Context) error
	Move(ctx context.Context, docID, folderID string) error
	Rmdir(ctx context.Context, folderID string) error
	Remove(ctx context.Context, docID string) error
	Cleanup(ctx context.Context) error
}

const usage = `Usage: docvault [flags] <command> [args]

Commands:
  init                      create the encryption key if missing
  add <title> <image>...    encrypt images as a new document
  ls [folder-id]            list documents, newest first
  pages <doc-id>            decrypt all pages into the temp dir
  page <doc-id> <n>         decrypt a single page
  thumb <doc-id> <out>      write the decrypted thumbnail to a file
  setthumb <doc-id> <image> set the document thumbnail
  ocr <doc-id> <text>       attach recognized text
  mkdir <name>              create a folder
  folders                   list folders
  mv <doc-id> <folder-id|-> file a document (- to unfile)
  rmdir <folder-id>         delete a folder, keeping its documents
  rm <doc-id>               delete a document and shred its blobs
  cleanup                   shred decrypted temp files
`

func (a *App) dispatch(ctx context.Context, args []string) error {
	return dispatch(ctx, a, args, a.out)
}

func dispatch(ctx context.Context, c commands, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return nil
	}

	cmd, rest := args[0], args[1:]

	need := func(n int) error {
		if len(rest) < n {
			return fmt.Errorf("%s: missing arguments\n\n%s", cmd, usage)
		}
		return nil
	}

	switch cmd {
	case "help":
		fmt.Fprint(out, usage)
		return nil
	case "init":
		return c.Init(ctx)
	case "add":
		if err := need(2); err != nil {
			return err
		}
		return c.Add(ctx, rest[0], rest[1:])
	case "ls":
		folderID := ""
		if len(rest) > 0 {
			folderID = rest[0]
		}
		return c.List(ctx, folderID)
	case "pages":
		if err := need(1); err != nil {
			return err
		}
		return c.Pages(ctx, rest[0])
	case "page":
		if err := need(2); err != nil {
			return err
		}
		return c.Page(ctx, rest[0], rest[1])
	case "thumb":
		if err := need(2); err != nil {
			return err
		}
		return c.Thumb(ctx, rest[0], rest[1])
	case "setthumb":
		if err := need(2); err != nil {
			return err
		}
		return c.SetThumb(ctx, rest[0], rest[1])
	case "ocr":
		if err := need(2); err != nil {
			return err
		}
		return c.OCR(ctx, rest[0], rest[1])
	case "mkdir":
		if err := need(1); err != nil {
			return err
		}
		return c.Mkdir(ctx, rest[0])
	case "folders":
		return c.Folders(ctx)
	case "mv":
		if err := need(2); err != nil {
			return err
		}
		return c.Move(ctx, rest[0], rest[1])
	case "rmdir":
		if err := need(1); err != nil {
			return err
		}
		return c.Rmdir(ctx, rest[0])
	case "rm":
		if err := need(1); err != nil {
			return err
		}
		return c.Remove(ctx, rest[0])
	case "cleanup":
		return c.Cleanup(ctx)
	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}
}
