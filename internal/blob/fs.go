package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dkozyrev/docvault/internal/common"
	"github.com/dkozyrev/docvault/internal/filex"
)

// FSStore keeps blobs as individual 0600 files under a root directory.
// Writes go through a temp file plus rename so readers never observe a
// partially written blob.
type FSStore struct {
	root string
}

func NewFSStore(root string) (*FSStore, error) {
	abs, err := filex.EnsureDir(root)
	if err != nil {
		return nil, err
	}
	return &FSStore{root: abs}, nil
}

// Path returns the absolute filesystem path of a blob name. Exposed because
// repository metadata records blob locations for diagnostics.
func (s *FSStore) Path(name string) string {
	return filepath.Join(s.root, name)
}

func (s *FSStore) Write(ctx context.Context, name string, data []byte) error {
	dst := s.Path(name)

	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp blob: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write blob %s: %w", name, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod blob %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close blob %s: %w", name, err)
	}

	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename blob %s: %w", name, err)
	}
	return nil
}

func (s *FSStore) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", common.ErrBlobNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", name, err)
	}
	return data, nil
}

func (s *FSStore) Exists(ctx context.Context, name string) (bool, error) {
	return filex.Exists(s.Path(name))
}

func (s *FSStore) Delete(ctx context.Context, name string) error {
	err := os.Remove(s.Path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %s: %w", name, err)
	}
	return nil
}
