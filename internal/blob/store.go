// Package blob abstracts storage of encrypted blobs. The vault only ever
// hands ciphertext to a Store; plaintext never crosses this boundary.
package blob

import "context"

// Store is a flat namespace of named encrypted blobs.
type Store interface {
	// Write stores data under name, replacing any previous content.
	Write(ctx context.Context, name string, data []byte) error

	// Read returns the blob content or common.ErrBlobNotFound.
	Read(ctx context.Context, name string) ([]byte, error)

	// Exists reports whether a blob exists without reading it.
	Exists(ctx context.Context, name string) (bool, error)

	// Delete removes the blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
}
