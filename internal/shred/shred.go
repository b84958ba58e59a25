// Package shred removes files so their former contents are harder to recover
// from storage remnants: contents are overwritten with zeros and synced
// before the file is unlinked.
//
// Shredding is best-effort by contract. Callers log failures and move on;
// a shred error must never abort the workflow that triggered the cleanup.
package shred

import (
	"fmt"
	"os"
)

const overwriteChunk = 64 * 1024

var zeros = make([]byte, overwriteChunk)

// File overwrites path with zeros, syncs, and removes it. A missing file is
// not an error (the goal state is already reached). When overwriting fails a
// plain remove is still attempted, and the overwrite error is reported so
// the caller can log it.
func File(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("shred %s: is a directory", path)
	}

	if err := overwrite(path, info.Size()); err != nil {
		// overwrite failed; still try to get rid of the file
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			return fmt.Errorf("overwrite %s: %w (remove also failed: %v)", path, err, rmErr)
		}
		return fmt.Errorf("overwrite %s (file removed unshredded): %w", path, err)
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// Files shreds every path independently. One failure never stops the rest;
// the returned map carries a nil or non-nil error per path.
func Files(paths []string) map[string]error {
	results := make(map[string]error, len(paths))
	for _, p := range paths {
		results[p] = File(p)
	}
	return results
}

func overwrite(path string, size int64) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	for written := int64(0); written < size; {
		chunk := size - written
		if chunk > overwriteChunk {
			chunk = overwriteChunk
		}
		n, err := f.Write(zeros[:chunk])
		if err != nil {
			return err
		}
		written += int64(n)
	}

	return f.Sync()
}
