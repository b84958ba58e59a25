// Package common defines shared constants and sentinel errors used across
// docvault layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Keystore errors.
	ErrKeyStoreUnavailable = errors.New("keystore unavailable")
	ErrKeyNotFound         = errors.New("key not found")
	ErrInvalidKeySize      = errors.New("invalid key size")
	ErrInvalidPassphrase   = errors.New("invalid passphrase")

	// Encryption errors. ErrEncryption covers malformed, truncated or
	// tampered ciphertext as well as underlying cipher failures. Its
	// message must never carry plaintext or key material.
	ErrEncryption = errors.New("encryption error")

	// Repository errors.
	ErrRepository       = errors.New("repository error")
	ErrDocumentNotFound = errors.New("document not found")
	ErrPageNotFound     = errors.New("page file not found")

	// Blob store errors.
	ErrBlobNotFound = errors.New("blob not found")
)
