package common

const (
	// KeySize is the length in bytes of the symmetric data key (AES-256).
	KeySize = 32

	// EncryptedExt is the file extension used for encrypted blobs on disk.
	EncryptedExt = ".enc"
)
