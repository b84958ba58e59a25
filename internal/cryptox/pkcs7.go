package cryptox

import (
	"bytes"
	"fmt"

	"github.com/dkozyrev/docvault/internal/common"
)

// pkcs7Pad appends PKCS#7 padding up to the next multiple of blockSize.
// Input of an exact block length gets a full extra padding block, so the
// padding is always removable.
func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

// pkcs7Unpad strips and validates PKCS#7 padding. Invalid padding means the
// ciphertext was tampered with or decrypted under the wrong key; the error
// deliberately carries no plaintext bytes.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: invalid padded length", common.ErrEncryption)
	}

	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("%w: invalid padding", common.ErrEncryption)
	}

	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: invalid padding", common.ErrEncryption)
		}
	}

	return data[:len(data)-n], nil
}
