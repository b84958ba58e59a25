package cryptox

import "bytes"

// Well-known plaintext file signatures. A buffer starting with one of these
// is certainly not a blob produced by Encrypt.
var magicPrefixes = [][]byte{
	{0xFF, 0xD8, 0xFF},                   // JPEG
	{0x89, 0x50, 0x4E, 0x47},             // PNG
	[]byte("GIF8"),                       // GIF
	[]byte("BM"),                         // BMP
	{0x49, 0x49, 0x2A, 0x00},             // TIFF, little-endian
	{0x4D, 0x4D, 0x00, 0x2A},             // TIFF, big-endian
	[]byte("RIFF"),                       // WebP/WAV containers
	[]byte("%PDF"),                       // PDF
	{0x50, 0x4B, 0x03, 0x04},             // ZIP (also docx/xlsx/apk)
	{0x1F, 0x8B},                         // GZIP
}

// IsLikelyEncrypted guesses whether data looks like ciphertext.
//
// Advisory only: this is a diagnostic heuristic, not a security boundary,
// and must never gate access-control decisions. It returns false for empty
// input, for buffers carrying a well-known plaintext signature, and for
// buffers with markedly low byte-value diversity; true otherwise.
func IsLikelyEncrypted(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	for _, magic := range magicPrefixes {
		if bytes.HasPrefix(data, magic) {
			return false
		}
	}

	var seen [256]bool
	distinct := 0
	for _, b := range data {
		if !seen[b] {
			seen[b] = true
			distinct++
		}
	}

	// Random ciphertext of length n is expected to cover most of the
	// min(n, 256) possible byte values. Far fewer means structured data.
	limit := len(data)
	if limit > 256 {
		limit = 256
	}
	return distinct >= limit/4
}
