// Package fingerprint computes content identities for source files.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// ChunkSize is the read buffer size used when hashing.
const ChunkSize = 64 * 1024

// File returns the SHA-256 fingerprint of the file at path.
// The file is streamed, so memory use is independent of file size.
func File(path string) (domain.Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return Reader(f)
}

// Reader returns the SHA-256 fingerprint of everything read from r.
func Reader(r io.Reader) (domain.Fingerprint, error) {
	h := sha256.New()
	buf := make([]byte, ChunkSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return domain.Fingerprint(hex.EncodeToString(h.Sum(nil))), nil
}
