package snapshot

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// HashFile computes xxHash64 of file contents, returns hex string.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes computes xxHash64 of bytes, returns hex string.
func HashBytes(data []byte) string {
	h := xxhash.Sum64(data)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], h)
	return hex.EncodeToString(buf[:])
}

// dirDigest computes the merkle digest of a directory from its children's
// (name, digest) pairs in traversal order. Fields are NUL-delimited so the
// encoding is unambiguous.
func dirDigest(children []Snapshot) string {
	h := xxhash.New()
	for _, c := range children {
		_, _ = h.WriteString(c.Name())
		_, _ = h.Write([]byte{0})
		_, _ = h.WriteString(c.Digest())
		_, _ = h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
