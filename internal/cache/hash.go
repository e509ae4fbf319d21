package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Fingerprint returns the hex SHA256 digest of the build script's raw bytes.
// Only content is hashed; timestamps and permissions never affect the result.
func Fingerprint(buildScript string) (string, error) {
	f, err := os.Open(buildScript)
	if err != nil {
		return "", fmt.Errorf("failed to open build script: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash build script: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes returns the fingerprint of an in-memory script
func HashBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
