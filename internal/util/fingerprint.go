package util

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
)

// Fingerprint computes a stable hash identifying a violation across runs.
// Source offsets are left out so unrelated edits above a violation keep
// its fingerprint.
func Fingerprint(detectorID, file, contract, subject string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s", detectorID, filepath.ToSlash(file), contract, subject)
	return hex.EncodeToString(h.Sum(nil))
}
