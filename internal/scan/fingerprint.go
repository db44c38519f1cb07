package scan

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentFingerprint is the hex-encoded SHA-256 digest of a scan's raw
// bytes. Two inputs with equal fingerprints are the same document,
// regardless of file name or arrival time.
type ContentFingerprint string

// Fingerprint computes the content fingerprint for raw file bytes. The
// digest is deterministic across runs and platforms.
func Fingerprint(data []byte) ContentFingerprint {
	sum := sha256.Sum256(data)
	return ContentFingerprint(hex.EncodeToString(sum[:]))
}

// IsDuplicate reports whether fp already appears in the known set. The set
// is supplied by the persistence layer at call time; this package keeps no
// state of its own.
func IsDuplicate(fp ContentFingerprint, known map[string]struct{}) bool {
	_, ok := known[string(fp)]
	return ok
}
