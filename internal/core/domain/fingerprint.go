package domain

// FingerprintLength is the length of a hex-encoded SHA-256 digest.
const FingerprintLength = 64

// Fingerprint is the lowercase hex SHA-256 digest of a file's bytes.
// Two files with identical bytes share a fingerprint regardless of name
// or location.
type Fingerprint string

// IsValid reports whether f is a 64-character lowercase hex string.
func (f Fingerprint) IsValid() bool {
	if len(f) != FingerprintLength {
		return false
	}
	for i := 0; i < len(f); i++ {
		c := f[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Short returns the first 8 characters, for log lines.
func (f Fingerprint) Short() string {
	if len(f) <= 8 {
		return string(f)
	}
	return string(f[:8])
}

// String returns the string representation.
func (f Fingerprint) String() string {
	return string(f)
}
