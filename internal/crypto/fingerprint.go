package crypto

import (
	"crypto/sha256"

	"github.com/mr-tron/base58"

	"spysignal/internal/domain"
)

// Fingerprint returns a short base58 fingerprint of a public key.
//
// It hashes with SHA-256 and truncates to 16 bytes.
func Fingerprint(pub domain.X25519Public) domain.Fingerprint {
	sum := sha256.Sum256(pub[:])
	return domain.Fingerprint(base58.Encode(sum[:16]))
}
