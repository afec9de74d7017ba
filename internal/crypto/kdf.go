package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"spysignal/internal/domain"
)

// KDF selects how an X25519 shared secret becomes the AES-256-GCM key.
// The choice is system-wide; peers never negotiate it.
type KDF string

const (
	// KDFRaw uses the 32-byte shared secret directly, which is what
	// WebCrypto deriveKey(ECDH, AES-GCM-256) produces in browser clients.
	KDFRaw KDF = "raw"
	// KDFHKDFSHA256 expands the shared secret with HKDF-SHA256.
	KDFHKDFSHA256 KDF = "hkdf-sha256"
)

const hkdfInfo = "spysignal-aes-gcm-256"

// ParseKDF validates name. An empty name selects KDFRaw.
func ParseKDF(name string) (KDF, error) {
	switch KDF(name) {
	case "", KDFRaw:
		return KDFRaw, nil
	case KDFHKDFSHA256:
		return KDFHKDFSHA256, nil
	default:
		return "", fmt.Errorf("unknown key derivation %q", name)
	}
}

// DeriveKey turns a shared secret into an AEAD key. It is deterministic.
func DeriveKey(kdf KDF, secret [32]byte) (domain.SharedKey, error) {
	var key domain.SharedKey
	switch kdf {
	case "", KDFRaw:
		key = domain.SharedKey(secret)
	case KDFHKDFSHA256:
		r := hkdf.New(sha256.New, secret[:], nil, []byte(hkdfInfo))
		if _, err := io.ReadFull(r, key[:]); err != nil {
			return domain.SharedKey{}, err
		}
	default:
		return domain.SharedKey{}, fmt.Errorf("unknown key derivation %q", kdf)
	}
	return key, nil
}
