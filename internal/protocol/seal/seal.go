package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"spysignal/internal/crypto"
	"spysignal/internal/domain"
)

// NonceSize is the AES-GCM nonce length carried in WireRecord.IV.
const NonceSize = 12

// nonceSource is swapped in tests that need a failing reader.
var nonceSource io.Reader = rand.Reader

// Seal encrypts payload under key with a fresh nonce.
func Seal(key domain.SharedKey, payload domain.Payload) (domain.SealedPayload, error) {
	if key.IsZero() {
		return domain.SealedPayload{}, fmt.Errorf("%w: no shared key", domain.ErrEncryptionPrecondition)
	}
	plaintext, err := Encode(payload)
	if err != nil {
		return domain.SealedPayload{}, err
	}
	aead, err := newAEAD(key)
	if err != nil {
		return domain.SealedPayload{}, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(nonceSource, nonce); err != nil {
		return domain.SealedPayload{}, fmt.Errorf("nonce: %w", err)
	}
	ct := aead.Seal(nil, nonce, plaintext, nil)
	return domain.SealedPayload{IV: crypto.B64(nonce), Ciphertext: crypto.B64(ct)}, nil
}

// Open decrypts a sealed payload. It fails closed.
func Open(key domain.SharedKey, iv, ciphertext string) (domain.Payload, error) {
	nonce, err := crypto.FromB64(iv)
	if err != nil {
		return domain.Payload{}, fmt.Errorf("%w: iv: %v", domain.ErrMalformedEncoding, err)
	}
	if len(nonce) != NonceSize {
		return domain.Payload{}, fmt.Errorf("%w: iv is %d bytes, want %d", domain.ErrMalformedEncoding, len(nonce), NonceSize)
	}
	ct, err := crypto.FromB64(ciphertext)
	if err != nil {
		return domain.Payload{}, fmt.Errorf("%w: ciphertext: %v", domain.ErrMalformedEncoding, err)
	}

	aead, err := newAEAD(key)
	if err != nil {
		return domain.Payload{}, err
	}
	plaintext, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return domain.Payload{}, domain.ErrAuthenticationFailure
	}
	return Decode(plaintext)
}

// Encode returns the canonical UTF-8 JSON encoding of p.
func Encode(p domain.Payload) ([]byte, error) {
	return p.MarshalJSON()
}

// Decode parses a canonical payload encoding.
func Decode(b []byte) (domain.Payload, error) {
	var p domain.Payload
	if err := json.Unmarshal(b, &p); err != nil {
		if errors.Is(err, domain.ErrMalformedPayload) {
			return domain.Payload{}, err
		}
		return domain.Payload{}, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	return p, nil
}

func newAEAD(key domain.SharedKey) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key.Slice())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
