package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"spysignal/internal/util/memzero"
)

// Envelope format versions. v1 derives the wrapping key with scrypt, v2 with
// argon2id. New envelopes are always v2; v1 is still opened.
const (
	envelopeScrypt   = 1
	envelopeArgon2id = 2
)

var errWrongPassphrase = errors.New("wrong passphrase or corrupted identity")

// envelope is the on-disk JSON structure wrapping an identity record.
type envelope struct {
	V    int    `json:"v"`
	Salt []byte `json:"salt"`

	ScryptN int `json:"scrypt_N,omitempty"`
	ScryptR int `json:"scrypt_r,omitempty"`
	ScryptP int `json:"scrypt_p,omitempty"`

	ArgonTime    uint32 `json:"argon2_t,omitempty"`
	ArgonMemKB   uint32 `json:"argon2_m,omitempty"`
	ArgonThreads uint8  `json:"argon2_p,omitempty"`

	Cipher []byte `json:"cipher"`
}

// kdfParams are the tunables used when sealing new envelopes.
type kdfParams struct {
	Version      int
	ScryptN      int
	ScryptR      int
	ScryptP      int
	ArgonTime    uint32
	ArgonMemKB   uint32
	ArgonThreads uint8
}

func defaultKDFParams() kdfParams {
	return kdfParams{
		Version:      envelopeArgon2id,
		ArgonTime:    2,
		ArgonMemKB:   64 * 1024,
		ArgonThreads: 1,
	}
}

func (e *envelope) key(passphrase string) ([]byte, error) {
	switch e.V {
	case envelopeScrypt:
		return scrypt.Key([]byte(passphrase), e.Salt, e.ScryptN, e.ScryptR, e.ScryptP, chacha20poly1305.KeySize)
	case envelopeArgon2id:
		if e.ArgonTime == 0 || e.ArgonMemKB == 0 || e.ArgonThreads == 0 {
			return nil, errors.New("envelope: missing argon2id parameters")
		}
		return argon2.IDKey([]byte(passphrase), e.Salt, e.ArgonTime, e.ArgonMemKB, e.ArgonThreads, chacha20poly1305.KeySize), nil
	default:
		return nil, fmt.Errorf("unsupported envelope version %d", e.V)
	}
}

// seal derives a key from passphrase and wraps raw into a JSON envelope.
// The nonce is zero; every envelope gets a fresh salt and so a fresh key.
func seal(passphrase string, raw []byte, p kdfParams) ([]byte, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	env := envelope{V: p.Version, Salt: salt[:]}
	switch p.Version {
	case envelopeScrypt:
		env.ScryptN, env.ScryptR, env.ScryptP = p.ScryptN, p.ScryptR, p.ScryptP
	case envelopeArgon2id:
		env.ArgonTime, env.ArgonMemKB, env.ArgonThreads = p.ArgonTime, p.ArgonMemKB, p.ArgonThreads
	}

	key, err := env.key(passphrase)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	env.Cipher = aead.Seal(nil, nonce[:], raw, env.Salt)
	return json.Marshal(env)
}

// open unwraps an envelope produced by seal.
func open(passphrase string, b []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, err
	}
	key, err := env.key(passphrase)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	pt, err := aead.Open(nil, nonce[:], env.Cipher, env.Salt)
	if err != nil {
		return nil, errWrongPassphrase
	}
	return pt, nil
}

// isEnvelope reports whether b looks like a passphrase envelope rather than
// a plaintext identity record.
func isEnvelope(b []byte) bool {
	var probe struct {
		Cipher []byte `json:"cipher"`
	}
	return json.Unmarshal(b, &probe) == nil && probe.Cipher != nil
}
