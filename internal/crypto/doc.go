// Package crypto exposes the minimal primitives used by spysignal.
//
// Contents
//
//   - A Provider abstraction over X25519 with two backends: XCrypto
//     (golang.org/x/crypto/curve25519) and Circl (cloudflare/circl).
//   - Derivation of the per-peer AES-256-GCM key from an X25519 shared
//     secret (DeriveKey), either raw or through HKDF-SHA256.
//   - JSON Web Key encoding of X25519 keys (OKP / X25519) as exchanged with
//     the relay directory and browser clients.
//   - Short public-key fingerprints for display and cache keys (Fingerprint).
//
// # Notes
//
// All functions return fixed-size array types defined in internal/domain to
// avoid accidental reallocations. Callers should treat returned secrets as
// sensitive and wipe them with memzero when practical.
package crypto
