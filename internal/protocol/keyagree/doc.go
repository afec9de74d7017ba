// Package keyagree implements the static X25519 key agreement used to derive
// one AES-256-GCM key per peer without any server-side key exchange.
//
// # Overview
//
// Every user publishes a long-term X25519 public key (as a JWK) in the relay
// directory. Given a peer record, the Engine:
//  1. Looks up the cache by (peer id, fingerprint of the peer key).
//  2. On a miss, parses the peer JWK and rejects anything that is not a
//     well-formed X25519 key.
//  3. Runs X25519 between the local private key and the peer key.
//  4. Runs the configured KDF to obtain the 256-bit AEAD key and caches it.
//
// # Determinism
//
// No randomness is involved in derivation: for a fixed local keypair and
// peer key the derived key is bit-identical across calls, cache resets and
// process restarts. The cache is pure memoization.
//
// # Cache keying
//
// Entries are keyed by peer id and key fingerprint, so a peer who
// re-registers with a new key gets a fresh derivation instead of a stale
// cached key. Entries are never evicted; the peer set of a session is small.
//
// # Concurrency
//
// The cache is guarded by an RWMutex. Two concurrent misses for the same
// peer may both derive; they produce the same key and the second insert is
// a no-op in effect.
package keyagree
