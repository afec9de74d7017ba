// Package seal encrypts and decrypts chat payloads under a per-peer key.
//
// The AEAD is AES-256-GCM with a fresh random 12-byte nonce per message and
// no additional authenticated data. Payloads are serialized with their
// canonical JSON encoding before encryption. Nonce and ciphertext (tag
// appended) travel as standard base64 strings.
//
// # Errors
//
// Open distinguishes three failure kinds for diagnostics:
// domain.ErrMalformedEncoding, domain.ErrAuthenticationFailure and
// domain.ErrMalformedPayload. No plaintext is returned on any failure.
package seal
