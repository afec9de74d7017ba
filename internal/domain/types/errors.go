package types

import "errors"

var (
	// ErrIdentityUnavailable is returned when the local keypair cannot be
	// read, decoded or persisted. It is fatal to the session.
	ErrIdentityUnavailable = errors.New("identity unavailable")

	// ErrInvalidPeerKey is returned when a peer's public key is malformed,
	// on the wrong curve, or a low-order point.
	ErrInvalidPeerKey = errors.New("invalid peer key")

	// ErrMalformedEncoding is returned when the iv or ciphertext of a wire
	// record is not valid base64 or has the wrong length.
	ErrMalformedEncoding = errors.New("malformed encoding")

	// ErrAuthenticationFailure is returned when the AEAD tag does not verify.
	ErrAuthenticationFailure = errors.New("authentication failure")

	// ErrMalformedPayload is returned when decrypted bytes are not a valid
	// payload encoding.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrEncryptionPrecondition is returned when encryption is attempted
	// without a usable key.
	ErrEncryptionPrecondition = errors.New("encryption precondition violated")
)

// IsDecryptFailure reports whether err is one of the soft failures a
// receiver recovers from by treating the message as unreadable.
func IsDecryptFailure(err error) bool {
	return errors.Is(err, ErrMalformedEncoding) ||
		errors.Is(err, ErrAuthenticationFailure) ||
		errors.Is(err, ErrMalformedPayload)
}
