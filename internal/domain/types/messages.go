package types

import "time"

// SealedPayload is the output of the cipher engine: a base64 nonce and a
// base64 ciphertext with the GCM tag appended.
type SealedPayload struct {
	IV         string `json:"iv"`
	Ciphertext string `json:"ciphertext"`
}

// WireRecord is what crosses the transport boundary. It carries no
// plaintext and no key material. ID and CreatedAt are assigned by the relay.
type WireRecord struct {
	ID         int64     `json:"id,omitempty"`
	FromID     UserID    `json:"from_id"`
	ToID       UserID    `json:"to_id"`
	IV         string    `json:"iv"`
	Ciphertext string    `json:"ciphertext"`
	CreatedAt  time.Time `json:"created_at,omitzero"`
}

// Sealed returns the cipher fields of the record.
func (r WireRecord) Sealed() SealedPayload {
	return SealedPayload{IV: r.IV, Ciphertext: r.Ciphertext}
}

// DecryptedMessage pairs a wire record with its plaintext.
//
// Readable is false when the record failed to decrypt; Payload is then the
// zero value and must not be rendered.
type DecryptedMessage struct {
	Record   WireRecord
	Payload  Payload
	Readable bool
}
