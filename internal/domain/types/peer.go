package types

// PeerIdentity is a user record as published by the relay directory.
//
// PublicKey holds the peer's X25519 public key serialized as a JSON Web Key.
type PeerIdentity struct {
	ID        UserID   `json:"id"`
	Username  Username `json:"username"`
	PublicKey string   `json:"public_key"`
}
