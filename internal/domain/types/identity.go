package types

// Keypair holds the local long-term X25519 identity.
//
// It is created once per local identity and never rotated.
type Keypair struct {
	Public  X25519Public
	Private X25519Private
}
