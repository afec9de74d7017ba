package types

// X25519Public is a Curve25519 public key.
type X25519Public [32]byte

// Slice returns the key as a []byte.
func (p X25519Public) Slice() []byte { return p[:] }

// X25519Private is a Curve25519 private key.
type X25519Private [32]byte

// Slice returns the key as a []byte.
func (k X25519Private) Slice() []byte { return k[:] }

// SharedKey is the 256-bit AES-GCM key agreed with a single peer.
type SharedKey [32]byte

// Slice returns the key as a []byte.
func (k SharedKey) Slice() []byte { return k[:] }

// IsZero reports whether the key was never set.
func (k SharedKey) IsZero() bool { return k == SharedKey{} }
