package crypto

import (
	"errors"
	"fmt"

	"spysignal/internal/domain"
)

const (
	ProviderXCrypto = "xcrypto"
	ProviderCircl   = "circl"
)

// errLowOrderPoint is returned by providers when the shared secret is all
// zeros, which happens only for small-order peer points.
var errLowOrderPoint = errors.New("x25519: low order point")

// Provider is the X25519 capability the key agreement engine is built on.
type Provider interface {
	Name() string
	// GenerateX25519 returns a fresh, clamped key pair.
	GenerateX25519() (domain.X25519Private, domain.X25519Public, error)
	// PublicKey recomputes the public half of priv.
	PublicKey(priv domain.X25519Private) (domain.X25519Public, error)
	// X25519 computes the Diffie-Hellman shared secret.
	X25519(priv domain.X25519Private, pub domain.X25519Public) ([32]byte, error)
}

// ProviderByName returns the provider registered under name. An empty name
// selects the default XCrypto provider.
func ProviderByName(name string) (Provider, error) {
	switch name {
	case "", ProviderXCrypto:
		return XCrypto{}, nil
	case ProviderCircl:
		return Circl{}, nil
	default:
		return nil, fmt.Errorf("unknown crypto provider %q", name)
	}
}

func clamp(k *domain.X25519Private) {
	kb := k[:]
	kb[0] &= 248
	kb[31] &= 127
	kb[31] |= 64
}
