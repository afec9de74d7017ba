package crypto

import (
	"crypto/rand"

	"golang.org/x/crypto/curve25519"

	"spysignal/internal/domain"
)

// XCrypto implements Provider with golang.org/x/crypto/curve25519.
type XCrypto struct{}

// Name implements Provider.
func (XCrypto) Name() string { return ProviderXCrypto }

// GenerateX25519 returns a fresh Curve25519 key pair.
// The private key is clamped per RFC 7748.
func (p XCrypto) GenerateX25519() (priv domain.X25519Private, pub domain.X25519Public, err error) {
	if _, err = rand.Read(priv[:]); err != nil {
		return
	}
	clamp(&priv)
	pub, err = p.PublicKey(priv)
	return
}

// PublicKey implements Provider.
func (XCrypto) PublicKey(priv domain.X25519Private) (pub domain.X25519Public, err error) {
	pb, err := curve25519.X25519(priv.Slice(), curve25519.Basepoint)
	if err != nil {
		return pub, err
	}
	copy(pub[:], pb)
	return pub, nil
}

// X25519 computes X25519 Diffie–Hellman.
func (XCrypto) X25519(priv domain.X25519Private, pub domain.X25519Public) (out [32]byte, err error) {
	secret, err := curve25519.X25519(priv.Slice(), pub.Slice())
	if err != nil {
		return out, errLowOrderPoint
	}
	copy(out[:], secret)
	return out, nil
}

var _ Provider = XCrypto{}
