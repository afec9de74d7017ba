package crypto

import (
	"crypto/rand"

	"github.com/cloudflare/circl/dh/x25519"

	"spysignal/internal/domain"
)

// Circl implements Provider with github.com/cloudflare/circl/dh/x25519.
type Circl struct{}

// Name implements Provider.
func (Circl) Name() string { return ProviderCircl }

// GenerateX25519 implements Provider.
func (Circl) GenerateX25519() (priv domain.X25519Private, pub domain.X25519Public, err error) {
	if _, err = rand.Read(priv[:]); err != nil {
		return
	}
	clamp(&priv)
	secret := x25519.Key(priv)
	var public x25519.Key
	x25519.KeyGen(&public, &secret)
	return priv, domain.X25519Public(public), nil
}

// PublicKey implements Provider.
func (Circl) PublicKey(priv domain.X25519Private) (domain.X25519Public, error) {
	secret := x25519.Key(priv)
	var public x25519.Key
	x25519.KeyGen(&public, &secret)
	return domain.X25519Public(public), nil
}

// X25519 implements Provider.
func (Circl) X25519(priv domain.X25519Private, pub domain.X25519Public) ([32]byte, error) {
	secret, public := x25519.Key(priv), x25519.Key(pub)
	var shared x25519.Key
	if !x25519.Shared(&shared, &secret, &public) {
		return [32]byte{}, errLowOrderPoint
	}
	return [32]byte(shared), nil
}

var _ Provider = Circl{}
