package crypto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"spysignal/internal/domain"
)

const (
	jwkKeyType = "OKP"
	jwkCurve   = "X25519"
)

var errNotX25519 = errors.New("jwk: not an X25519 key")

// JWK is an Octet Key Pair JSON Web Key (RFC 8037) for X25519.
// The field set matches what WebCrypto exportKey("jwk") emits.
type JWK struct {
	Crv    string   `json:"crv"`
	D      string   `json:"d,omitempty"`
	Ext    *bool    `json:"ext,omitempty"`
	KeyOps []string `json:"key_ops,omitempty"`
	Kty    string   `json:"kty"`
	X      string   `json:"x"`
}

// PublicJWK returns the public JWK for pub.
func PublicJWK(pub domain.X25519Public) JWK {
	ext := true
	return JWK{Crv: jwkCurve, Ext: &ext, Kty: jwkKeyType, X: b64url(pub[:])}
}

// PrivateJWK returns the private JWK for kp.
func PrivateJWK(kp domain.Keypair) JWK {
	ext := true
	return JWK{
		Crv:    jwkCurve,
		D:      b64url(kp.Private[:]),
		Ext:    &ext,
		KeyOps: []string{"deriveKey", "deriveBits"},
		Kty:    jwkKeyType,
		X:      b64url(kp.Public[:]),
	}
}

// EncodePublicJWK serializes pub as a JWK JSON string, the form stored in
// the relay directory.
func EncodePublicJWK(pub domain.X25519Public) string {
	b, _ := json.Marshal(PublicJWK(pub))
	return string(b)
}

// ParsePublicJWK parses a serialized public JWK. Any malformed, non-OKP or
// non-X25519 key fails with domain.ErrInvalidPeerKey.
func ParsePublicJWK(s string) (domain.X25519Public, error) {
	var k JWK
	if err := json.Unmarshal([]byte(s), &k); err != nil {
		return domain.X25519Public{}, fmt.Errorf("%w: %v", domain.ErrInvalidPeerKey, err)
	}
	pub, err := k.Public()
	if err != nil {
		return domain.X25519Public{}, fmt.Errorf("%w: %v", domain.ErrInvalidPeerKey, err)
	}
	return pub, nil
}

// Public decodes the x coordinate.
func (k JWK) Public() (domain.X25519Public, error) {
	var pub domain.X25519Public
	if k.Kty != jwkKeyType || k.Crv != jwkCurve {
		return pub, errNotX25519
	}
	b, err := fromB64url(k.X)
	if err != nil {
		return pub, fmt.Errorf("jwk x: %w", err)
	}
	if len(b) != len(pub) {
		return pub, fmt.Errorf("jwk x: want %d bytes, got %d", len(pub), len(b))
	}
	copy(pub[:], b)
	return pub, nil
}

// Keypair decodes both halves of a private JWK.
func (k JWK) Keypair() (domain.Keypair, error) {
	pub, err := k.Public()
	if err != nil {
		return domain.Keypair{}, err
	}
	b, err := fromB64url(k.D)
	if err != nil {
		return domain.Keypair{}, fmt.Errorf("jwk d: %w", err)
	}
	var kp domain.Keypair
	if len(b) != len(kp.Private) {
		return domain.Keypair{}, fmt.Errorf("jwk d: want %d bytes, got %d", len(kp.Private), len(b))
	}
	copy(kp.Private[:], b)
	kp.Public = pub
	return kp, nil
}

func b64url(b []byte) string { return base64.RawURLEncoding.EncodeToString(b) }

// fromB64url tolerates trailing padding, which some encoders emit.
func fromB64url(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
