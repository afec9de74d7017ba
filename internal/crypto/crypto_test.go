package crypto_test

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"

	"spysignal/internal/crypto"
	"spysignal/internal/domain"
)

func mustHex32(t *testing.T, s string) [32]byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 32 {
		t.Fatalf("bad hex fixture %q: %v", s, err)
	}
	var out [32]byte
	copy(out[:], b)
	return out
}

var providers = []crypto.Provider{crypto.XCrypto{}, crypto.Circl{}}

// RFC 7748 section 6.1 test vector.
func TestProviders_RFC7748Vector(t *testing.T) {
	alicePriv := domain.X25519Private(mustHex32(t, "77076d0a7318a57d3c16c17251b26645df4c2f87ebc0992ab177fba51db92c2a"))
	alicePub := domain.X25519Public(mustHex32(t, "8520f0098930a754748b7ddcb43ef75a0dbf3a0d26381af4eba4a98eaa9b4e6a"))
	bobPub := domain.X25519Public(mustHex32(t, "de9edb7d7b7dc1b4d35b61c2ece435373f8343c85b78674dadfc7e146f882b4f"))
	shared := mustHex32(t, "4a5d9d5ba4ce2de1728e3bf480350f25e07e21c947d19e3376f09b3c1e161742")

	for _, p := range providers {
		t.Run(p.Name(), func(t *testing.T) {
			pub, err := p.PublicKey(alicePriv)
			if err != nil {
				t.Fatalf("public key: %v", err)
			}
			if pub != alicePub {
				t.Fatalf("public key mismatch: %x", pub)
			}
			got, err := p.X25519(alicePriv, bobPub)
			if err != nil {
				t.Fatalf("x25519: %v", err)
			}
			if got != shared {
				t.Fatalf("shared secret mismatch: %x", got)
			}
		})
	}
}

func TestProviders_Agree(t *testing.T) {
	aPriv, aPub, err := crypto.XCrypto{}.GenerateX25519()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	bPriv, bPub, err := crypto.Circl{}.GenerateX25519()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, p := range providers {
		ab, err := p.X25519(aPriv, bPub)
		if err != nil {
			t.Fatalf("%s: %v", p.Name(), err)
		}
		ba, err := p.X25519(bPriv, aPub)
		if err != nil {
			t.Fatalf("%s: %v", p.Name(), err)
		}
		if ab != ba {
			t.Fatalf("provider %s: sides disagree", p.Name())
		}
	}
}

func TestProviders_RejectLowOrderPoint(t *testing.T) {
	priv, _, err := crypto.XCrypto{}.GenerateX25519()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, p := range providers {
		if _, err := p.X25519(priv, domain.X25519Public{}); err == nil {
			t.Fatalf("provider %s accepted the zero point", p.Name())
		}
	}
}

func TestProviderByName(t *testing.T) {
	p, err := crypto.ProviderByName("")
	if err != nil || p.Name() != crypto.ProviderXCrypto {
		t.Fatalf("default provider: %v %v", p, err)
	}
	p, err = crypto.ProviderByName("circl")
	if err != nil || p.Name() != crypto.ProviderCircl {
		t.Fatalf("circl provider: %v %v", p, err)
	}
	if _, err := crypto.ProviderByName("openssl"); err == nil {
		t.Fatal("expected unknown provider error")
	}
}

func TestDeriveKey(t *testing.T) {
	secret := mustHex32(t, "4a5d9d5ba4ce2de1728e3bf480350f25e07e21c947d19e3376f09b3c1e161742")

	raw, err := crypto.DeriveKey(crypto.KDFRaw, secret)
	if err != nil {
		t.Fatalf("raw: %v", err)
	}
	if raw != domain.SharedKey(secret) {
		t.Fatal("raw derivation must return the shared secret")
	}

	h1, err := crypto.DeriveKey(crypto.KDFHKDFSHA256, secret)
	if err != nil {
		t.Fatalf("hkdf: %v", err)
	}
	h2, err := crypto.DeriveKey(crypto.KDFHKDFSHA256, secret)
	if err != nil {
		t.Fatalf("hkdf: %v", err)
	}
	if h1 != h2 {
		t.Fatal("hkdf derivation is not deterministic")
	}
	if h1 == raw {
		t.Fatal("hkdf derivation returned the raw secret")
	}

	if _, err := crypto.ParseKDF("pbkdf2"); err == nil {
		t.Fatal("expected unknown kdf error")
	}
}

func TestJWK_PublicRoundTrip(t *testing.T) {
	_, pub, err := crypto.XCrypto{}.GenerateX25519()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	s := crypto.EncodePublicJWK(pub)
	got, err := crypto.ParsePublicJWK(s)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != pub {
		t.Fatal("public key changed across JWK round trip")
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fields["kty"] != "OKP" || fields["crv"] != "X25519" {
		t.Fatalf("unexpected key type: %v", fields)
	}
	if _, ok := fields["d"]; ok {
		t.Fatal("public JWK must not carry d")
	}
}

func TestJWK_ParseBrowserExport(t *testing.T) {
	// Shape produced by WebCrypto exportKey("jwk") for an X25519 public key.
	s := `{"crv":"X25519","ext":true,"key_ops":[],"kty":"OKP","x":"hSDwCYkwp1R0i33ctD73Wg2_Og0mOBr066SpjqqbTmo"}`
	pub, err := crypto.ParsePublicJWK(s)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := domain.X25519Public(mustHex32(t, "8520f0098930a754748b7ddcb43ef75a0dbf3a0d26381af4eba4a98eaa9b4e6a"))
	if pub != want {
		t.Fatalf("got %x want %x", pub, want)
	}
}

func TestJWK_ParseRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":    `{"kty":`,
		"wrong kty":   `{"kty":"EC","crv":"X25519","x":"hSDwCYkwp1R0i33ctD73Wg2_Og0mOBr066SpjqqbTmo"}`,
		"wrong curve": `{"kty":"OKP","crv":"Ed25519","x":"hSDwCYkwp1R0i33ctD73Wg2_Og0mOBr066SpjqqbTmo"}`,
		"short x":     `{"kty":"OKP","crv":"X25519","x":"hSDwCYkw"}`,
		"bad base64":  `{"kty":"OKP","crv":"X25519","x":"!!!"}`,
		"empty":       ``,
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := crypto.ParsePublicJWK(s); !errors.Is(err, domain.ErrInvalidPeerKey) {
				t.Fatalf("expected ErrInvalidPeerKey, got %v", err)
			}
		})
	}
}

func TestJWK_PrivateRoundTrip(t *testing.T) {
	priv, pub, err := crypto.Circl{}.GenerateX25519()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	kp := domain.Keypair{Public: pub, Private: priv}
	got, err := crypto.PrivateJWK(kp).Keypair()
	if err != nil {
		t.Fatalf("keypair: %v", err)
	}
	if got != kp {
		t.Fatal("keypair changed across JWK round trip")
	}
}

func TestFingerprint_Stable(t *testing.T) {
	_, pub, err := crypto.XCrypto{}.GenerateX25519()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if crypto.Fingerprint(pub) != crypto.Fingerprint(pub) {
		t.Fatal("fingerprint is not stable")
	}
	_, other, err := crypto.XCrypto{}.GenerateX25519()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if crypto.Fingerprint(pub) == crypto.Fingerprint(other) {
		t.Fatal("distinct keys share a fingerprint")
	}
}
