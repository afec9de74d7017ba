package store_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spysignal/internal/crypto"
	"spysignal/internal/domain"
	"spysignal/internal/store"
)

func newKeypair(t *testing.T) domain.Keypair {
	t.Helper()
	priv, pub, err := crypto.XCrypto{}.GenerateX25519()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return domain.Keypair{Public: pub, Private: priv}
}

func TestIdentity_Missing_NotOK(t *testing.T) {
	ids := store.NewIdentityFileStore(t.TempDir(), "")
	_, ok, err := ids.Load()
	if err != nil || ok {
		t.Fatalf("want ok=false err=nil, got ok=%v err=%v", ok, err)
	}
}

func TestIdentity_SaveLoad_Plain(t *testing.T) {
	home := t.TempDir()
	var ids domain.IdentityStore = store.NewIdentityFileStore(home, "")

	kp := newKeypair(t)
	if err := ids.Save(kp); err != nil {
		t.Fatalf("save identity: %v", err)
	}
	got, ok, err := ids.Load()
	if err != nil || !ok {
		t.Fatalf("load identity: ok=%v err=%v", ok, err)
	}
	if got != kp {
		t.Fatalf("mismatch after load")
	}

	raw, err := os.ReadFile(filepath.Join(home, "identity.json"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	for _, want := range []string{`"v":1`, `"public_jwk"`, `"private_jwk"`, `"crv":"X25519"`} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("identity file missing %s: %s", want, raw)
		}
	}
}

func TestIdentity_SaveLoad_Passphrase(t *testing.T) {
	home := t.TempDir()
	ids := store.NewIdentityFileStore(home, "correct horse")

	kp := newKeypair(t)
	if err := ids.Save(kp); err != nil {
		t.Fatalf("save identity: %v", err)
	}
	raw, err := os.ReadFile(ids.Path())
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if strings.Contains(string(raw), "private_jwk") {
		t.Fatalf("private key written in the clear")
	}

	got, ok, err := store.NewIdentityFileStore(home, "correct horse").Load()
	if err != nil || !ok {
		t.Fatalf("load identity: ok=%v err=%v", ok, err)
	}
	if got != kp {
		t.Fatalf("mismatch after load")
	}
}

func TestIdentity_WrongPassphrase_Fails(t *testing.T) {
	home := t.TempDir()
	if err := store.NewIdentityFileStore(home, "correct").Save(newKeypair(t)); err != nil {
		t.Fatalf("save identity: %v", err)
	}
	for _, pass := range []string{"wrong", ""} {
		_, _, err := store.NewIdentityFileStore(home, pass).Load()
		if !errors.Is(err, domain.ErrIdentityUnavailable) {
			t.Fatalf("passphrase %q: want ErrIdentityUnavailable, got %v", pass, err)
		}
	}
}

func TestIdentity_Corrupt_Unavailable(t *testing.T) {
	kp := newKeypair(t)
	other := newKeypair(t)
	cases := map[string]string{
		"not json":    `{{{`,
		"bad version": `{"v":9,"public_jwk":{},"private_jwk":{}}`,
		"no private":  `{"v":1,"public_jwk":` + crypto.EncodePublicJWK(kp.Public) + `,"private_jwk":{"kty":"OKP","crv":"X25519","x":"AA"}}`,
		"mismatch": `{"v":1,"public_jwk":` + crypto.EncodePublicJWK(other.Public) +
			`,"private_jwk":` + mustJSON(t, crypto.PrivateJWK(kp)) + `}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			home := t.TempDir()
			if err := os.WriteFile(filepath.Join(home, "identity.json"), []byte(body), 0o600); err != nil {
				t.Fatal(err)
			}
			_, ok, err := store.NewIdentityFileStore(home, "").Load()
			if ok || !errors.Is(err, domain.ErrIdentityUnavailable) {
				t.Fatalf("want ErrIdentityUnavailable, got ok=%v err=%v", ok, err)
			}
		})
	}
}

func TestMemoryIdentityStore(t *testing.T) {
	s := store.NewMemoryIdentityStore()
	if _, ok, _ := s.Load(); ok {
		t.Fatal("empty store reported an identity")
	}
	kp := newKeypair(t)
	if err := s.Save(kp); err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.Load()
	if err != nil || !ok || got != kp {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
}

func TestAccountProfiles_PerRelay(t *testing.T) {
	home := t.TempDir()
	var accounts domain.AccountStore = store.NewAccountFileStore(home)

	if _, ok, err := accounts.LoadAccountProfile("http://a:8000"); err != nil || ok {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}

	a := domain.AccountProfile{ServerURL: "http://a:8000/", UserID: 7, Username: "alice"}
	b := domain.AccountProfile{ServerURL: "http://b:8000", UserID: 3, Username: "alice"}
	for _, p := range []domain.AccountProfile{a, b} {
		if err := accounts.SaveAccountProfile(p); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, ok, err := store.NewAccountFileStore(home).LoadAccountProfile("http://a:8000")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.UserID != 7 || got.Username != "alice" {
		t.Fatalf("unexpected profile %+v", got)
	}

	b.UserID = 4
	if err := accounts.SaveAccountProfile(b); err != nil {
		t.Fatal(err)
	}
	got, _, _ = accounts.LoadAccountProfile("http://b:8000/")
	if got.UserID != 4 {
		t.Fatalf("profile not replaced: %+v", got)
	}
}
