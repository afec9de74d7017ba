package session_test

import (
	"bytes"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"spysignal/internal/crypto"
	"spysignal/internal/domain"
	"spysignal/internal/metrics"
	"spysignal/internal/services/identity"
	"spysignal/internal/services/session"
	"spysignal/internal/store"
)

type party struct {
	peer domain.PeerIdentity
	svc  *session.Service
}

func newParty(t *testing.T, id domain.UserID, name string, opts ...func(*partyConfig)) party {
	t.Helper()
	cfg := partyConfig{store: store.NewMemoryIdentityStore()}
	for _, o := range opts {
		o(&cfg)
	}
	ids := identity.New(cfg.store, nil, crypto.KDFRaw, cfg.metrics)
	ka, err := ids.LoadOrCreate()
	if err != nil {
		t.Fatalf("identity for %s: %v", name, err)
	}
	return party{
		peer: domain.PeerIdentity{ID: id, Username: domain.Username(name), PublicKey: ka.PublicJWK()},
		svc:  session.New(ids, cfg.log, cfg.metrics),
	}
}

type partyConfig struct {
	store   domain.IdentityStore
	log     *slog.Logger
	metrics *metrics.Collector
}

func record(from, to domain.UserID, s domain.SealedPayload) domain.WireRecord {
	return domain.WireRecord{FromID: from, ToID: to, IV: s.IV, Ciphertext: s.Ciphertext}
}

func prepare(t *testing.T, p party, to domain.PeerIdentity, body string) domain.SealedPayload {
	t.Helper()
	sealed, err := p.svc.PrepareOutgoing(to, domain.TextPayload(body))
	if err != nil {
		t.Fatalf("prepare outgoing: %v", err)
	}
	return sealed
}

func TestHelloScenario(t *testing.T) {
	alice := newParty(t, 1, "alice")
	bob := newParty(t, 2, "bob")

	sealed := prepare(t, alice, bob.peer, "hello")

	got, ok, err := bob.svc.ResolveIncoming(record(1, 2, sealed), alice.peer)
	if err != nil || !ok {
		t.Fatalf("bob resolve: ok=%v err=%v", ok, err)
	}
	if got != domain.TextPayload("hello") {
		t.Fatalf("bob read %+v", got)
	}

	// The sender can read its own history too.
	got, ok, err = alice.svc.ResolveIncoming(record(1, 2, sealed), bob.peer)
	if err != nil || !ok {
		t.Fatalf("alice resolve: ok=%v err=%v", ok, err)
	}
	if got.Body != "hello" {
		t.Fatalf("alice read %q", got.Body)
	}
}

func TestCorruptedHistoryScenario(t *testing.T) {
	alice := newParty(t, 1, "alice")
	bob := newParty(t, 2, "bob")

	var records []domain.WireRecord
	for _, body := range []string{"one", "two", "three"} {
		records = append(records, record(1, 2, prepare(t, alice, bob.peer, body)))
	}
	ct := []byte(records[1].Ciphertext)
	if ct[0] == 'A' {
		ct[0] = 'B'
	} else {
		ct[0] = 'A'
	}
	records[1].Ciphertext = string(ct)

	var bodies []string
	for _, r := range records {
		p, ok, err := bob.svc.ResolveIncoming(r, alice.peer)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if !ok {
			bodies = append(bodies, "<unreadable>")
			continue
		}
		bodies = append(bodies, p.Body)
	}
	if want := []string{"one", "<unreadable>", "three"}; !slices.Equal(bodies, want) {
		t.Fatalf("got %v want %v", bodies, want)
	}
}

func TestResolveIncoming_FailSoftKinds(t *testing.T) {
	alice := newParty(t, 1, "alice")
	bob := newParty(t, 2, "bob")
	carol := newParty(t, 3, "carol")

	sealed := prepare(t, alice, bob.peer, "for bob")

	cases := map[string]struct {
		rec  domain.WireRecord
		by   party
		from party
	}{
		"bad base64":   {domain.WireRecord{IV: "!!", Ciphertext: sealed.Ciphertext}, bob, alice},
		"short iv":     {domain.WireRecord{IV: "AAAA", Ciphertext: sealed.Ciphertext}, bob, alice},
		"wrong reader": {record(1, 2, sealed), carol, alice},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, ok, err := c.by.svc.ResolveIncoming(c.rec, c.from.peer)
			if err != nil {
				t.Fatalf("decrypt failure must not be an error: %v", err)
			}
			if ok {
				t.Fatal("expected ok == false")
			}
		})
	}
}

func TestInvalidPeerKey_IsAnError(t *testing.T) {
	alice := newParty(t, 1, "alice")
	mallory := domain.PeerIdentity{ID: 9, Username: "mallory", PublicKey: `{"kty":"EC","crv":"P-256","x":"AA"}`}

	if _, err := alice.svc.PrepareOutgoing(mallory, domain.TextPayload("x")); !errors.Is(err, domain.ErrInvalidPeerKey) {
		t.Fatalf("prepare: expected ErrInvalidPeerKey, got %v", err)
	}

	_, ok, err := alice.svc.ResolveIncoming(domain.WireRecord{FromID: 9, IV: "AAAA", Ciphertext: "AAAA"}, mallory)
	if !errors.Is(err, domain.ErrInvalidPeerKey) || ok {
		t.Fatalf("resolve: expected ErrInvalidPeerKey, got ok=%v err=%v", ok, err)
	}
}

type failingStore struct{}

func (failingStore) Load() (domain.Keypair, bool, error) {
	return domain.Keypair{}, false, errors.New("corrupt")
}
func (failingStore) Save(domain.Keypair) error { return nil }

func TestIdentityUnavailable_PropagatesFromBothPaths(t *testing.T) {
	bob := newParty(t, 2, "bob")
	svc := session.New(identity.New(failingStore{}, nil, crypto.KDFRaw, nil), nil, nil)

	if _, err := svc.PrepareOutgoing(bob.peer, domain.TextPayload("x")); !errors.Is(err, domain.ErrIdentityUnavailable) {
		t.Fatalf("prepare: expected ErrIdentityUnavailable, got %v", err)
	}
	if _, _, err := svc.ResolveIncoming(domain.WireRecord{}, bob.peer); !errors.Is(err, domain.ErrIdentityUnavailable) {
		t.Fatalf("resolve: expected ErrIdentityUnavailable, got %v", err)
	}
}

func TestResolveIncoming_LogsReasonAndCounts(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	alice := newParty(t, 1, "alice")
	bob := newParty(t, 2, "bob", func(c *partyConfig) { c.log, c.metrics = log, m })

	sealed := prepare(t, alice, bob.peer, "x")
	rec := record(1, 2, sealed)
	rec.ID = 42

	if _, ok, err := bob.svc.ResolveIncoming(rec, alice.peer); err != nil || !ok {
		t.Fatalf("resolve: ok=%v err=%v", ok, err)
	}

	rec.IV = "%%%"
	if _, ok, err := bob.svc.ResolveIncoming(rec, alice.peer); err != nil || ok {
		t.Fatalf("resolve corrupted: ok=%v err=%v", ok, err)
	}

	out := buf.String()
	for _, want := range []string{`"reason":"malformed_encoding"`, `"record_id":42`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log missing %s:\n%s", want, out)
		}
	}
	if strings.Contains(out, sealed.Ciphertext) {
		t.Fatalf("ciphertext leaked into the log:\n%s", out)
	}

	n, err := testutil.GatherAndCount(reg, "spysignal_messages_opened_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 2 { // ok and malformed_encoding series
		t.Fatalf("got %d opened series, want 2", n)
	}
}
