package identity_test

import (
	"errors"
	"sync"
	"testing"

	"spysignal/internal/crypto"
	"spysignal/internal/domain"
	"spysignal/internal/services/identity"
	"spysignal/internal/store"
)

type countingStore struct {
	domain.IdentityStore
	mu    sync.Mutex
	saves int
}

func (c *countingStore) Save(kp domain.Keypair) error {
	c.mu.Lock()
	c.saves++
	c.mu.Unlock()
	return c.IdentityStore.Save(kp)
}

type brokenStore struct{ loadErr, saveErr error }

func (b brokenStore) Load() (domain.Keypair, bool, error) { return domain.Keypair{}, false, b.loadErr }
func (b brokenStore) Save(domain.Keypair) error          { return b.saveErr }

func TestLoadOrCreate_CreatesOnceAndPersists(t *testing.T) {
	st := &countingStore{IdentityStore: store.NewMemoryIdentityStore()}
	svc := identity.New(st, crypto.XCrypto{}, crypto.KDFRaw, nil)

	var wg sync.WaitGroup
	fps := make([]domain.Fingerprint, 8)
	for i := range fps {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ka, err := svc.LoadOrCreate()
			if err != nil {
				t.Errorf("load or create: %v", err)
				return
			}
			fps[i] = ka.Fingerprint()
		}(i)
	}
	wg.Wait()

	if st.saves != 1 {
		t.Fatalf("identity saved %d times, want 1", st.saves)
	}
	for _, fp := range fps[1:] {
		if fp != fps[0] {
			t.Fatalf("callers observed different identities")
		}
	}
}

func TestLoadOrCreate_ReloadsPersistedIdentity(t *testing.T) {
	home := t.TempDir()
	first := identity.New(store.NewIdentityFileStore(home, ""), nil, crypto.KDFRaw, nil)
	fp1, err := first.Fingerprint()
	if err != nil {
		t.Fatalf("first: %v", err)
	}

	second := identity.New(store.NewIdentityFileStore(home, ""), crypto.Circl{}, crypto.KDFRaw, nil)
	fp2, err := second.Fingerprint()
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if fp1 != fp2 {
		t.Fatalf("fingerprint changed across reload: %s vs %s", fp1, fp2)
	}
}

func TestLoadOrCreate_StoreFailureIsIdentityUnavailable(t *testing.T) {
	cases := map[string]brokenStore{
		"load": {loadErr: errors.New("disk on fire")},
		"save": {saveErr: errors.New("read-only filesystem")},
	}
	for name, st := range cases {
		t.Run(name, func(t *testing.T) {
			svc := identity.New(st, nil, crypto.KDFRaw, nil)
			if _, err := svc.LoadOrCreate(); !errors.Is(err, domain.ErrIdentityUnavailable) {
				t.Fatalf("want ErrIdentityUnavailable, got %v", err)
			}
		})
	}
}

func TestLoadOrCreate_FailureDoesNotLatch(t *testing.T) {
	mem := store.NewMemoryIdentityStore()
	flaky := &flakyStore{IdentityStore: mem, failures: 1}
	svc := identity.New(flaky, nil, crypto.KDFRaw, nil)

	if _, err := svc.LoadOrCreate(); err == nil {
		t.Fatal("expected first call to fail")
	}
	if _, err := svc.LoadOrCreate(); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if _, ok, _ := mem.Load(); !ok {
		t.Fatal("identity was not persisted on retry")
	}
}

type flakyStore struct {
	domain.IdentityStore
	failures int
}

func (f *flakyStore) Load() (domain.Keypair, bool, error) {
	if f.failures > 0 {
		f.failures--
		return domain.Keypair{}, false, errors.New("transient")
	}
	return f.IdentityStore.Load()
}
