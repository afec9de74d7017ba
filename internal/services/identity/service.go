package identity

import (
	"errors"
	"fmt"
	"sync"

	"spysignal/internal/crypto"
	"spysignal/internal/domain"
	"spysignal/internal/metrics"
	"spysignal/internal/protocol/keyagree"
)

// Service loads or creates the local identity using a backing store.
type Service struct {
	store    domain.IdentityStore
	provider crypto.Provider
	kdf      crypto.KDF
	metrics  *metrics.Collector

	mu     sync.Mutex
	engine *keyagree.Engine
}

// New returns an identity service backed by the given store. A nil provider
// selects crypto.XCrypto.
func New(
	store domain.IdentityStore,
	provider crypto.Provider,
	kdf crypto.KDF,
	m *metrics.Collector,
) *Service {
	return &Service{store: store, provider: provider, kdf: kdf, metrics: m}
}

// LoadOrCreate returns the key agreement engine for the local identity.
// The first successful call loads or generates the keypair; every later
// call returns the same engine. A failed call leaves the service unloaded.
func (s *Service) LoadOrCreate() (domain.KeyAgreement, error) {
	e, err := s.Engine()
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Engine is LoadOrCreate returning the concrete engine.
func (s *Service) Engine() (*keyagree.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine != nil {
		return s.engine, nil
	}

	kp, ok, err := s.store.Load()
	if err != nil {
		return nil, unavailable(err)
	}
	var stored *domain.Keypair
	if ok {
		stored = &kp
	}

	e, created, err := keyagree.New(s.provider, s.kdf, stored, keyagree.WithMetrics(s.metrics))
	if err != nil {
		return nil, unavailable(err)
	}
	if created {
		if err := e.Persist(s.store); err != nil {
			return nil, unavailable(err)
		}
	}
	s.engine = e
	return e, nil
}

// Fingerprint returns a short fingerprint of the local public key, creating
// the identity if needed.
func (s *Service) Fingerprint() (domain.Fingerprint, error) {
	e, err := s.Engine()
	if err != nil {
		return "", err
	}
	return e.Fingerprint(), nil
}

func unavailable(err error) error {
	if errors.Is(err, domain.ErrIdentityUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrIdentityUnavailable, err)
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
