package keyagree

import (
	"fmt"
	"sync"

	"spysignal/internal/crypto"
	"spysignal/internal/domain"
	"spysignal/internal/metrics"
	"spysignal/internal/util/memzero"
)

type cacheKey struct {
	peer        domain.UserID
	fingerprint domain.Fingerprint
}

// Engine owns the local private key and the per-peer shared key cache.
type Engine struct {
	provider crypto.Provider
	kdf      crypto.KDF
	metrics  *metrics.Collector

	priv domain.X25519Private
	pub  domain.X25519Public

	mu    sync.RWMutex
	cache map[cacheKey]domain.SharedKey
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics records cache hits and derivations on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = c }
}

// New builds an engine from a persisted keypair. When kp is nil a fresh
// keypair is generated and created is true; the caller is then expected to
// persist it with Persist.
func New(
	provider crypto.Provider,
	kdf crypto.KDF,
	kp *domain.Keypair,
	opts ...Option,
) (e *Engine, created bool, err error) {
	if provider == nil {
		provider = crypto.XCrypto{}
	}
	e = &Engine{
		provider: provider,
		kdf:      kdf,
		cache:    make(map[cacheKey]domain.SharedKey),
	}
	for _, opt := range opts {
		opt(e)
	}

	if kp == nil {
		e.priv, e.pub, err = provider.GenerateX25519()
		if err != nil {
			return nil, false, fmt.Errorf("generate identity: %w", err)
		}
		return e, true, nil
	}

	// The stored public half must match the private half.
	pub, err := provider.PublicKey(kp.Private)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrIdentityUnavailable, err)
	}
	if pub != kp.Public {
		return nil, false, fmt.Errorf("%w: public key does not match private key", domain.ErrIdentityUnavailable)
	}
	e.priv, e.pub = kp.Private, kp.Public
	return e, false, nil
}

// Persist writes the keypair to store. It is the only path by which the
// private key leaves the engine.
func (e *Engine) Persist(store domain.IdentityStore) error {
	return store.Save(domain.Keypair{Public: e.pub, Private: e.priv})
}

// PublicKey returns the local public key.
func (e *Engine) PublicKey() domain.X25519Public { return e.pub }

// PublicJWK returns the local public key as a JWK string.
func (e *Engine) PublicJWK() string { return crypto.EncodePublicJWK(e.pub) }

// Fingerprint returns a short fingerprint of the local public key.
func (e *Engine) Fingerprint() domain.Fingerprint { return crypto.Fingerprint(e.pub) }

// DeriveSharedKey returns the AEAD key shared with peer, deriving and
// caching it on first use.
func (e *Engine) DeriveSharedKey(peer domain.PeerIdentity) (domain.SharedKey, error) {
	peerPub, err := crypto.ParsePublicJWK(peer.PublicKey)
	if err != nil {
		e.metrics.KeyDerivation(metrics.DerivationInvalid)
		return domain.SharedKey{}, fmt.Errorf("peer %s: %w", peer.ID, err)
	}
	ck := cacheKey{peer: peer.ID, fingerprint: crypto.Fingerprint(peerPub)}

	e.mu.RLock()
	key, ok := e.cache[ck]
	e.mu.RUnlock()
	if ok {
		e.metrics.KeyDerivation(metrics.DerivationCacheHit)
		return key, nil
	}

	secret, err := e.provider.X25519(e.priv, peerPub)
	if err != nil {
		e.metrics.KeyDerivation(metrics.DerivationInvalid)
		return domain.SharedKey{}, fmt.Errorf("peer %s: %w: %v", peer.ID, domain.ErrInvalidPeerKey, err)
	}
	key, err = crypto.DeriveKey(e.kdf, secret)
	memzero.Zero(secret[:])
	if err != nil {
		return domain.SharedKey{}, err
	}

	e.mu.Lock()
	e.cache[ck] = key
	e.mu.Unlock()
	e.metrics.KeyDerivation(metrics.DerivationDerived)
	return key, nil
}

// Forget drops every cached key for peer.
func (e *Engine) Forget(peer domain.UserID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for k := range e.cache {
		if k.peer == peer {
			delete(e.cache, k)
		}
	}
}

// Reset drops the whole cache.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[cacheKey]domain.SharedKey)
}

// CacheLen reports the number of cached keys.
func (e *Engine) CacheLen() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}

// Compile-time assertion that Engine implements domain.KeyAgreement.
var _ domain.KeyAgreement = (*Engine)(nil)
