package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"spysignal/internal/crypto"
	"spysignal/internal/domain"
)

const (
	idFilename            = "identity.json"
	identityRecordVersion = 1
)

// identityRecord is the serialized keypair. Both halves are JWKs so the
// file can be imported by WebCrypto clients unchanged.
type identityRecord struct {
	V          int        `json:"v"`
	PublicJWK  crypto.JWK `json:"public_jwk"`
	PrivateJWK crypto.JWK `json:"private_jwk"`
}

// IdentityFileStore persists the local identity to disk. With a non-empty
// passphrase the record is wrapped in an encrypted envelope.
type IdentityFileStore struct {
	dir        string
	passphrase string
	params     kdfParams
	mu         sync.Mutex
}

// NewIdentityFileStore returns an IdentityFileStore rooted at dir.
func NewIdentityFileStore(dir, passphrase string) *IdentityFileStore {
	return &IdentityFileStore{dir: dir, passphrase: passphrase, params: defaultKDFParams()}
}

// Path returns the identity file location.
func (s *IdentityFileStore) Path() string { return filepath.Join(s.dir, idFilename) }

// Save writes kp, replacing any previous identity.
func (s *IdentityFileStore) Save(kp domain.Keypair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := encodeIdentity(kp)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIdentityUnavailable, err)
	}
	if s.passphrase != "" {
		if raw, err = seal(s.passphrase, raw, s.params); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrIdentityUnavailable, err)
		}
	}
	if err := writeFile(s.Path(), raw, 0o600); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIdentityUnavailable, err)
	}
	return nil
}

// Load reads the identity. A missing file reports ok == false; anything
// unreadable fails with domain.ErrIdentityUnavailable.
func (s *IdentityFileStore) Load() (domain.Keypair, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(s.Path())
	if err != nil {
		return domain.Keypair{}, false, fmt.Errorf("%w: %v", domain.ErrIdentityUnavailable, err)
	}
	if b == nil {
		return domain.Keypair{}, false, nil
	}
	if isEnvelope(b) {
		if s.passphrase == "" {
			return domain.Keypair{}, false, fmt.Errorf("%w: identity is passphrase protected", domain.ErrIdentityUnavailable)
		}
		if b, err = open(s.passphrase, b); err != nil {
			return domain.Keypair{}, false, fmt.Errorf("%w: %v", domain.ErrIdentityUnavailable, err)
		}
	}
	kp, err := decodeIdentity(b)
	if err != nil {
		return domain.Keypair{}, false, fmt.Errorf("%w: %v", domain.ErrIdentityUnavailable, err)
	}
	return kp, true, nil
}

func encodeIdentity(kp domain.Keypair) ([]byte, error) {
	return json.Marshal(identityRecord{
		V:          identityRecordVersion,
		PublicJWK:  crypto.PublicJWK(kp.Public),
		PrivateJWK: crypto.PrivateJWK(kp),
	})
}

func decodeIdentity(b []byte) (domain.Keypair, error) {
	var rec identityRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return domain.Keypair{}, err
	}
	if rec.V != identityRecordVersion {
		return domain.Keypair{}, fmt.Errorf("unsupported identity record version %d", rec.V)
	}
	kp, err := rec.PrivateJWK.Keypair()
	if err != nil {
		return domain.Keypair{}, fmt.Errorf("private_jwk: %w", err)
	}
	pub, err := rec.PublicJWK.Public()
	if err != nil {
		return domain.Keypair{}, fmt.Errorf("public_jwk: %w", err)
	}
	if pub != kp.Public {
		return domain.Keypair{}, errors.New("public_jwk does not match private_jwk")
	}
	return kp, nil
}

// MemoryIdentityStore keeps the identity in memory. Used for ephemeral
// sessions and tests.
type MemoryIdentityStore struct {
	mu  sync.Mutex
	kp  domain.Keypair
	set bool
}

// NewMemoryIdentityStore returns an empty MemoryIdentityStore.
func NewMemoryIdentityStore() *MemoryIdentityStore { return &MemoryIdentityStore{} }

// Save stores kp.
func (s *MemoryIdentityStore) Save(kp domain.Keypair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kp, s.set = kp, true
	return nil
}

// Load returns the stored keypair, if any.
func (s *MemoryIdentityStore) Load() (domain.Keypair, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kp, s.set, nil
}

// Compile-time assertions that the stores implement domain.IdentityStore.
var (
	_ domain.IdentityStore = (*IdentityFileStore)(nil)
	_ domain.IdentityStore = (*MemoryIdentityStore)(nil)
)
