package store

import (
	"path/filepath"
	"strings"
	"sync"

	"spysignal/internal/domain"
)

const accountsFile = "profile.json"

// AccountFileStore remembers which user id we registered as on each relay.
type AccountFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewAccountFileStore returns an AccountFileStore rooted at dir.
func NewAccountFileStore(dir string) *AccountFileStore {
	return &AccountFileStore{dir: dir}
}

// SaveAccountProfile stores or replaces the profile for its relay.
func (s *AccountFileStore) SaveAccountProfile(profile domain.AccountProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, accountsFile)
	profiles := make(map[string]domain.AccountProfile)
	if _, err := readJSON(path, &profiles); err != nil {
		return err
	}
	profile.ServerURL = accountKey(profile.ServerURL)
	profiles[profile.ServerURL] = profile
	return writeJSON(path, profiles, 0o600)
}

// LoadAccountProfile retrieves the profile for serverURL.
func (s *AccountFileStore) LoadAccountProfile(serverURL string) (domain.AccountProfile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, accountsFile)
	profiles := make(map[string]domain.AccountProfile)
	if _, err := readJSON(path, &profiles); err != nil {
		return domain.AccountProfile{}, false, err
	}
	profile, ok := profiles[accountKey(serverURL)]
	return profile, ok, nil
}

// accountKey normalises relay URLs so "http://h:8000/" and "http://h:8000"
// share a profile.
func accountKey(serverURL string) string {
	return strings.TrimRight(strings.TrimSpace(serverURL), "/")
}

// Compile-time assertion that AccountFileStore implements domain.AccountStore.
var _ domain.AccountStore = (*AccountFileStore)(nil)
