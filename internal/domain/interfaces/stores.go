package interfaces

import domaintypes "spysignal/internal/domain/types"

// IdentityStore persists the local long-term keypair.
//
// Load reports ok == false when no identity has been saved yet.
type IdentityStore interface {
	Load() (kp domaintypes.Keypair, ok bool, err error)
	Save(kp domaintypes.Keypair) error
}

// AccountStore persists per-relay account profiles.
type AccountStore interface {
	SaveAccountProfile(profile domaintypes.AccountProfile) error
	LoadAccountProfile(serverURL string) (domaintypes.AccountProfile, bool, error)
}
