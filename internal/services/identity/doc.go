// Package identity manages the lifecycle of the local X25519 identity.
//
// On first use it loads the keypair from the domain.IdentityStore, or
// generates and persists a fresh one, and hands back a key agreement engine
// bound to it. Later calls reuse the same engine.
package identity
