// Package store provides file-based persistence for spysignal's client data.
//
// It contains concrete implementations of the domain storage interfaces,
// serialising data as JSON on disk. All methods are concurrency-safe via
// internal locking. Stored files live under the configured home directory.
//
// The package includes stores for:
//   - The local X25519 identity (IdentityFileStore, MemoryIdentityStore)
//   - Per-relay account profiles (AccountFileStore)
package store
