package interfaces

import (
	"context"

	domaintypes "spysignal/internal/domain/types"
)

// KeyAgreement derives per-peer shared keys from the local identity.
// Implementations never expose the private key.
type KeyAgreement interface {
	PublicKey() domaintypes.X25519Public
	PublicJWK() string
	Fingerprint() domaintypes.Fingerprint
	DeriveSharedKey(peer domaintypes.PeerIdentity) (domaintypes.SharedKey, error)
}

// IdentityService loads or creates the local identity.
type IdentityService interface {
	LoadOrCreate() (KeyAgreement, error)
}

// SessionService turns payloads into wire ciphertext and back.
type SessionService interface {
	PrepareOutgoing(
		peer domaintypes.PeerIdentity,
		payload domaintypes.Payload,
	) (domaintypes.SealedPayload, error)
	ResolveIncoming(
		record domaintypes.WireRecord,
		peer domaintypes.PeerIdentity,
	) (domaintypes.Payload, bool, error)
}

// MessageService encrypts, sends, fetches and decrypts messages.
type MessageService interface {
	SendMessage(
		ctx context.Context,
		from domaintypes.UserID,
		to domaintypes.PeerIdentity,
		payload domaintypes.Payload,
	) (domaintypes.WireRecord, error)
	History(
		ctx context.Context,
		me domaintypes.UserID,
		peer domaintypes.PeerIdentity,
	) ([]domaintypes.DecryptedMessage, error)
	Listen(
		ctx context.Context,
		me domaintypes.UserID,
		fn func(domaintypes.DecryptedMessage),
	) error
}
