package interfaces

import (
	"context"

	domaintypes "spysignal/internal/domain/types"
)

// RelayClient is how we talk to the relay backend, all with context.
type RelayClient interface {
	RegisterUser(
		ctx context.Context,
		username domaintypes.Username,
		publicKey string,
	) (domaintypes.PeerIdentity, error)
	SearchUsers(ctx context.Context, query string) ([]domaintypes.PeerIdentity, error)
	GetUser(ctx context.Context, id domaintypes.UserID) (domaintypes.PeerIdentity, error)

	PostMessage(ctx context.Context, record domaintypes.WireRecord) (domaintypes.WireRecord, error)
	FetchHistory(
		ctx context.Context,
		me domaintypes.UserID,
		peer domaintypes.UserID,
	) ([]domaintypes.WireRecord, error)

	// Subscribe streams records addressed to me until ctx is done or the
	// connection fails. A non-nil error from fn stops the stream.
	Subscribe(
		ctx context.Context,
		me domaintypes.UserID,
		fn func(domaintypes.WireRecord) error,
	) error
}

// PeerDirectory resolves user ids to published peer identities.
type PeerDirectory interface {
	Peer(ctx context.Context, id domaintypes.UserID) (domaintypes.PeerIdentity, error)
	Refresh(ctx context.Context, id domaintypes.UserID) (domaintypes.PeerIdentity, error)
}
