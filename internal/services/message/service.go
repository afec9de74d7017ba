package message

import (
	"context"
	"log/slog"

	"spysignal/internal/domain"
)

// Service sends and receives messages over the relay.
//
// High-level flow:
//   - Send: seal the payload for the recipient, then post the wire record.
//   - History: fetch both directions of a conversation and decrypt each
//     record with the key shared with that peer.
//   - Listen: follow the relay's live feed, resolving each sender through
//     the peer directory. When a record is unreadable the sender is
//     refetched once, in case they re-registered with a new key.
type Service struct {
	session domain.SessionService
	relay   domain.RelayClient
	peers   domain.PeerDirectory
	log     *slog.Logger
}

// New constructs a Message Service. A nil logger discards output.
func New(
	session domain.SessionService,
	relay domain.RelayClient,
	peers domain.PeerDirectory,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{session: session, relay: relay, peers: peers, log: log}
}

// SendMessage encrypts payload for to and posts it. The returned record
// carries the id and timestamp assigned by the relay.
func (s *Service) SendMessage(
	ctx context.Context,
	from domain.UserID,
	to domain.PeerIdentity,
	payload domain.Payload,
) (domain.WireRecord, error) {
	sealed, err := s.session.PrepareOutgoing(to, payload)
	if err != nil {
		return domain.WireRecord{}, err
	}
	return s.relay.PostMessage(ctx, domain.WireRecord{
		FromID:     from,
		ToID:       to.ID,
		IV:         sealed.IV,
		Ciphertext: sealed.Ciphertext,
	})
}

// History returns the conversation between me and peer, oldest first.
//
// Records in both directions use the key shared with peer, so outgoing
// messages decrypt too. Unreadable records are kept in place with
// Readable == false.
func (s *Service) History(
	ctx context.Context,
	me domain.UserID,
	peer domain.PeerIdentity,
) ([]domain.DecryptedMessage, error) {
	records, err := s.relay.FetchHistory(ctx, me, peer.ID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DecryptedMessage, 0, len(records))
	for _, rec := range records {
		payload, ok, err := s.session.ResolveIncoming(rec, peer)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.DecryptedMessage{Record: rec, Payload: payload, Readable: ok})
	}
	return out, nil
}

// Listen delivers each record addressed to me to fn until ctx is done or
// the feed fails. Identity errors stop the feed; per-sender failures are
// logged and delivered as unreadable.
func (s *Service) Listen(
	ctx context.Context,
	me domain.UserID,
	fn func(domain.DecryptedMessage),
) error {
	return s.relay.Subscribe(ctx, me, func(rec domain.WireRecord) error {
		msg, err := s.resolve(ctx, rec)
		if err != nil {
			return err
		}
		fn(msg)
		return nil
	})
}

func (s *Service) resolve(ctx context.Context, rec domain.WireRecord) (domain.DecryptedMessage, error) {
	msg := domain.DecryptedMessage{Record: rec}

	peer, err := s.peers.Peer(ctx, rec.FromID)
	if err != nil {
		s.log.Warn("sender lookup failed", slog.String("peer_id", rec.FromID.String()), slog.Any("err", err))
		return msg, nil
	}
	payload, ok, err := s.session.ResolveIncoming(rec, peer)
	if err == nil && !ok {
		// The sender may have re-registered since we cached them.
		fresh, ferr := s.peers.Refresh(ctx, rec.FromID)
		if ferr == nil && fresh.PublicKey != peer.PublicKey {
			payload, ok, err = s.session.ResolveIncoming(rec, fresh)
		}
	}
	switch {
	case isFatal(err):
		return msg, err
	case err != nil:
		s.log.Warn("sender key unusable", slog.String("peer_id", rec.FromID.String()), slog.Any("err", err))
		return msg, nil
	}
	msg.Payload, msg.Readable = payload, ok
	return msg, nil
}

// Compile-time assertion that Service implements domain.MessageService.
var _ domain.MessageService = (*Service)(nil)
