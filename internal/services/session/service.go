package session

import (
	"errors"
	"log/slog"

	"spysignal/internal/domain"
	"spysignal/internal/metrics"
	"spysignal/internal/protocol/seal"
)

// Service turns payloads into wire ciphertext for a peer and back.
//
// It holds no keys itself. The identity service guards the one-time
// identity load, and the key agreement engine owns the shared key cache,
// so a Service is safe for concurrent use.
type Service struct {
	ids     domain.IdentityService
	log     *slog.Logger
	metrics *metrics.Collector
}

// New constructs a session facade over ids. A nil logger discards output.
func New(ids domain.IdentityService, log *slog.Logger, m *metrics.Collector) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{ids: ids, log: log, metrics: m}
}

// PrepareOutgoing encrypts payload for peer.
//
// Identity and peer-key errors are returned unchanged so the caller can tell
// a broken local identity apart from a peer with an unusable public key.
func (s *Service) PrepareOutgoing(
	peer domain.PeerIdentity,
	payload domain.Payload,
) (domain.SealedPayload, error) {
	key, err := s.sharedKey(peer)
	if err != nil {
		return domain.SealedPayload{}, err
	}
	sealed, err := seal.Seal(key, payload)
	if err != nil {
		return domain.SealedPayload{}, err
	}
	s.metrics.Sealed()
	return sealed, nil
}

// ResolveIncoming decrypts record, which was sent by peer.
//
// ok is false when the record is unreadable: bad base64, a failed tag check
// or a plaintext that is not a payload. err is reserved for failures that
// affect every message, such as a missing identity or an unusable peer key.
func (s *Service) ResolveIncoming(
	record domain.WireRecord,
	peer domain.PeerIdentity,
) (domain.Payload, bool, error) {
	key, err := s.sharedKey(peer)
	if err != nil {
		return domain.Payload{}, false, err
	}
	payload, err := seal.Open(key, record.IV, record.Ciphertext)
	if err != nil {
		reason := openResult(err)
		if reason == "" {
			return domain.Payload{}, false, err
		}
		s.metrics.Opened(reason)
		s.log.Debug("message unreadable",
			slog.Int64("record_id", record.ID),
			slog.String("peer_id", peer.ID.String()),
			slog.String("reason", reason),
		)
		return domain.Payload{}, false, nil
	}
	s.metrics.Opened(metrics.OpenOK)
	return payload, true, nil
}

func (s *Service) sharedKey(peer domain.PeerIdentity) (domain.SharedKey, error) {
	ka, err := s.ids.LoadOrCreate()
	if err != nil {
		return domain.SharedKey{}, err
	}
	return ka.DeriveSharedKey(peer)
}

// openResult maps a decrypt failure to its metrics label, or "" if err is
// not a decrypt failure.
func openResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrMalformedEncoding):
		return metrics.OpenMalformedEncoding
	case errors.Is(err, domain.ErrAuthenticationFailure):
		return metrics.OpenAuthentication
	case errors.Is(err, domain.ErrMalformedPayload):
		return metrics.OpenMalformedPayload
	default:
		return ""
	}
}

// Compile-time assertion that Service implements domain.SessionService.
var _ domain.SessionService = (*Service)(nil)
