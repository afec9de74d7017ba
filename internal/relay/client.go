package relay

import (
	"context"
	"net/http"
	"net/url"

	"spysignal/internal/domain"
)

// HTTPClient talks to a spysignal relay.
type HTTPClient struct {
	Base string
	HTTP *http.Client
}

// NewHTTP returns a client for the relay at base, e.g. "http://127.0.0.1:8000".
func NewHTTP(base string) *HTTPClient {
	return &HTTPClient{Base: base, HTTP: http.DefaultClient}
}

// Compile-time assertion that HTTPClient implements domain.RelayClient.
var _ domain.RelayClient = (*HTTPClient)(nil)

// RegisterUser publishes publicKey under username. Registering an existing
// name replaces its key.
func (c *HTTPClient) RegisterUser(
	ctx context.Context,
	username domain.Username,
	publicKey string,
) (domain.PeerIdentity, error) {
	in := struct {
		Username  domain.Username `json:"username"`
		PublicKey string          `json:"public_key"`
	}{username, publicKey}
	var out domain.PeerIdentity
	if err := c.post(ctx, "/api/users/register", in, &out); err != nil {
		return domain.PeerIdentity{}, err
	}
	return out, nil
}

// SearchUsers returns users whose name contains query.
func (c *HTTPClient) SearchUsers(ctx context.Context, query string) ([]domain.PeerIdentity, error) {
	var out []domain.PeerIdentity
	if err := c.getJSON(ctx, "/api/users/search?q="+url.QueryEscape(query), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser looks up a user by id. A missing user matches ErrNotFound.
func (c *HTTPClient) GetUser(ctx context.Context, id domain.UserID) (domain.PeerIdentity, error) {
	var out domain.PeerIdentity
	if err := c.getJSON(ctx, "/api/users/"+url.PathEscape(id.String()), &out); err != nil {
		return domain.PeerIdentity{}, err
	}
	return out, nil
}

// PostMessage stores a record and returns it as assigned by the relay.
func (c *HTTPClient) PostMessage(ctx context.Context, rec domain.WireRecord) (domain.WireRecord, error) {
	in := struct {
		FromID     domain.UserID `json:"from_id"`
		ToID       domain.UserID `json:"to_id"`
		IV         string        `json:"iv"`
		Ciphertext string        `json:"ciphertext"`
	}{rec.FromID, rec.ToID, rec.IV, rec.Ciphertext}
	var out domain.WireRecord
	if err := c.post(ctx, "/api/messages/", in, &out); err != nil {
		return domain.WireRecord{}, err
	}
	return out, nil
}

// FetchHistory returns both directions of the conversation between me and
// peer, oldest first.
func (c *HTTPClient) FetchHistory(ctx context.Context, me, peer domain.UserID) ([]domain.WireRecord, error) {
	q := url.Values{}
	q.Set("user_id", me.String())
	q.Set("peer_id", peer.String())
	var out []domain.WireRecord
	if err := c.getJSON(ctx, "/api/messages/history?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out, nil
}
