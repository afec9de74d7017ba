package directory

import (
	"context"
	"sync"

	"spysignal/internal/domain"
)

// Cache resolves user ids to peer identities, asking the relay only on a
// miss or an explicit Refresh.
type Cache struct {
	relay domain.RelayClient

	mu    sync.RWMutex
	peers map[domain.UserID]domain.PeerIdentity
}

// New returns an empty Cache backed by relay.
func New(relay domain.RelayClient) *Cache {
	return &Cache{relay: relay, peers: make(map[domain.UserID]domain.PeerIdentity)}
}

// Peer returns the cached identity for id, fetching it on a miss.
func (c *Cache) Peer(ctx context.Context, id domain.UserID) (domain.PeerIdentity, error) {
	c.mu.RLock()
	p, ok := c.peers[id]
	c.mu.RUnlock()
	if ok {
		return p, nil
	}
	return c.Refresh(ctx, id)
}

// Refresh refetches id from the relay and replaces the cached entry.
func (c *Cache) Refresh(ctx context.Context, id domain.UserID) (domain.PeerIdentity, error) {
	p, err := c.relay.GetUser(ctx, id)
	if err != nil {
		return domain.PeerIdentity{}, err
	}
	c.Put(p)
	return p, nil
}

// Put seeds the cache, for example with search results.
func (c *Cache) Put(p domain.PeerIdentity) {
	c.mu.Lock()
	c.peers[p.ID] = p
	c.mu.Unlock()
}

// Compile-time assertion that Cache implements domain.PeerDirectory.
var _ domain.PeerDirectory = (*Cache)(nil)
