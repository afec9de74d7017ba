package relay

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"spysignal/internal/domain"
)

// liveURL turns the relay base into the websocket feed URL for me.
func (c *HTTPClient) liveURL(me domain.UserID) (string, error) {
	u, err := url.Parse(strings.TrimRight(c.Base, "/") + "/api/messages/live")
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("relay: unsupported scheme %q", u.Scheme)
	}
	u.RawQuery = url.Values{"user_id": {me.String()}}.Encode()
	return u.String(), nil
}

// Subscribe follows the live feed of records addressed to me. It returns
// nil when ctx is cancelled, fn's error if fn fails, and the connection
// error otherwise.
func (c *HTTPClient) Subscribe(
	ctx context.Context,
	me domain.UserID,
	fn func(domain.WireRecord) error,
) error {
	u, err := c.liveURL(me)
	if err != nil {
		return err
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		if resp != nil {
			return &StatusError{Method: "GET", URL: u, Code: resp.StatusCode, Status: resp.Status}
		}
		return err
	}
	defer conn.Close()

	// Unblock ReadJSON when ctx ends.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		var rec domain.WireRecord
		if err := conn.ReadJSON(&rec); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}
