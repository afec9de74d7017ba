package types

// AccountProfile identifies a spysignal account on a specific relay server.
type AccountProfile struct {
	ServerURL string   `json:"server_url"`
	UserID    UserID   `json:"user_id"`
	Username  Username `json:"username"`
}
