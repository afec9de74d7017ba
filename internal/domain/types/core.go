package types

import "strconv"

// UserID is the relay-assigned numeric identifier of a registered user.
type UserID int64

// String returns the decimal form of the identifier.
func (id UserID) String() string { return strconv.FormatInt(int64(id), 10) }

// ParseUserID parses a decimal user identifier.
func ParseUserID(s string) (UserID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return UserID(n), nil
}

// Username represents a relay-registered identity.
type Username string

// String returns the string form of the username.
func (u Username) String() string { return string(u) }

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }
