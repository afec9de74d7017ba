// Package session is the facade the rest of the client talks to when it
// needs to encrypt or decrypt a message for a peer.
//
// It makes sure the local identity is loaded, asks the key agreement engine
// for the peer's shared key and runs the cipher engine. Decryption is
// fail-soft: a record that cannot be opened is reported as unreadable rather
// than as an error.
package session
