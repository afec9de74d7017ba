// Package relay provides an HTTP implementation of the domain.RelayClient
// interface used by spysignal.
//
// The relay is a directory of registered users and their public keys, and
// a store-and-forward service for encrypted message records. This package
// offers a concrete client for it.
//
// Supported operations include:
//   - Registering a username with our public key.
//   - Searching for and looking up peers.
//   - Posting encrypted records and fetching conversation history.
//   - Following the live feed of records addressed to us over a websocket.
//
// All requests are JSON over HTTP and accept a context for cancellation and
// deadlines. Non-2xx statuses are returned as *StatusError values carrying
// the HTTP method, full URL, status and the server's detail message.
package relay
