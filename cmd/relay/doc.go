// Package main runs the spysignal relay server.
//
// The relay keeps a directory of usernames and their public keys, stores
// encrypted message records in SQLite and pushes new records to connected
// recipients over a websocket. See package internal/backend for the HTTP API.
//
// Behaviour
//
//   - Settings come from the same config file as the client (the server
//     section), with --listen and --db flags taking precedence.
//   - Responses are JSON. Non-2xx statuses carry {"detail": "..."}.
//   - An access log records request id, method, path, status, bytes and
//     duration for each request. Prometheus metrics are served on /metrics.
//   - Requests under /api/ are rate limited per client address.
//
// The relay never sees plaintext or private keys; it only stores ciphertext
// and public keys.
package main
