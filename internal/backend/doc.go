// Package backend implements the spysignal relay server.
//
// The relay is an untrusted directory and mailbox. It maps usernames to
// public keys, stores ciphertext records between users and pushes new
// records to connected recipients over a websocket. It never sees plaintext
// or private keys.
//
// HTTP API
//
//	GET  /health                                  {"status":"ok"}
//	POST /api/users/register                      {username, public_key} -> user
//	GET  /api/users/search?q=                     case-insensitive substring match
//	GET  /api/users/{id}                          user or 404
//	POST /api/messages/                           {from_id, to_id, iv, ciphertext} -> message
//	GET  /api/messages/history?user_id=&peer_id=  both directions, oldest first
//	GET  /api/messages/live?user_id=              websocket feed of new messages
//	GET  /metrics                                 Prometheus exposition
//
// Errors are JSON objects of the form {"detail": "..."}.
package backend
