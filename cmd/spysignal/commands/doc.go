// Package commands defines the spysignal CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init           Create the local identity if it does not exist
//   - fingerprint    Print the identity fingerprint
//   - register       Publish your public key to a relay under a username
//   - search         Find users on the relay
//   - send           Encrypt and send a message or file to a peer
//   - history        Fetch and decrypt the conversation with a peer
//   - listen         Follow incoming messages live
//
// # Implementation
//
// The root command loads the config file, applies environment and flag
// overrides, and builds a dependency graph (stores, services, relay client)
// before any subcommand runs. Messages that fail to decrypt are printed as
// "[unreadable message]".
package commands
