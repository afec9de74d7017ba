// Package app loads configuration and wires application dependencies for
// the CLI and the relay.
//
// Config is read from YAML, then overridden from the environment. NewWire
// builds the concrete stores, relay client and high-level services from it,
// exposing them via the Wire struct for commands to use.
package app
