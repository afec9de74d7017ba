// Package domain holds the spysignal data model and the contracts between
// layers: identities, payloads, wire records, sentinel errors, and the
// store, relay and service interfaces. Concrete types live in the types and
// interfaces subpackages and are re-exported here as aliases.
package domain
