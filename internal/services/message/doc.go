// Package message sends and receives encrypted messages over the relay.
//
// Sending seals the payload through the session facade and posts the wire
// record. History and the live feed decrypt records as they arrive; a record
// that cannot be decrypted is surfaced as unreadable and never stops the
// rest of the conversation from rendering.
package message
