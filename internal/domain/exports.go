package domain

import (
	interfaces "spysignal/internal/domain/interfaces"
	types "spysignal/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	UserID           = types.UserID
	Username         = types.Username
	Fingerprint      = types.Fingerprint
	X25519Public     = types.X25519Public
	X25519Private    = types.X25519Private
	SharedKey        = types.SharedKey
	Keypair          = types.Keypair
	AccountProfile   = types.AccountProfile
	PeerIdentity     = types.PeerIdentity
	PayloadKind      = types.PayloadKind
	Payload          = types.Payload
	SealedPayload    = types.SealedPayload
	WireRecord       = types.WireRecord
	DecryptedMessage = types.DecryptedMessage
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	IdentityStore   = interfaces.IdentityStore
	AccountStore    = interfaces.AccountStore
	RelayClient     = interfaces.RelayClient
	PeerDirectory   = interfaces.PeerDirectory
	KeyAgreement    = interfaces.KeyAgreement
	IdentityService = interfaces.IdentityService
	SessionService  = interfaces.SessionService
	MessageService  = interfaces.MessageService
)

const (
	PayloadText = types.PayloadText
	PayloadFile = types.PayloadFile
)

// Error values re-exported from the types subpackage.
var (
	ErrIdentityUnavailable    = types.ErrIdentityUnavailable
	ErrInvalidPeerKey         = types.ErrInvalidPeerKey
	ErrMalformedEncoding      = types.ErrMalformedEncoding
	ErrAuthenticationFailure  = types.ErrAuthenticationFailure
	ErrMalformedPayload       = types.ErrMalformedPayload
	ErrEncryptionPrecondition = types.ErrEncryptionPrecondition
)

// Constructors and helpers re-exported from the types subpackage.
var (
	TextPayload      = types.TextPayload
	FilePayload      = types.FilePayload
	ParseUserID      = types.ParseUserID
	IsDecryptFailure = types.IsDecryptFailure
)
