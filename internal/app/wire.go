package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"spysignal/internal/crypto"
	"spysignal/internal/domain"
	"spysignal/internal/metrics"
	"spysignal/internal/relay"
	"spysignal/internal/services/directory"
	identitysvc "spysignal/internal/services/identity"
	messagesvc "spysignal/internal/services/message"
	sessionsvc "spysignal/internal/services/session"
	"spysignal/internal/store"
)

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	Config   Config
	Log      *slog.Logger
	Metrics  *metrics.Collector
	Identity *identitysvc.Service
	Accounts domain.AccountStore
	Sessions domain.SessionService
	Messages domain.MessageService
	Peers    *directory.Cache
	Relay    domain.RelayClient
}

// NewWire constructs the dependency graph from cfg. reg may be nil, in which
// case no metrics are collected.
func NewWire(cfg Config, log *slog.Logger, reg prometheus.Registerer) (*Wire, error) {
	provider, err := crypto.ProviderByName(cfg.Crypto.Provider)
	if err != nil {
		return nil, err
	}
	kdf, err := crypto.ParseKDF(cfg.Crypto.KDF)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	var m *metrics.Collector
	if reg != nil {
		m = metrics.New(reg)
	}

	// File-based stores
	identityStore := store.NewIdentityFileStore(cfg.Home, cfg.Passphrase)
	accountStore := store.NewAccountFileStore(cfg.Home)

	// Relay client
	rc := relay.NewHTTP(cfg.RelayURL)
	if cfg.HTTP != nil {
		rc.HTTP = cfg.HTTP
	} else {
		rc.HTTP = http.DefaultClient
	}
	peers := directory.New(rc)

	// High-level services
	idSvc := identitysvc.New(identityStore, provider, kdf, m)
	sessionSvc := sessionsvc.New(idSvc, log, m)
	messageSvc := messagesvc.New(sessionSvc, rc, peers, log)

	log.Debug("wired client",
		slog.String("home", cfg.Home),
		slog.String("relay_url", cfg.RelayURL),
		slog.String("provider", provider.Name()),
		slog.String("kdf", string(kdf)),
	)
	return &Wire{
		Config:   cfg,
		Log:      log,
		Metrics:  m,
		Identity: idSvc,
		Accounts: accountStore,
		Sessions: sessionSvc,
		Messages: messageSvc,
		Peers:    peers,
		Relay:    rc,
	}, nil
}

// Me returns the account registered on the configured relay.
func (w *Wire) Me() (domain.AccountProfile, error) {
	p, ok, err := w.Accounts.LoadAccountProfile(w.Config.RelayURL)
	if err != nil {
		return domain.AccountProfile{}, err
	}
	if !ok {
		return domain.AccountProfile{}, fmt.Errorf("not registered on %s; run register first", w.Config.RelayURL)
	}
	return p, nil
}
