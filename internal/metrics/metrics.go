// Package metrics exposes Prometheus collectors for the key agreement,
// session and relay layers. A nil *Collector is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "spysignal"

// Derivation results.
const (
	DerivationCacheHit = "cache_hit"
	DerivationDerived  = "derived"
	DerivationInvalid  = "invalid_peer_key"
)

// Open results.
const (
	OpenOK                = "ok"
	OpenMalformedEncoding = "malformed_encoding"
	OpenAuthentication    = "authentication"
	OpenMalformedPayload  = "malformed_payload"
)

// Collector groups the counters used across the app.
type Collector struct {
	derivations  *prometheus.CounterVec
	sealed       prometheus.Counter
	opened       *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	liveClients  prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		derivations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "key_derivations_total",
			Help:      "Shared key lookups by result.",
		}, []string{"result"}),
		sealed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sealed_total",
			Help:      "Payloads encrypted for a peer.",
		}),
		opened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_opened_total",
			Help:      "Wire records decrypted by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_http_requests_total",
			Help:      "Relay HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		liveClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "relay_live_subscribers",
			Help:      "Open live-feed websocket connections.",
		}),
	}
	if reg != nil {
		reg.MustRegister(c.derivations, c.sealed, c.opened, c.httpRequests, c.liveClients)
	}
	return c
}

// KeyDerivation counts one shared key lookup.
func (c *Collector) KeyDerivation(result string) {
	if c == nil {
		return
	}
	c.derivations.WithLabelValues(result).Inc()
}

// Sealed counts one encrypted payload.
func (c *Collector) Sealed() {
	if c == nil {
		return
	}
	c.sealed.Inc()
}

// Opened counts one decryption attempt.
func (c *Collector) Opened(result string) {
	if c == nil {
		return
	}
	c.opened.WithLabelValues(result).Inc()
}

// HTTPRequest counts one relay request.
func (c *Collector) HTTPRequest(route string, code int) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// LiveSubscribers adjusts the live-feed gauge by delta.
func (c *Collector) LiveSubscribers(delta float64) {
	if c == nil {
		return
	}
	c.liveClients.Add(delta)
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
