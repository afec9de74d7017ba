package backend

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"spysignal/internal/domain"
	"spysignal/internal/metrics"
)

const (
	liveWriteTimeout = 10 * time.Second
	livePingInterval = 30 * time.Second
	maxBodyBytes     = 16 << 20
)

// Options tunes a Server. Zero values disable rate limiting and /metrics.
type Options struct {
	RateLimitRPS   float64
	RateLimitBurst int
	Gatherer       prometheus.Gatherer
}

// Server serves the relay HTTP API.
type Server struct {
	store    *Store
	hub      *Hub
	log      *slog.Logger
	metrics  *metrics.Collector
	gatherer prometheus.Gatherer
	limiter  *clientLimiter
	upgrader websocket.Upgrader
}

// NewServer wires a Server over store. A nil logger discards output.
func NewServer(store *Store, log *slog.Logger, m *metrics.Collector, opts Options) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{
		store:    store,
		hub:      NewHub(m),
		log:      log,
		metrics:  m,
		gatherer: opts.Gatherer,
		limiter:  newClientLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
		upgrader: websocket.Upgrader{
			// Browser clients are served from any origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Hub returns the live feed hub.
func (s *Server) Hub() *Hub { return s.hub }

// Handler returns the routed API with logging, metrics, CORS and rate
// limiting applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/users/register", s.handleRegister)
	mux.HandleFunc("GET /api/users/search", s.handleSearch)
	mux.HandleFunc("GET /api/users/{id}", s.handleGetUser)
	mux.HandleFunc("POST /api/messages/{$}", s.handlePostMessage)
	mux.HandleFunc("GET /api/messages/history", s.handleHistory)
	mux.HandleFunc("GET /api/messages/live", s.handleLive)
	if s.gatherer != nil {
		mux.Handle("GET /metrics", metrics.Handler(s.gatherer))
	}
	return s.accessLog(cors(s.rateLimit(mux)))
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("relay listening", slog.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type registerRequest struct {
	Username  *string `json:"username"`
	PublicKey *string `json:"public_key"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Username == nil || in.PublicKey == nil {
		writeError(w, http.StatusUnprocessableEntity, "username and public_key are required")
		return
	}
	username := strings.TrimSpace(*in.Username)
	if username == "" {
		writeError(w, http.StatusBadRequest, "Username cannot be empty")
		return
	}
	if strings.TrimSpace(*in.PublicKey) == "" {
		writeError(w, http.StatusBadRequest, "Public key cannot be empty")
		return
	}
	u, err := s.store.RegisterUser(r.Context(), username, *in.PublicKey)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !r.URL.Query().Has("q") {
		writeError(w, http.StatusUnprocessableEntity, "q is required")
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusOK, []domain.PeerIdentity{})
		return
	}
	users, err := s.store.SearchUsers(r.Context(), q)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseUserID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "id must be an integer")
		return
	}
	u, err := s.store.GetUser(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type messageRequest struct {
	FromID     *domain.UserID `json:"from_id"`
	ToID       *domain.UserID `json:"to_id"`
	IV         *string        `json:"iv"`
	Ciphertext *string        `json:"ciphertext"`
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var in messageRequest
	if !decodeBody(w, r, &in) {
		return
	}
	if in.FromID == nil || in.ToID == nil || in.IV == nil || in.Ciphertext == nil {
		writeError(w, http.StatusUnprocessableEntity, "from_id, to_id, iv and ciphertext are required")
		return
	}
	rec, err := s.store.InsertMessage(r.Context(), domain.WireRecord{
		FromID:     *in.FromID,
		ToID:       *in.ToID,
		IV:         *in.IV,
		Ciphertext: *in.Ciphertext,
	})
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.hub.Publish(rec)
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	me, err1 := domain.ParseUserID(r.URL.Query().Get("user_id"))
	peer, err2 := domain.ParseUserID(r.URL.Query().Get("peer_id"))
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusUnprocessableEntity, "user_id and peer_id must be integers")
		return
	}
	recs, err := s.store.History(r.Context(), me, peer)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	me, err := domain.ParseUserID(r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "user_id must be an integer")
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		return
	}
	defer conn.Close()

	records, cancel := s.hub.Subscribe(me)
	defer cancel()

	// Clients never send data frames; reading only surfaces the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(livePingInterval)
	defer ping.Stop()
	for {
		select {
		case rec, ok := <-records:
			if !ok {
				msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "subscriber too slow")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(liveWriteTimeout))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
			if err := conn.WriteJSON(rec); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteTimeout)); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("request failed",
		slog.String("path", r.URL.Path),
		slog.String("request_id", w.Header().Get(requestIDHeader)),
		slog.Any("err", err),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") && !s.limiter.allow(clientKey(r), time.Now()) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// decodeBody decodes a JSON request body into v, writing a 422 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}
