// Package console serves a local operator endpoint: a JSON status snapshot
// and a WebSocket feed of completed turns. Loopback only.
package console

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rovelle/charbot/internal/catalog"
	"github.com/rovelle/charbot/internal/config"
	"github.com/rovelle/charbot/internal/logging"
	"github.com/rovelle/charbot/internal/poller"
	"github.com/rovelle/charbot/internal/version"
)

// SessionCounter reports the number of live conversations.
type SessionCounter interface {
	Len() int
}

// Server is the local console HTTP + WebSocket server.
type Server struct {
	cfg        config.ConsoleConfig
	log        *logging.Logger
	broker     *poller.Broker
	sessions   SessionCounter
	characters *catalog.Catalog

	startedAt  time.Time
	httpServer *http.Server
	addr       string
	upgrader   websocket.Upgrader
}

// New creates a console server fed by the given broker.
func New(cfg config.ConsoleConfig, broker *poller.Broker, sessions SessionCounter, characters *catalog.Catalog, log *logging.Logger) *Server {
	return &Server{
		cfg:        cfg,
		log:        log.Sub("console"),
		broker:     broker,
		sessions:   sessions,
		characters: characters,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// statusResponse is the /status payload.
type statusResponse struct {
	Version       string   `json:"version"`
	UptimeSec     int64    `json:"uptimeSec"`
	Sessions      int      `json:"sessions"`
	Characters    []string `json:"characters"`
	DefaultChar   string   `json:"defaultCharacter"`
	FeedListeners int      `json:"feedListeners"`
}

// Start begins listening on the loopback interface. It blocks until the
// context is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.cfg.Port)

	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.withAuth(s.handleStatus))
	mux.HandleFunc("/ws", s.withAuth(s.handleWebSocket))

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(l net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.addr = ln.Addr().String()
	s.startedAt = time.Now()

	s.log.Info().Str("addr", s.addr).Msg("console server ready")

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down console server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the bound listen address, or empty if not started.
func (s *Server) Addr() string {
	return s.addr
}

// withAuth enforces the configured bearer token. WebSocket clients may pass
// it as a query parameter since browsers cannot set headers on upgrade.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Token != "" {
			var token string
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				token = strings.TrimPrefix(auth, "Bearer ")
			} else {
				token = r.URL.Query().Get("token")
			}
			if token != s.cfg.Token {
				s.log.Warn().Str("remote", r.RemoteAddr).Str("path", r.URL.Path).Msg("console auth failed")
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var chars []string
	for _, c := range s.characters.List() {
		chars = append(chars, c.ID)
	}

	resp := statusResponse{
		Version:       version.Version,
		UptimeSec:     int64(time.Since(s.startedAt).Seconds()),
		Sessions:      s.sessions.Len(),
		Characters:    chars,
		DefaultChar:   s.characters.Default().ID,
		FeedListeners: s.broker.Len(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleWebSocket upgrades the connection and streams turn events until the
// client disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	feed, cancel := s.broker.Subscribe()
	defer cancel()

	s.log.Debug().Str("remote", r.RemoteAddr).Msg("feed subscriber connected")

	// Reader goroutine: we never expect client frames, but reading is how
	// websocket close is detected.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case ev, ok := <-feed:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(ev); err != nil {
				s.log.Debug().Err(err).Msg("feed subscriber write failed")
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			s.log.Debug().Str("remote", r.RemoteAddr).Msg("feed subscriber disconnected")
			return
		case <-r.Context().Done():
			return
		}
	}
}
