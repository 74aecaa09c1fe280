// Package spectate broadcasts training and replay rounds to websocket
// spectators.
package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/flappy-evo/internal/evolve"
	"github.com/vovakirdan/flappy-evo/internal/game"
)

const (
	sendBuffer   = 64
	writeTimeout = 5 * time.Second
	readTimeout  = 60 * time.Second
	pingPeriod   = 30 * time.Second
)

// Message is one frame sent to spectators.
type Message struct {
	Type       string                  `json:"type"` // "snapshot" or "generation"
	Snapshot   *game.Snapshot          `json:"snapshot,omitempty"`
	Generation *evolve.GenerationStats `json:"generation,omitempty"`
}

// Hub fans messages out to connected spectators. Publishing never blocks:
// a spectator whose queue is full misses the frame.
type Hub struct {
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	latest  []byte // last snapshot, sent to new spectators
	closed  bool
}

type client struct {
	ws   *websocket.Conn
	send chan []byte
}

// NewHub creates an empty hub.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Clients returns the number of connected spectators.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish sends a round snapshot. It is kept as the latest frame even when
// nobody is watching yet.
func (h *Hub) Publish(snap game.Snapshot) error {
	data, err := json.Marshal(Message{Type: "snapshot", Snapshot: &snap})
	if err != nil {
		return err
	}
	h.broadcast(data, true)
	return nil
}

// PublishGeneration sends the stats of a finished generation.
func (h *Hub) PublishGeneration(stats evolve.GenerationStats) error {
	data, err := json.Marshal(Message{Type: "generation", Generation: &stats})
	if err != nil {
		return err
	}
	h.broadcast(data, false)
	return nil
}

func (h *Hub) broadcast(data []byte, snapshot bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	if snapshot {
		h.latest = data
	}
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// ServeHTTP upgrades the request and registers the spectator.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &client{ws: ws, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		ws.Close()
		return
	}
	h.clients[c] = struct{}{}
	if h.latest != nil {
		c.send <- h.latest
	}
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("spectator joined", "remote", r.RemoteAddr, "spectators", n)
	go h.writePump(c)
	go h.readPump(c)
}

// remove unregisters c and ends its write pump.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.logger.Info("spectator left", "remote", c.ws.RemoteAddr(), "spectators", len(h.clients))
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

// readPump discards client messages and detects disconnects.
func (h *Hub) readPump(c *client) {
	defer h.remove(c)
	c.ws.SetReadLimit(1 << 10)
	c.ws.SetReadDeadline(time.Now().Add(readTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(readTimeout))
	})
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}

// Close disconnects every spectator and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// Serve runs an HTTP server with the hub at /ws until ctx is cancelled.
func Serve(ctx context.Context, addr string, hub *Hub) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("flappy-evo spectator feed: connect a websocket client to /ws\n"))
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
