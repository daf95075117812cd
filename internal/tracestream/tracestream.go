// Package tracestream broadcasts interpreter trace lines to connected
// WebSocket clients while a run is in progress, so a browser or CLI
// client can watch execution live instead of reading the 3_execution
// file after the fact. A mutex-guarded client map feeds a
// broadcast-to-all loop: a one-way trace tap, not a bidirectional
// socket server.
package tracestream

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Server accepts WebSocket clients on a single endpoint and fans every
// Broadcast call out to all of them.
type Server struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client
}

type client struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	closed bool
}

// New creates a Server. CheckOrigin always allows: this is a local
// teaching tool, not a public endpoint.
func New() *Server {
	return &Server{
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler upgrades an HTTP request to a WebSocket and registers the
// resulting connection as a trace subscriber until it disconnects.
func (s *Server) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	id := fmt.Sprintf("client_%d", time.Now().UnixNano())
	c := &client{conn: conn}

	s.mu.Lock()
	s.clients[id] = c
	s.mu.Unlock()

	go s.readUntilClosed(id, c)
}

// readUntilClosed drains (and discards) client reads; its only job is
// to notice disconnects, since this is a one-way trace feed.
func (s *Server) readUntilClosed(id string, c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.mu.Lock()
			c.closed = true
			c.mu.Unlock()
			s.mu.Lock()
			delete(s.clients, id)
			s.mu.Unlock()
			return
		}
	}
}

// Broadcast sends line to every connected client, dropping any client
// whose write fails.
func (s *Server) Broadcast(line string) {
	s.mu.RLock()
	clients := make(map[string]*client, len(s.clients))
	for id, c := range s.clients {
		clients[id] = c
	}
	s.mu.RUnlock()

	for id, c := range clients {
		c.mu.Lock()
		if !c.closed {
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				c.closed = true
				s.mu.Lock()
				delete(s.clients, id)
				s.mu.Unlock()
			}
		}
		c.mu.Unlock()
	}
}

// ListenAndServe starts an HTTP server exposing the trace WebSocket at
// /trace. It blocks until the server stops or fails.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/trace", s.Handler)
	return http.ListenAndServe(addr, mux)
}
