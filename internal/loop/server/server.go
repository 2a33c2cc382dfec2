package server

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/AlanFayz/Speedy-Jumper/internal/leaderboard"
)

// GameServer is the interface clients use to communicate with the game server.
// Decouples the Client from the concrete Server implementation, enabling
// testing and potential network-based server implementations.
type GameServer interface {
	RegisterClient(username string) *ClientHandle
	UnregisterClient(clientID int)
	NewSession() *leaderboard.Session
	Players() int
}

// Server owns the process-wide leaderboard and tracks connected clients.
// Each client simulates its own run; the server only shares the board.
type Server struct {
	store    *leaderboard.Store
	notifier leaderboard.Notifier
	logger   *log.Logger

	mu           sync.RWMutex
	clients      map[int]*ClientHandle
	nextClientID int
	shuttingDown bool
}

// Compile-time check that Server implements GameServer.
var _ GameServer = (*Server)(nil)

// ClientHandle represents a client's connection to the server.
type ClientHandle struct {
	ID       int
	Username string           // SSH user or local login, for logs
	EventsCh chan ClientEvent // Events sent to client (shutdown, etc.)
}

// ClientEvent represents an event sent from server to client.
type ClientEvent struct {
	Type ClientEventType
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventServerShutdown ClientEventType = iota
)

// NewServer creates a server around store. Sessions it hands out report
// through notifier; nil means no external host.
func NewServer(store *leaderboard.Store, notifier leaderboard.Notifier, logger *log.Logger) *Server {
	if notifier == nil {
		notifier = leaderboard.NopNotifier{}
	}
	return &Server{
		store:        store,
		notifier:     notifier,
		logger:       logger,
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
	}
}

// Store returns the shared leaderboard.
func (s *Server) Store() *leaderboard.Store {
	return s.store
}

// NewSession creates a leaderboard session bound to the shared store.
// The caller must Close it.
func (s *Server) NewSession() *leaderboard.Session {
	return leaderboard.NewSession(s.store, s.notifier)
}

// RegisterClient registers a new client with the given username and returns its handle.
// A client joining during shutdown is told immediately.
func (s *Server) RegisterClient(username string) *ClientHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle := &ClientHandle{
		ID:       s.nextClientID,
		Username: username,
		EventsCh: make(chan ClientEvent, 16),
	}
	s.nextClientID++
	s.clients[handle.ID] = handle

	if s.shuttingDown {
		handle.EventsCh <- ClientEvent{Type: EventServerShutdown}
	}
	s.logger.Debug("client registered", "id", handle.ID, "user", username, "players", len(s.clients))
	return handle
}

// UnregisterClient removes a client from the server and closes its event channel.
func (s *Server) UnregisterClient(clientID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle, ok := s.clients[clientID]
	if !ok {
		return
	}
	close(handle.EventsCh)
	delete(s.clients, clientID)
	s.logger.Debug("client unregistered", "id", clientID, "players", len(s.clients))
}

// Players returns the number of connected clients.
func (s *Server) Players() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Shutdown gracefully shuts down the server by notifying all connected clients
// and waiting for them to disconnect (up to the given timeout).
// Reports whether every client left in time.
func (s *Server) Shutdown(timeout time.Duration) bool {
	s.mu.Lock()
	s.shuttingDown = true
	for _, handle := range s.clients {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
		default:
		}
	}
	s.mu.Unlock()

	// Wait for all clients to disconnect, or timeout
	deadline := time.After(timeout)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if s.Players() == 0 {
			return true
		}
		select {
		case <-deadline:
			s.logger.Warn("shutdown timed out", "remaining", s.Players())
			return false
		case <-ticker.C:
		}
	}
}
