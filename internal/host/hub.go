package host

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/coder/websocket"

	"github.com/AlanFayz/Speedy-Jumper/internal/leaderboard"
)

// HubStats holds live host metrics.
type HubStats struct {
	Peers            int    `json:"peers"`
	TotalConnections uint64 `json:"totalConnections"`
	Players          int    `json:"players"`
}

// Hub is the shared leaderboard host. It keeps its own store, applies
// events from connected game servers and fans the result out to the others.
type Hub struct {
	store  *leaderboard.Store
	logger *log.Logger

	mu    sync.Mutex
	peers map[*peer]struct{}

	nextID           atomic.Uint64
	totalConnections atomic.Uint64

	originPatterns []string
}

// NewHub creates a hub backed by store.
func NewHub(store *leaderboard.Store, logger *log.Logger, originPatterns []string) *Hub {
	return &Hub{
		store:          store,
		logger:         logger,
		peers:          make(map[*peer]struct{}),
		originPatterns: originPatterns,
	}
}

// Store returns the hub's leaderboard.
func (h *Hub) Store() *leaderboard.Store {
	return h.store
}

// Stats returns a snapshot of current host metrics.
func (h *Hub) Stats() HubStats {
	h.mu.Lock()
	peers := len(h.peers)
	h.mu.Unlock()
	return HubStats{
		Peers:            peers,
		TotalConnections: h.totalConnections.Load(),
		Players:          h.store.Len(),
	}
}

// HandleWS upgrades the request and serves one peer until it disconnects.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	acceptOpts := &websocket.AcceptOptions{}
	if len(h.originPatterns) > 0 {
		acceptOpts.OriginPatterns = h.originPatterns
	}

	ws, err := websocket.Accept(w, r, acceptOpts)
	if err != nil {
		h.logger.Warn("websocket accept failed", "err", err)
		return
	}
	ws.SetReadLimit(readLimit)

	h.totalConnections.Add(1)
	p := newPeer(ws, fmt.Sprintf("peer-%d", h.nextID.Add(1)), h.logger)
	p.logger.Info("peer connected", "remote", r.RemoteAddr)

	// Connection outlives the request context once upgraded
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.writeLoop(ctx)

	h.join(p)
	defer h.leave(p)

	for msg := range p.readLoop(ctx) {
		h.apply(p, msg)
	}
	p.logger.Info("peer disconnected")
}

// join registers p and replays the current board to it, followed by an
// end-of-replay marker.
func (h *Hub) join(p *peer) {
	h.mu.Lock()
	h.peers[p] = struct{}{}
	h.mu.Unlock()

	// The replay must arrive whole: relays drop names missing from it.
	for _, e := range h.store.Snapshot() {
		if !p.sendWait(Message{Event: EventUpdatePlayer, Name: e.Name, Score: e.Score}) {
			return
		}
	}
	p.sendWait(Message{Event: EventReplayDone})
}

// leave withdraws every name registered through p.
func (h *Hub) leave(p *peer) {
	p.close()

	h.mu.Lock()
	delete(h.peers, p)
	names := p.names
	p.names = nil
	h.mu.Unlock()

	for name := range names {
		h.store.Remove(name)
		h.broadcast(p, Message{Event: EventUpdatePlayer, Name: name, Score: leaderboard.Withdraw})
	}
}

// apply handles one inbound event from p.
func (h *Hub) apply(p *peer, msg Message) {
	name := sanitizeName(msg.Name)
	if name == "" {
		return
	}

	var score float64
	switch msg.Event {
	case EventPlayerName:
		score = 0
	case EventPlayerTime:
		score = msg.Time
		if score < 0 {
			score = leaderboard.Withdraw
		}
	default:
		p.logger.Debug("unknown event", "event", msg.Event)
		return
	}

	h.store.Update(name, score)

	h.mu.Lock()
	if p.names != nil {
		if score < 0 {
			delete(p.names, name)
		} else {
			p.names[name] = struct{}{}
		}
	}
	h.mu.Unlock()

	h.broadcast(p, Message{Event: EventUpdatePlayer, Name: name, Score: score})
}

// broadcast sends msg to every peer except from. The sender already
// applied the event locally, so an echo could reorder its own updates.
func (h *Hub) broadcast(from *peer, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for p := range h.peers {
		if p != from {
			p.send(msg)
		}
	}
}

// HandleLeaderboard serves the ranked board as JSON.
func (h *Hub) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ranked := h.store.Snapshot().Ranked()
	if ranked == nil {
		ranked = leaderboard.Snapshot{}
	}
	json.NewEncoder(w).Encode(ranked)
}

// HandleStats serves Stats as JSON.
func (h *Hub) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Stats())
}
