package host

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/AlanFayz/Speedy-Jumper/internal/leaderboard"
)

const (
	relayQueueSize = 256
	minBackoff     = 500 * time.Millisecond
	maxBackoff     = 10 * time.Second
	drainTimeout   = 2 * time.Second // Budget for flushing the queue on stop
)

// Relay connects a game server to the hub. It implements
// leaderboard.Notifier and feeds inbound updates into the local store.
type Relay struct {
	url    string
	store  *leaderboard.Store
	logger *log.Logger

	queue     chan Message
	connected atomic.Bool
	dropped   atomic.Uint64

	mu     sync.Mutex
	local  map[string]struct{} // Names registered by this server's sessions
	remote map[string]struct{} // Names learned from the hub
}

var _ leaderboard.Notifier = (*Relay)(nil)

// NewRelay creates a relay for the hub at url (ws:// or wss://).
// Nothing is dialled until Run.
func NewRelay(url string, store *leaderboard.Store, logger *log.Logger) *Relay {
	return &Relay{
		url:    url,
		store:  store,
		logger: logger,
		queue:  make(chan Message, relayQueueSize),
		local:  make(map[string]struct{}),
		remote: make(map[string]struct{}),
	}
}

// Connect returns the notifier sessions should report through and a stop
// function. An empty url means no host: NopNotifier and a no-op stop.
// Otherwise a Relay runs in the background; stop ends it after flushing
// queued events and is safe to call more than once.
func Connect(ctx context.Context, url string, store *leaderboard.Store, logger *log.Logger) (leaderboard.Notifier, func()) {
	if url == "" {
		return leaderboard.NopNotifier{}, func() {}
	}
	r := NewRelay(url, store, logger)
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run(ctx)
	}()

	var once sync.Once
	return r, func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

// NotifyRegister queues a player_name event.
func (r *Relay) NotifyRegister(name string) {
	r.trackLocal(name, true)
	r.enqueue(Message{Event: EventPlayerName, Name: name})
}

// NotifyTime queues a player_time event.
func (r *Relay) NotifyTime(name string, t float64) {
	if t < 0 {
		r.trackLocal(name, false)
	}
	r.enqueue(Message{Event: EventPlayerTime, Name: name, Time: t})
}

func (r *Relay) trackLocal(name string, owned bool) {
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if owned {
		r.local[name] = struct{}{}
	} else {
		delete(r.local, name)
	}
}

// enqueue never blocks; the event is dropped when the queue is full.
func (r *Relay) enqueue(msg Message) {
	if msg.Name == "" {
		return
	}
	select {
	case r.queue <- msg:
	default:
		r.dropped.Add(1)
		r.logger.Debug("relay queue full, dropping event", "event", msg.Event, "name", msg.Name)
	}
}

// Connected reports whether the relay currently holds a hub connection.
func (r *Relay) Connected() bool {
	return r.connected.Load()
}

// Dropped returns how many events were dropped because the queue was full.
func (r *Relay) Dropped() uint64 {
	return r.dropped.Load()
}

// Run dials the hub and keeps the connection alive, re-dialling with
// exponential backoff. It returns when ctx is cancelled, after flushing
// the queue to a live connection.
func (r *Relay) Run(ctx context.Context) {
	backoff := minBackoff
	for {
		conn, _, err := websocket.Dial(ctx, r.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			r.logger.Warn("host unreachable", "url", r.url, "err", err, "retry", backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}

		backoff = minBackoff
		r.logger.Info("connected to host", "url", r.url)
		r.serve(ctx, conn)
		if ctx.Err() != nil {
			return
		}
		r.logger.Warn("host connection lost", "url", r.url)
	}
}

// serve pumps the queue to conn and applies inbound updates until either
// direction fails or ctx is cancelled.
func (r *Relay) serve(ctx context.Context, conn *websocket.Conn) {
	conn.SetReadLimit(readLimit)
	r.connected.Store(true)
	defer r.connected.Store(false)
	defer conn.CloseNow()

	// Cancelling a read closes the connection, so reads are not tied to
	// ctx: the queue still drains after a stop.
	readCtx, stopRead := context.WithCancel(context.Background())
	defer stopRead()
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		r.readLoop(readCtx, conn)
	}()

	for {
		select {
		case <-ctx.Done():
			r.drain(conn)
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-readDone:
			return
		case msg := <-r.queue:
			if err := r.write(conn, msg, time.Now().Add(writeTimeout)); err != nil {
				r.logger.Debug("relay write failed", "err", err)
				return
			}
		}
	}
}

func (r *Relay) write(conn *websocket.Conn, msg Message, deadline time.Time) error {
	wctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()
	return wsjson.Write(wctx, conn, msg)
}

// drain flushes whatever is queued within drainTimeout, so withdrawals
// from sessions closed during shutdown reach the hub.
func (r *Relay) drain(conn *websocket.Conn) {
	deadline := time.Now().Add(drainTimeout)
	for {
		select {
		case msg := <-r.queue:
			if err := r.write(conn, msg, deadline); err != nil {
				r.logger.Debug("relay drain failed", "err", err, "left", len(r.queue))
				return
			}
		default:
			return
		}
	}
}

// readLoop applies inbound updates. Names seen before the end-of-replay
// marker make up the hub's board; remembered remote names missing from it
// were withdrawn while this relay was disconnected.
func (r *Relay) readLoop(ctx context.Context, conn *websocket.Conn) {
	seen := make(map[string]struct{})
	for {
		var msg Message
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return
		}
		switch {
		case msg.Event == EventReplayDone && seen != nil:
			r.reconcile(seen)
			seen = nil
		case msg.Event == EventUpdatePlayer && msg.Name != "":
			if seen != nil {
				seen[msg.Name] = struct{}{}
			}
			r.applyRemote(msg.Name, msg.Score)
		}
	}
}

// applyRemote mirrors a hub update into the store. Names owned by local
// sessions are left alone.
func (r *Relay) applyRemote(name string, score float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.local[name]; ok {
		return
	}
	if score < 0 {
		delete(r.remote, name)
	} else {
		r.remote[name] = struct{}{}
	}
	r.store.Update(name, score)
}

// reconcile removes remote names the hub no longer has.
func (r *Relay) reconcile(seen map[string]struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name := range r.remote {
		if _, ok := seen[name]; ok {
			continue
		}
		delete(r.remote, name)
		r.store.Remove(name)
		r.logger.Debug("remote name withdrawn while disconnected", "name", name)
	}
}
