package host

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	peerSendBuffer = 64
	writeTimeout   = 5 * time.Second
	readLimit      = 1024 // Leaderboard frames are well under this
)

// peer is one game server connected to the hub.
type peer struct {
	ws     *websocket.Conn
	sendCh chan Message
	done   chan struct{}
	once   sync.Once
	id     string
	logger *log.Logger

	names map[string]struct{} // Names registered through this peer; guarded by Hub.mu
}

func newPeer(ws *websocket.Conn, id string, logger *log.Logger) *peer {
	return &peer{
		ws:     ws,
		sendCh: make(chan Message, peerSendBuffer),
		done:   make(chan struct{}),
		id:     id,
		logger: logger.With("peer", id),
		names:  make(map[string]struct{}),
	}
}

// send queues msg without blocking. A full buffer drops it.
func (p *peer) send(msg Message) {
	select {
	case p.sendCh <- msg:
	default:
		p.logger.Warn("send buffer full, dropping message", "event", msg.Event)
	}
}

// sendWait queues msg, waiting for buffer space. Returns false if the peer
// closed first.
func (p *peer) sendWait(msg Message) bool {
	select {
	case p.sendCh <- msg:
		return true
	case <-p.done:
		return false
	}
}

// readLoop decodes frames until the connection fails.
func (p *peer) readLoop(ctx context.Context) <-chan Message {
	ch := make(chan Message, peerSendBuffer)
	go func() {
		defer close(ch)
		for {
			var msg Message
			if err := wsjson.Read(ctx, p.ws, &msg); err != nil {
				p.logger.Debug("read failed", "err", err)
				p.close()
				return
			}
			select {
			case ch <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func (p *peer) writeLoop(ctx context.Context) {
	for {
		select {
		case msg := <-p.sendCh:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, p.ws, msg)
			cancel()
			if err != nil {
				p.logger.Debug("write failed", "err", err)
				p.close()
				return
			}
		case <-p.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (p *peer) close() {
	p.once.Do(func() {
		close(p.done)
		p.ws.Close(websocket.StatusNormalClosure, "")
	})
}
