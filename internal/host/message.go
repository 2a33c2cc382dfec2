// Package host relays leaderboard events between game servers over
// websockets. The Hub is the shared host; each game server runs a Relay.
package host

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/AlanFayz/Speedy-Jumper/internal/loop/config"
)

// Event names on the wire.
const (
	EventPlayerName   = "player_name"   // Game server -> hub: a name was claimed
	EventPlayerTime   = "player_time"   // Game server -> hub: best time, -1 withdraws
	EventUpdatePlayer = "update_player" // Hub -> game servers: apply to the local board
	EventReplayDone   = "replay_done"   // Hub -> game servers: the board replay after connect is complete
)

// Message is one JSON text frame.
type Message struct {
	Event string  `json:"event"`
	Name  string  `json:"name"`
	Time  float64 `json:"time,omitempty"`
	Score float64 `json:"score,omitempty"`
}

// sanitizeName strips control characters and clamps the length. Invalid
// UTF-8 yields an empty name, which the hub ignores.
func sanitizeName(raw string) string {
	if !utf8.ValidString(raw) {
		return ""
	}
	cleaned := make([]rune, 0, len(raw))
	for _, r := range strings.TrimSpace(raw) {
		if unicode.IsPrint(r) {
			cleaned = append(cleaned, r)
		}
	}
	if len(cleaned) > config.MaxNameLength {
		cleaned = cleaned[:config.MaxNameLength]
	}
	return string(cleaned)
}
