package client

import (
	"time"

	"github.com/AlanFayz/Speedy-Jumper/internal/loop/game"
	"github.com/AlanFayz/Speedy-Jumper/internal/physics"
)

// ClientState holds per-connection presentation state. Game state lives
// in the machine.
type ClientState struct {
	Running       bool          // Client loop running
	Shutdown      bool          // Server is shutting down
	delta         time.Duration // Frame delta time (client-side)
	shutdownTimer float64       // Countdown before auto-disconnect on shutdown
	isInactive    bool          // Whether the client is in inactive warning state

	pointer  physics.Vec2 // Last mouse position in playfield coordinates
	hasMouse bool         // A mouse report has been seen

	// Previous frame, to detect transitions that need a full clear
	prevPhase    game.Phase
	prevShutdown bool
	wasInactive  bool
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		Running:   true,
		prevPhase: game.PhaseMenu,
	}
}
