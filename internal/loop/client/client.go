package client

import (
	"bufio"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/AlanFayz/Speedy-Jumper/internal/draw"
	"github.com/AlanFayz/Speedy-Jumper/internal/input"
	"github.com/AlanFayz/Speedy-Jumper/internal/leaderboard"
	"github.com/AlanFayz/Speedy-Jumper/internal/loop/config"
	"github.com/AlanFayz/Speedy-Jumper/internal/loop/game"
	"github.com/AlanFayz/Speedy-Jumper/internal/loop/server"
	"github.com/AlanFayz/Speedy-Jumper/internal/object"
	"github.com/AlanFayz/Speedy-Jumper/internal/physics"
	"github.com/AlanFayz/Speedy-Jumper/internal/timer"
)

// keyboardAimDistance is how far from the player's centre the arrow keys
// place the aim point.
const keyboardAimDistance = 0.3

// Client handles rendering and input for a single connection.
type Client struct {
	server       server.GameServer
	handle       *server.ClientHandle
	session      *leaderboard.Session
	machine      *game.Machine
	state        *ClientState
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates UI text for chunked output
	writer       io.Writer
	inputStream  *input.Stream
	input        input.Input
	lastInput    time.Time
	username     string
	termSizeFunc draw.TermSizeFunc
	logger       *log.Logger
	styles       styles
	field        object.Screen // Playfield extent in logical coordinates
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	Logger       *log.Logger
	// Renderer styles the screens. Defaults to a 256-colour renderer on the
	// client's writer.
	Renderer *lipgloss.Renderer
	Muted    bool // Disable the terminal bell
}

// NewClient creates a new client connected to the given server.
func NewClient(gs server.GameServer, r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = lipgloss.NewRenderer(w)
		renderer.SetColorProfile(termenv.ANSI256)
	}

	handle := gs.RegisterClient(opts.Username)
	logger = logger.With("client", handle.ID)

	// Create canvas with clamped dimensions for max render resolution
	termWidth, termHeight, _ := draw.TerminalSizeRawWith(termSizeFunc)
	renderWidth, renderHeight, offsetCol, offsetRow := draw.ClampTermSize(termWidth, termHeight, config.MaxTermWidth, config.MaxTermHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, config.FieldWidth, config.FieldHeight)
	canvas.SetOffset(offsetCol, offsetRow)
	chunkWriter := draw.NewChunkWriter(w, offsetCol, offsetRow)

	session := gs.NewSession()
	machine := game.New(game.Options{
		Clock:   timer.NewSystemClock(),
		Audio:   &bellAudio{cw: chunkWriter, muted: opts.Muted},
		Session: session,
		Logger:  logger,
		Name:    opts.Username,
	})

	return &Client{
		server:       gs,
		handle:       handle,
		session:      session,
		machine:      machine,
		state:        NewClientState(),
		canvas:       canvas,
		chunkWriter:  chunkWriter,
		writer:       w,
		lastInput:    time.Now(),
		inputStream:  input.StartStream(r),
		username:     opts.Username,
		termSizeFunc: termSizeFunc,
		logger:       logger,
		styles:       newStyles(renderer),
		field:        object.Screen{Width: config.FieldWidth, Height: config.FieldHeight},
	}
}

// Run starts the client loop. Blocks until the client disconnects or server stops.
// The client's leaderboard entry is withdrawn on every exit path.
func (c *Client) Run() error {
	defer c.server.UnregisterClient(c.handle.ID)
	defer c.session.Close()

	draw.HideCursor(c.writer)
	draw.EnableMouse(c.writer)
	defer draw.ShowCursor(c.writer)
	defer draw.DisableMouse(c.writer)
	draw.ClearScreen(c.writer)

	lastTime := time.Now()

	for c.state.Running {
		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		// Process input
		c.processInput()

		// Check for server events
		c.processServerEvents()

		// Handle screen resize
		c.updateScreen()

		if c.state.Shutdown {
			c.updateShutdownState()
		} else {
			c.machine.Step(c.state.delta, c.gameInput())
		}

		// Draw frame
		if err := c.drawFrame(); err != nil {
			c.logger.Debug("frame write failed", "err", err)
			return err
		}

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	draw.ClearScreen(c.writer)
	return nil
}

// processInput reads input and tracks activity.
func (c *Client) processInput() {
	c.input = input.ReadInput(c.inputStream)
	in := c.input

	if len(in.Pressed) > 0 {
		c.lastInput = time.Now()
		c.state.isInactive = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityDisconnectUser {
		c.logger.Info("disconnecting inactive client")
		c.state.Running = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityWarnUser {
		c.state.isInactive = true
	}

	if in.HasMouse {
		c.trackMouse(in.Mouse)
	}

	if in.Quit {
		c.state.Running = false
	}
	if c.state.Shutdown && (in.Escape || hasRune(in.Text, 'q', 'Q')) {
		c.state.Running = false
	}
}

// trackMouse records the pointer in playfield coordinates. Reports over
// the border or the margin outside the playfield are ignored.
func (c *Client) trackMouse(ev input.MouseEvent) {
	x, y := c.canvas.TerminalToLogical(ev.Col, ev.Row)
	p := physics.V(x, y)
	if !c.field.Bounds().Contains(p) {
		return
	}
	c.state.pointer = p
	c.state.hasMouse = true
}

// gameInput maps this frame's keys and mouse to machine input for the
// current phase.
func (c *Client) gameInput() game.Input {
	in := c.input
	switch c.machine.Phase() {
	case game.PhaseMenu:
		if in.Escape {
			c.state.Running = false
		}
		return game.Input{Text: in.Text, Backspace: in.Backspace, Confirm: in.Enter}

	case game.PhasePlaying:
		gi := game.Input{Boost: in.Space || in.Click}
		if dx, dy := in.Arrows(); dx != 0 || dy != 0 {
			dir := physics.V(dx, dy).NormalizeOrZero()
			gi.Pointer = c.machine.Player().Center().Add(dir.Scale(keyboardAimDistance))
			gi.HasPointer = true
		} else if c.state.hasMouse {
			gi.Pointer = c.state.pointer
			gi.HasPointer = true
		}
		return gi

	case game.PhaseEndScreen:
		if hasRune(in.Text, 'q', 'Q') {
			c.state.Running = false
		}
		return game.Input{
			PlayAgain: in.Enter || in.Click || hasRune(in.Text, ' '),
			MainMenu:  in.Escape || hasRune(in.Text, 'm', 'M'),
		}
	}
	return game.Input{}
}

func hasRune(text []rune, want ...rune) bool {
	for _, r := range text {
		if slices.Contains(want, r) {
			return true
		}
	}
	return false
}

// processServerEvents handles events from the server.
func (c *Client) processServerEvents() {
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				// Server closed the channel
				c.state.Running = false
				return
			}
			switch event.Type {
			case server.EventServerShutdown:
				if !c.state.Shutdown {
					c.state.Shutdown = true
					c.state.shutdownTimer = config.ShutdownDisplaySeconds
				}
			}
		default:
			return
		}
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area (e.g. old borders or offset content).
func (c *Client) updateScreen() {
	termWidth, termHeight, err := draw.TerminalSizeRawWith(c.termSizeFunc)
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := draw.ClampTermSize(termWidth, termHeight, config.MaxTermWidth, config.MaxTermHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		draw.ClearScreen(c.writer)
		c.canvas.ForceRedraw()
	}

	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// updateShutdownState handles the shutdown screen countdown.
func (c *Client) updateShutdownState() {
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}
