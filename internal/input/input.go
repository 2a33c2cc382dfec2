// Package input turns the raw terminal byte stream into per-frame input:
// held movement keys, edge-triggered keys, typed text and mouse reports.
package input

import (
	"bufio"
	"time"
	"unicode"
	"unicode/utf8"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
// Terminals only repeat keys, they never report releases.
const keyHoldDuration = 120 * time.Millisecond

// Mouse buttons as encoded in SGR reports.
const (
	ButtonLeft   = 0
	ButtonMiddle = 1
	ButtonRight  = 2
)

// MouseEvent is one decoded SGR mouse report.
type MouseEvent struct {
	Col, Row int // 1-based absolute terminal position
	Button   int
	Press    bool // False for a release
	Motion   bool // Pointer moved (with or without a held button)
	Wheel    bool
}

// Input represents the current frame's input state.
type Input struct {
	// Held keys stay true for keyHoldDuration after the last repeat.
	Left  bool
	Right bool
	Up    bool
	Down  bool
	Space bool

	// Edge-triggered: true only for the read that saw them.
	Quit      bool // Ctrl+C, or the stream closed
	Enter     bool
	Backspace bool
	Escape    bool
	Text      []rune // Printable runes typed this read

	Mouse    MouseEvent // Last mouse report seen this read
	HasMouse bool
	Click    bool // Left button pressed this read

	Pressed []byte
}

// Arrows returns the held arrow keys as a direction with components in {-1, 0, 1}.
func (in Input) Arrows() (dx, dy float64) {
	if in.Left {
		dx--
	}
	if in.Right {
		dx++
	}
	if in.Up {
		dy--
	}
	if in.Down {
		dy++
	}
	return dx, dy
}

// keyState tracks the last time each held key was pressed.
type keyState struct {
	left  time.Time
	right time.Time
	up    time.Time
	down  time.Time
	space time.Time
}

// Parser decodes terminal bytes. It remembers held keys between reads.
type Parser struct {
	state keyState
}

// Feed parses one read worth of bytes received at now.
func (p *Parser) Feed(buf []byte, now time.Time) Input {
	in := Input{Pressed: buf}

	for i := 0; i < len(buf); {
		b := buf[i]

		if b == '\x1b' {
			n := p.parseEscape(buf[i:], now, &in)
			i += n
			continue
		}

		switch b {
		case '\x03':
			in.Quit = true
		case '\r', '\n':
			in.Enter = true
		case '\b', '\x7f':
			in.Backspace = true
		case ' ':
			p.state.space = now
			in.Text = append(in.Text, ' ')
		default:
			r, size := utf8.DecodeRune(buf[i:])
			if r != utf8.RuneError && unicode.IsPrint(r) {
				in.Text = append(in.Text, r)
			}
			i += size
			continue
		}
		i++
	}

	in.Left = now.Sub(p.state.left) < keyHoldDuration
	in.Right = now.Sub(p.state.right) < keyHoldDuration
	in.Up = now.Sub(p.state.up) < keyHoldDuration
	in.Down = now.Sub(p.state.down) < keyHoldDuration
	in.Space = now.Sub(p.state.space) < keyHoldDuration
	return in
}

// parseEscape consumes an escape sequence at the start of buf and returns
// the number of bytes used. A lone ESC is the Escape key.
func (p *Parser) parseEscape(buf []byte, now time.Time, in *Input) int {
	if len(buf) < 2 || (buf[1] != '[' && buf[1] != 'O') {
		in.Escape = true
		return 1
	}

	if buf[1] == '[' && len(buf) > 2 && buf[2] == '<' {
		if ev, n, ok := parseSGRMouse(buf); ok {
			in.Mouse = ev
			in.HasMouse = true
			if ev.Press && !ev.Motion && !ev.Wheel && ev.Button == ButtonLeft {
				in.Click = true
			}
			return n
		}
	}

	// CSI / SS3: parameters then a final byte in 0x40..0x7e
	end := 2
	for end < len(buf) && (buf[end] < 0x40 || buf[end] > 0x7e) {
		end++
	}
	if end >= len(buf) {
		return len(buf)
	}

	switch buf[end] {
	case 'A':
		p.state.up = now
	case 'B':
		p.state.down = now
	case 'C':
		p.state.right = now
	case 'D':
		p.state.left = now
	}
	return end + 1
}

// parseSGRMouse decodes "ESC [ < b ; col ; row (M|m)".
func parseSGRMouse(buf []byte) (MouseEvent, int, bool) {
	var fields [3]int
	field := 0
	digits := 0
	for i := 3; i < len(buf); i++ {
		c := buf[i]
		switch {
		case c >= '0' && c <= '9':
			fields[field] = fields[field]*10 + int(c-'0')
			digits++
		case c == ';':
			if digits == 0 || field == 2 {
				return MouseEvent{}, 0, false
			}
			field++
			digits = 0
		case c == 'M' || c == 'm':
			if field != 2 || digits == 0 {
				return MouseEvent{}, 0, false
			}
			code := fields[0]
			return MouseEvent{
				Col:    fields[1],
				Row:    fields[2],
				Button: code & 3,
				Press:  c == 'M',
				Motion: code&32 != 0,
				Wheel:  code&64 != 0,
			}, i + 1, true
		default:
			return MouseEvent{}, 0, false
		}
	}
	return MouseEvent{}, 0, false
}

// Stream delivers input bytes via a channel and tracks key state between reads.
type Stream struct {
	ch     chan byte
	parser Parser
	closed bool
	buf    []byte
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch: make(chan byte, 256),
	}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream (non-blocking) and
// parses them. A closed stream reports Quit.
func ReadInput(s *Stream) Input {
	s.buf = s.buf[:0]

drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			s.buf = append(s.buf, b)
		default:
			break drain
		}
	}

	in := s.parser.Feed(s.buf, time.Now())
	if s.closed {
		in.Quit = true
	}
	return in
}
