// Package game runs one player's simulation: the menu, the falling-box
// run and the end screen.
package game

import (
	"errors"
	"io"
	"math/rand/v2"
	"time"
	"unicode"

	"github.com/charmbracelet/log"

	"github.com/AlanFayz/Speedy-Jumper/internal/leaderboard"
	"github.com/AlanFayz/Speedy-Jumper/internal/loop/config"
	"github.com/AlanFayz/Speedy-Jumper/internal/object"
	"github.com/AlanFayz/Speedy-Jumper/internal/physics"
	"github.com/AlanFayz/Speedy-Jumper/internal/timer"
)

// Phase is the machine's current screen.
type Phase int

const (
	PhaseMenu      Phase = iota // Name entry and leaderboard
	PhasePlaying                // Active run
	PhaseEndScreen              // Run over, play again or back to menu
)

func (p Phase) String() string {
	switch p {
	case PhaseMenu:
		return "menu"
	case PhasePlaying:
		return "playing"
	case PhaseEndScreen:
		return "end"
	default:
		return "unknown"
	}
}

// Warnings shown in the menu after a failed claim.
const (
	WarningEmptyName    = "Please enter a name"
	WarningNameConflict = "That name is already taken"
)

// Input is one frame of player intent, already mapped from keys or mouse.
type Input struct {
	Pointer    physics.Vec2 // Aim point in playfield coordinates
	HasPointer bool
	Boost      bool

	Text      []rune // Typed characters for the name field
	Backspace bool
	Confirm   bool // Submit the name
	PlayAgain bool
	MainMenu  bool
}

// Options configures a Machine. Zero fields get working defaults.
type Options struct {
	Clock   timer.Clock
	Rand    *rand.Rand
	Audio   object.Audio
	Session *leaderboard.Session
	Logger  *log.Logger
	Name    string // Initial contents of the name field
}

// Machine is the per-player game state machine. It is not safe for
// concurrent use; the owning frame loop drives it.
type Machine struct {
	clock   timer.Clock
	rng     *rand.Rand
	audio   object.Audio
	session *leaderboard.Session
	logger  *log.Logger

	phase  Phase
	screen object.Screen

	nameInput    []rune
	warning      string
	warningTimer timer.Timer

	player *object.Player
	field  *object.Field

	runTimer    timer.Timer
	dead        bool
	deathTimer  timer.Timer
	survival    time.Duration
	best        time.Duration
	reportTimer timer.Timer
	syncTimer   timer.Timer
}

// New creates a machine in the menu phase.
func New(opts Options) *Machine {
	if opts.Clock == nil {
		opts.Clock = timer.NewSystemClock()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Audio == nil {
		opts.Audio = object.NopAudio{}
	}
	if opts.Session == nil {
		opts.Session = leaderboard.NewSession(leaderboard.NewStore(), nil)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	screen := object.Screen{Width: config.FieldWidth, Height: config.FieldHeight}
	m := &Machine{
		clock:        opts.Clock,
		rng:          opts.Rand,
		audio:        opts.Audio,
		session:      opts.Session,
		logger:       opts.Logger,
		phase:        PhaseMenu,
		screen:       screen,
		warningTimer: timer.New(opts.Clock),
		player:       object.NewCenteredPlayer(screen, opts.Clock),
		field:        object.NewField(screen, opts.Clock, opts.Rand),
		runTimer:     timer.New(opts.Clock),
		deathTimer:   timer.New(opts.Clock),
		reportTimer:  timer.New(opts.Clock),
		syncTimer:    timer.New(opts.Clock),
	}
	m.appendName([]rune(opts.Name))
	return m
}

// Step advances the machine by one frame of length dt.
func (m *Machine) Step(dt time.Duration, in Input) {
	switch m.phase {
	case PhaseMenu:
		m.stepMenu(in)
	case PhasePlaying:
		m.stepPlaying(dt, in)
	case PhaseEndScreen:
		m.stepEndScreen(in)
	}

	if m.warning != "" && m.warningTimer.HasElapsed(config.WarningDuration) {
		m.warning = ""
	}
	if m.syncTimer.HasElapsed(config.SyncInterval) {
		m.session.Sync()
		m.syncTimer.Reset()
	}
}

func (m *Machine) stepMenu(in Input) {
	if in.Backspace && len(m.nameInput) > 0 {
		m.nameInput = m.nameInput[:len(m.nameInput)-1]
	}
	m.appendName(in.Text)

	if !in.Confirm {
		return
	}

	err := m.session.Claim(string(m.nameInput))
	switch {
	case err == nil:
		m.best = 0
		m.logger.Info("name claimed", "name", m.session.Name())
		m.startRun()
	case errors.Is(err, leaderboard.ErrEmptyName):
		m.setWarning(WarningEmptyName)
	case errors.Is(err, leaderboard.ErrNameConflict):
		m.setWarning(WarningNameConflict)
		m.logger.Debug("claim rejected", "err", err)
	default:
		m.setWarning(err.Error())
		m.logger.Warn("claim failed", "err", err)
	}
}

// appendName adds printable runes up to the name length limit.
func (m *Machine) appendName(text []rune) {
	for _, r := range text {
		if len(m.nameInput) >= config.MaxNameLength {
			return
		}
		if unicode.IsPrint(r) {
			m.nameInput = append(m.nameInput, r)
		}
	}
}

func (m *Machine) setWarning(msg string) {
	m.warning = msg
	m.warningTimer.Reset()
}

// startRun resets every piece of run state and enters the playing phase.
func (m *Machine) startRun() {
	m.player = object.NewCenteredPlayer(m.screen, m.clock)
	m.field.Reset()
	m.runTimer.Reset()
	m.reportTimer.Reset()
	m.dead = false
	m.survival = 0
	m.phase = PhasePlaying
}

func (m *Machine) stepPlaying(dt time.Duration, in Input) {
	ctx := object.UpdateContext{
		Delta:  dt,
		Screen: m.screen,
		Audio:  m.audio,
	}
	if !m.dead {
		ctx.Input = object.Input{Pointer: in.Pointer, HasPointer: in.HasPointer, Boost: in.Boost}
	}

	m.field.Update(dt)
	m.player.Update(ctx)
	if !m.dead {
		ResolveCollisions(m.player, m.field.Collectibles())
	}
	m.field.Cleanup(m.player.Bounds())
	m.field.SpawnTick(m.player.Bounds(), m.runTimer.Elapsed())

	switch {
	case !m.dead && !m.player.Bounds().Intersects(m.screen.Bounds()):
		m.dead = true
		m.survival = m.runTimer.Elapsed()
		m.best = max(m.best, m.survival)
		m.deathTimer.Reset()
		m.report()
		m.logger.Info("player fell", "survived", m.survival.Round(time.Millisecond), "best", m.best.Round(time.Millisecond))
	case !m.dead && m.reportTimer.HasElapsed(config.ReportInterval):
		m.report()
	}

	if m.dead && m.deathTimer.HasElapsed(config.DeathDelay) {
		m.phase = PhaseEndScreen
	}
}

// report publishes the best time so far, counting the current run.
func (m *Machine) report() {
	best := max(m.best, m.Elapsed())
	m.session.ReportTime(best.Seconds())
	m.reportTimer.Reset()
}

func (m *Machine) stepEndScreen(in Input) {
	switch {
	case in.PlayAgain:
		m.startRun()
	case in.MainMenu:
		m.session.ReportTime(leaderboard.Withdraw)
		m.best = 0
		m.phase = PhaseMenu
	}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase { return m.phase }

// Player returns the current run's player.
func (m *Machine) Player() *object.Player { return m.player }

// Field returns the collectible field.
func (m *Machine) Field() *object.Field { return m.field }

// NameInput returns the name field contents.
func (m *Machine) NameInput() string { return string(m.nameInput) }

// Warning returns the active menu warning, or "".
func (m *Machine) Warning() string { return m.warning }

// Dead reports whether the current run's death has latched.
func (m *Machine) Dead() bool { return m.dead }

// Best returns the best survival time under the current name.
func (m *Machine) Best() time.Duration { return m.best }

// SurvivalTime returns the duration of the last finished run.
func (m *Machine) SurvivalTime() time.Duration { return m.survival }

// Elapsed returns the running time of the current run. It stops at the
// death latch.
func (m *Machine) Elapsed() time.Duration {
	if m.phase != PhasePlaying || m.dead {
		return m.survival
	}
	return m.runTimer.Elapsed()
}

// Leaderboard returns the snapshot from the last sync.
func (m *Machine) Leaderboard() leaderboard.Snapshot {
	return m.session.Leaderboard()
}

// Session returns the leaderboard session the machine reports through.
func (m *Machine) Session() *leaderboard.Session { return m.session }
