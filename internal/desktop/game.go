// Package desktop runs the game in a window with ebiten.
package desktop

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/AlanFayz/Speedy-Jumper/internal/leaderboard"
	"github.com/AlanFayz/Speedy-Jumper/internal/loop/config"
	"github.com/AlanFayz/Speedy-Jumper/internal/loop/game"
	"github.com/AlanFayz/Speedy-Jumper/internal/physics"
)

// ScreenSize is the logical window size in pixels. The unit playfield is
// scaled to fill it.
const ScreenSize = 720

// Debug font cell size in pixels.
const (
	glyphWidth  = 6
	glyphHeight = 16
)

var (
	backgroundColor = color.RGBA{R: 0x12, G: 0x14, B: 0x1c, A: 0xff}
	helpfulColor    = color.RGBA{R: 0x4c, G: 0xd9, B: 0x64, A: 0xff}
	hurtfulColor    = color.RGBA{R: 0xe8, G: 0x4a, B: 0x5f, A: 0xff}
	viewColor       = color.RGBA{R: 0x5a, G: 0x6a, B: 0x9a, A: 0xff}
	particleColor   = color.RGBA{R: 0xff, G: 0xe0, B: 0x8a, A: 0xff}
)

// Options configures a desktop game.
type Options struct {
	Session  *leaderboard.Session
	AssetDir string
	Logger   *log.Logger
	Name     string // Prefilled into the name prompt
	Muted    bool
}

// Game implements ebiten.Game around a game.Machine.
type Game struct {
	machine *game.Machine
	assets  *Assets
	logger  *log.Logger
	chars   []rune
	frames  int
}

var _ ebiten.Game = (*Game)(nil)

// NewGame loads assets and creates the machine. It must be called once per
// process because ebiten allows a single audio context.
func NewGame(opts Options) *Game {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	assets := LoadAssets(opts.AssetDir, logger)

	var sound *speaker
	if opts.Muted {
		sound = newSpeaker(nil, assets, logger)
	} else {
		sound = newSpeaker(audio.NewContext(sampleRate), assets, logger)
	}

	return &Game{
		machine: game.New(game.Options{
			Audio:   sound,
			Session: opts.Session,
			Logger:  logger,
			Name:    opts.Name,
		}),
		assets: assets,
		logger: logger,
	}
}

// Update advances the machine one tick. Escape on the menu ends the game.
func (g *Game) Update() error {
	keys := g.readKeys()
	if keys.escape && g.machine.Phase() == game.PhaseMenu {
		return ebiten.Termination
	}
	g.machine.Step(time.Second/time.Duration(ebiten.TPS()), inputFor(g.machine.Phase(), keys))
	g.frames++
	return nil
}

// Layout fixes the logical screen; ebiten scales it to the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenSize, ScreenSize
}

// Draw renders the current phase.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	switch g.machine.Phase() {
	case game.PhaseMenu:
		g.drawMenu(screen)
	case game.PhasePlaying:
		g.drawPlayfield(screen)
		g.drawHUD(screen)
	case game.PhaseEndScreen:
		g.drawEnd(screen)
	}
}

func (g *Game) drawPlayfield(screen *ebiten.Image) {
	player := g.machine.Player()
	field := g.machine.Field()
	center := player.Center()

	cx, cy := toScreen(center)
	vector.StrokeCircle(screen, cx, cy, float32(player.ViewRadius*ScreenSize), 1, viewColor, true)

	for _, item := range field.Visible(center, player.ViewRadius) {
		x, y := toScreen(item.Bounds.Position)
		w, h := float32(item.Bounds.Size.X*ScreenSize), float32(item.Bounds.Size.Y*ScreenSize)
		if item.Hurtful {
			vector.FillRect(screen, x, y, w, h, hurtfulColor, false)
		} else {
			vector.StrokeRect(screen, x, y, w, h, 2, helpfulColor, false)
		}
	}
	for _, p := range field.Particles() {
		if p.Faded() {
			continue
		}
		x, y := toScreen(p.Position)
		vector.DrawFilledCircle(screen, x, y, 2, particleColor, true)
	}

	if g.machine.Dead() && g.frames/8%2 == 0 {
		return
	}
	g.drawSprite(screen, g.assets.Body, player.Position, player.Size, 0)
	eyeSize := physics.V(player.Size.X*0.5, player.Size.X*0.5)
	eyePos := center.Sub(eyeSize.Scale(0.5)).Sub(physics.V(0, player.Size.Y*0.15))
	g.drawSprite(screen, g.assets.Eye, eyePos, eyeSize, eyeAngle(center, g.pointer()))
}

// drawSprite draws img stretched over the playfield rectangle at pos with
// size, rotated by angle about its centre.
func (g *Game) drawSprite(screen, img *ebiten.Image, pos, size physics.Vec2, angle float64) {
	b := img.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-float64(b.Dx())/2, -float64(b.Dy())/2)
	op.GeoM.Rotate(angle)
	op.GeoM.Scale(size.X*ScreenSize/float64(b.Dx()), size.Y*ScreenSize/float64(b.Dy()))
	c := pos.Add(size.Scale(0.5)).Scale(ScreenSize)
	op.GeoM.Translate(c.X, c.Y)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(img, op)
}

func (g *Game) pointer() physics.Vec2 {
	x, y := ebiten.CursorPosition()
	return toField(x, y)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	player := g.machine.Player()
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Time: %.2f", g.machine.Elapsed().Seconds()), 8, 8)

	boosts := fmt.Sprintf("Boosts: %d", player.BoostCounter)
	ebitenutil.DebugPrintAt(screen, boosts, ScreenSize-8-len(boosts)*glyphWidth, 8)

	for i, line := range boardLines(g.machine.Leaderboard().Top(config.HUDLeaderboardRows)) {
		ebitenutil.DebugPrintAt(screen, line, ScreenSize-8-len(line)*glyphWidth, 8+(i+1)*glyphHeight)
	}

	if g.machine.Dead() {
		printCentered(screen, "You fell!", ScreenSize/2)
	}
}

func (g *Game) drawMenu(screen *ebiten.Image) {
	y := ScreenSize / 5
	printCentered(screen, "S P E E D Y   J U M P E R", y)
	y += 2 * glyphHeight
	printCentered(screen, "Stay in the air. Catch outlines, dodge solid boxes.", y)
	y += 2 * glyphHeight

	cursor := " "
	if g.frames/30%2 == 0 {
		cursor = "_"
	}
	printCentered(screen, fmt.Sprintf("Name: %-*s", config.MaxNameLength+1, g.machine.NameInput()+cursor), y)
	y += glyphHeight
	if w := g.machine.Warning(); w != "" {
		printCentered(screen, w, y)
	}
	y += 2 * glyphHeight

	for _, line := range []string{"Mouse: aim   Click/Space: boost", "Enter: start   Esc: quit"} {
		printCentered(screen, line, y)
		y += glyphHeight
	}
	y += glyphHeight

	g.drawBoard(screen, y)
}

func (g *Game) drawEnd(screen *ebiten.Image) {
	y := ScreenSize / 4
	printCentered(screen, "G A M E   O V E R", y)
	y += 2 * glyphHeight
	printCentered(screen, fmt.Sprintf("Survived: %.2fs", g.machine.SurvivalTime().Seconds()), y)
	y += glyphHeight
	printCentered(screen, fmt.Sprintf("Best:     %.2fs", g.machine.Best().Seconds()), y)
	y += 2 * glyphHeight
	printCentered(screen, "Enter/Click: play again   Esc/M: main menu", y)
	y += 2 * glyphHeight

	g.drawBoard(screen, y)
}

func (g *Game) drawBoard(screen *ebiten.Image, y int) {
	printCentered(screen, "Leaderboard", y)
	y += glyphHeight
	lines := boardLines(g.machine.Leaderboard().Top(config.LeaderboardRows))
	if len(lines) == 0 {
		printCentered(screen, "no data", y)
		return
	}
	for _, line := range lines {
		printCentered(screen, line, y)
		y += glyphHeight
	}
}

func printCentered(screen *ebiten.Image, s string, y int) {
	ebitenutil.DebugPrintAt(screen, s, (ScreenSize-len(s)*glyphWidth)/2, y)
}

// boardLines formats ranked entries one per line.
func boardLines(entries leaderboard.Snapshot) []string {
	lines := make([]string, 0, len(entries))
	for i, e := range entries {
		lines = append(lines, fmt.Sprintf("%2d. %-*s %8.2fs", i+1, config.MaxNameLength, e.Name, e.Score))
	}
	return lines
}

// toScreen converts a playfield position to pixels.
func toScreen(v physics.Vec2) (float32, float32) {
	return float32(v.X * ScreenSize), float32(v.Y * ScreenSize)
}

// toField converts a pixel position to playfield coordinates.
func toField(x, y int) physics.Vec2 {
	return physics.V(float64(x)/ScreenSize, float64(y)/ScreenSize)
}

// eyeAngle is the rotation that points the eye from center toward target.
// The texture looks right at angle zero.
func eyeAngle(center, target physics.Vec2) float64 {
	d := target.Sub(center)
	if d.IsZero() {
		return 0
	}
	return math.Atan2(d.Y, d.X)
}
