package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/AlanFayz/Speedy-Jumper/internal/leaderboard"
	"github.com/AlanFayz/Speedy-Jumper/internal/loop/config"
	"github.com/AlanFayz/Speedy-Jumper/internal/loop/game"
	"github.com/AlanFayz/Speedy-Jumper/internal/object"
)

// deadBlinkFrequency is how often the fallen player blinks, in Hz.
const deadBlinkFrequency = 6.0

// styles are the lipgloss styles for one client's renderer.
type styles struct {
	title   lipgloss.Style
	banner  lipgloss.Style
	text    lipgloss.Style
	hint    lipgloss.Style
	warning lipgloss.Style
	accent  lipgloss.Style
	self    lipgloss.Style
	board   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		banner:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("214")).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 3),
		text:    r.NewStyle(),
		hint:    r.NewStyle().Faint(true),
		warning: r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		accent:  r.NewStyle().Foreground(lipgloss.Color("51")),
		self:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("51")),
		board:   r.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
	}
}

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	// On phase or overlay transitions, do a full terminal clear
	// so UI elements from the previous state don't persist on screen.
	phase := c.machine.Phase()
	if phase != c.state.prevPhase || c.state.Shutdown != c.state.prevShutdown || c.state.isInactive != c.state.wasInactive {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.state.prevPhase = phase
		c.state.prevShutdown = c.state.Shutdown
		c.state.wasInactive = c.state.isInactive
	}

	c.canvas.Clear()

	if phase == game.PhasePlaying && !c.state.Shutdown {
		if err := c.drawPlayfield(); err != nil {
			return err
		}
	}

	// Render canvas to terminal
	c.canvas.Render(c.chunkWriter)

	// Draw border when terminal exceeds max render resolution
	c.canvas.RenderBorder(c.chunkWriter)

	c.drawUI()

	return c.chunkWriter.Flush()
}

// drawPlayfield draws the player, its view radius and the collectibles
// inside it.
func (c *Client) drawPlayfield() error {
	ctx := object.DrawContext{Canvas: c.canvas}
	player := c.machine.Player()
	field := c.machine.Field()

	if err := drawAll(ctx, field.Visible(player.Center(), player.ViewRadius)); err != nil {
		return err
	}
	if err := drawAll(ctx, field.Particles()); err != nil {
		return err
	}
	if c.machine.Dead() && !object.ShouldRenderBlink(float64(time.Now().UnixMilli())/1000, deadBlinkFrequency) {
		return nil
	}
	return player.Draw(ctx)
}

func drawAll[T object.Drawable](ctx object.DrawContext, items []T) error {
	for _, item := range items {
		if err := item.Draw(ctx); err != nil {
			return err
		}
	}
	return nil
}

// writeAt writes text and marks its cells so the canvas repaints them
// next frame. Keeps shrinking text from leaving residue.
func (c *Client) writeAt(col, row int, s string) {
	width := c.chunkWriter.WriteAt(col, row, s)
	for i := range strings.Count(s, "\n") + 1 {
		c.canvas.MarkTextDirty(col, row+i, width)
	}
}

// writeCentered writes a possibly multi-line block centred on centerCol.
func (c *Client) writeCentered(centerCol, row int, s string) {
	c.writeAt(max(centerCol-lipgloss.Width(s)/2, 1), row, s)
}

// drawUI draws the text overlay for the current phase.
func (c *Client) drawUI() {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerX := termWidth / 2
	centerY := termHeight / 2

	if c.state.Shutdown {
		c.drawShutdownScreen(centerX, centerY)
		return
	}

	if c.state.isInactive {
		c.drawInactivityScreen(centerX, centerY)
		return
	}

	switch c.machine.Phase() {
	case game.PhaseMenu:
		c.drawMenuScreen(centerX, centerY)
	case game.PhasePlaying:
		c.drawPlayingHUD(termWidth, termHeight)
	case game.PhaseEndScreen:
		c.drawEndScreen(centerX, centerY)
	}
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(centerX, centerY int) {
	st := c.styles
	c.writeCentered(centerX, centerY-2, st.warning.Render("INACTIVITY WARNING"))

	msg := fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %d seconds.",
		int(config.InactivityDisconnectUser-time.Since(c.lastInput).Seconds()),
	)
	c.writeCentered(centerX, centerY, st.text.Render(msg))
	c.writeCentered(centerX, centerY+2, st.hint.Render("Press any key to continue"))
}

// drawMenuScreen draws the title, name prompt and leaderboard.
func (c *Client) drawMenuScreen(centerX, centerY int) {
	st := c.styles
	row := max(centerY-10, 1)

	banner := st.banner.Render("S P E E D Y   J U M P E R")
	c.writeCentered(centerX, row, banner)
	row += lipgloss.Height(banner) + 1

	c.writeCentered(centerX, row, st.hint.Render("Stay in the air. Catch outlines, dodge solid boxes."))
	row += 2

	cursor := " "
	if time.Now().UnixMilli()/500%2 == 0 {
		cursor = "_"
	}
	name := c.machine.NameInput()
	prompt := st.text.Render("Name: ") + st.accent.Render(fmt.Sprintf("%-*s", config.MaxNameLength+1, name+cursor))
	c.writeCentered(centerX, row, prompt)
	row++

	if w := c.machine.Warning(); w != "" {
		c.writeCentered(centerX, row, st.warning.Render(w))
	}
	row += 2

	controls := []string{
		"Mouse  . . . . . . . .  Aim",
		"Click / Space  . . .  Boost",
		"Arrows . . . Aim (no mouse)",
		"Enter  . . . . . . .  Start",
		"Esc / Ctrl+C . . . . . Quit",
	}
	for _, line := range controls {
		c.writeCentered(centerX, row, st.hint.Render(line))
		row++
	}
	row++

	c.writeCentered(centerX, row, c.renderBoard(c.machine.Leaderboard().Top(config.LeaderboardRows), "Leaderboard"))
}

// renderBoard renders ranked entries inside a bordered box.
func (c *Client) renderBoard(entries leaderboard.Snapshot, title string) string {
	st := c.styles
	own := c.session.Name()

	lines := []string{st.title.Render(title)}
	if len(entries) == 0 {
		lines = append(lines, st.hint.Render(fmt.Sprintf("%-*s", config.MaxNameLength+12, "no data")))
	}
	for i, e := range entries {
		line := fmt.Sprintf("%2d. %-*s %8.2fs", i+1, config.MaxNameLength, e.Name, e.Score)
		if e.Name == own {
			line = st.self.Render(line)
		}
		lines = append(lines, line)
	}
	return st.board.Render(strings.Join(lines, "\n"))
}

// drawPlayingHUD draws the in-game HUD.
// Text fields use fixed-width formatting so shrinking values don't leave
// residual characters on screen.
func (c *Client) drawPlayingHUD(termWidth, termHeight int) {
	st := c.styles
	player := c.machine.Player()

	c.writeAt(2, 1, st.text.Render(fmt.Sprintf("Time: %-8.2f", c.machine.Elapsed().Seconds())))

	boosts := fmt.Sprintf("Boosts: %-3d", player.BoostCounter)
	c.writeAt(termWidth-len(boosts)-1, 1, st.accent.Render(boosts))

	ready := "Boost: ready"
	if !player.BoostReady() || player.BoostCounter == 0 {
		ready = "Boost: ...  "
	}
	c.writeAt(2, termHeight, st.hint.Render(ready))

	players := fmt.Sprintf("Players: %-4d", c.server.Players())
	c.writeAt(termWidth-len(players)-1, termHeight, st.hint.Render(players))

	top := c.machine.Leaderboard().Top(config.HUDLeaderboardRows)
	for i, e := range top {
		line := fmt.Sprintf("%d. %-*s %7.2f", i+1, config.MaxNameLength, e.Name, e.Score)
		c.writeAt(termWidth-len(line)-1, 2+i, st.hint.Render(line))
	}

	if c.machine.Dead() {
		c.writeCentered(termWidth/2, termHeight/2, st.warning.Render("You fell!"))
	}
}

// drawEndScreen draws the run summary.
func (c *Client) drawEndScreen(centerX, centerY int) {
	st := c.styles
	row := max(centerY-8, 1)

	banner := st.banner.Render("G A M E   O V E R")
	c.writeCentered(centerX, row, banner)
	row += lipgloss.Height(banner) + 1

	c.writeCentered(centerX, row, st.text.Render(fmt.Sprintf("Survived: %.2fs", c.machine.SurvivalTime().Seconds())))
	row++
	c.writeCentered(centerX, row, st.accent.Render(fmt.Sprintf("Best:     %.2fs", c.machine.Best().Seconds())))
	row += 2

	if time.Now().UnixMilli()/600%2 == 0 {
		c.writeCentered(centerX, row, st.title.Render(">>  Press ENTER to play again  <<"))
	}
	row++
	c.writeCentered(centerX, row, st.hint.Render("M / Esc main menu    Q quit"))
	row += 2

	c.writeCentered(centerX, row, c.renderBoard(c.machine.Leaderboard().Top(config.LeaderboardRows), "Leaderboard"))
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(centerX, centerY int) {
	st := c.styles
	c.writeCentered(centerX, centerY-3, st.warning.Render("SERVER SHUTTING DOWN"))
	c.writeCentered(centerX, centerY-1, st.text.Render("The server is restarting for maintenance."))
	c.writeCentered(centerX, centerY, st.text.Render("Please reconnect in a moment."))

	remaining := int(c.state.shutdownTimer) + 1
	c.writeCentered(centerX, centerY+2, st.text.Render(fmt.Sprintf("Disconnecting in %d seconds...", remaining)))
	c.writeCentered(centerX, centerY+4, st.hint.Render("Press Q to disconnect now"))
}
