package desktop

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/AlanFayz/Speedy-Jumper/internal/loop/game"
	"github.com/AlanFayz/Speedy-Jumper/internal/physics"
)

// keyState is one tick of window input.
type keyState struct {
	pointer   physics.Vec2
	boostHeld bool // Space or left mouse button held
	click     bool // Left mouse button pressed this tick
	text      []rune
	backspace bool
	enter     bool
	escape    bool
	menuKey   bool // M pressed this tick
}

func (g *Game) readKeys() keyState {
	x, y := ebiten.CursorPosition()
	g.chars = ebiten.AppendInputChars(g.chars[:0])
	return keyState{
		pointer:   toField(x, y),
		boostHeld: ebiten.IsKeyPressed(ebiten.KeySpace) || ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		click:     inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		text:      g.chars,
		backspace: inpututil.IsKeyJustPressed(ebiten.KeyBackspace),
		enter:     inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter),
		escape:    inpututil.IsKeyJustPressed(ebiten.KeyEscape),
		menuKey:   inpututil.IsKeyJustPressed(ebiten.KeyM),
	}
}

// inputFor maps window input to machine input for phase.
func inputFor(phase game.Phase, k keyState) game.Input {
	switch phase {
	case game.PhaseMenu:
		return game.Input{Text: k.text, Backspace: k.backspace, Confirm: k.enter}
	case game.PhasePlaying:
		return game.Input{Pointer: k.pointer, HasPointer: true, Boost: k.boostHeld}
	case game.PhaseEndScreen:
		return game.Input{PlayAgain: k.enter || k.click, MainMenu: k.escape || k.menuKey}
	}
	return game.Input{}
}
