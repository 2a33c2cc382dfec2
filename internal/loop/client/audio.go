package client

import (
	"github.com/AlanFayz/Speedy-Jumper/internal/draw"
	"github.com/AlanFayz/Speedy-Jumper/internal/object"
)

// bellAudio plays every sound as the terminal bell. The bell goes out with
// the next frame flush.
type bellAudio struct {
	cw    *draw.ChunkWriter
	muted bool
}

func (a *bellAudio) Play(sound object.Sound, _ bool, volume float64) {
	if a.muted || volume <= 0 {
		return
	}
	draw.Bell(a.cw)
}
