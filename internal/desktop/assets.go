package desktop

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/AlanFayz/Speedy-Jumper/internal/object"
)

// Asset file names looked up under the asset directory.
const (
	bodyTexture = "character_body.png"
	eyeTexture  = "character_eye.png"
	jumpSound   = "jump.wav"
	boingSound  = "boing.wav"
)

const (
	sampleRate      = 44100
	placeholderSize = 32
)

// soundFiles maps each game sound to its file.
var soundFiles = map[object.Sound]string{
	object.SoundBoost:  jumpSound,
	object.SoundBounce: boingSound,
}

// Assets holds the loaded textures and decoded sounds.
type Assets struct {
	Body *ebiten.Image
	Eye  *ebiten.Image

	sounds map[object.Sound][]byte // 16-bit stereo PCM at sampleRate
}

// LoadAssets loads textures and sounds from dir. A file that fails to
// load is logged and replaced by a placeholder image or a silent sound.
func LoadAssets(dir string, logger *log.Logger) *Assets {
	a := &Assets{sounds: make(map[object.Sound][]byte)}

	a.Body = loadImage(dir, bodyTexture, color.RGBA{R: 0xf2, G: 0xa6, B: 0x3b, A: 0xff}, logger)
	a.Eye = loadImage(dir, eyeTexture, color.White, logger)

	for sound, name := range soundFiles {
		pcm, err := loadSound(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("sound unavailable, playing silence", "file", name, "err", err)
			continue
		}
		a.sounds[sound] = pcm
	}
	return a
}

func loadImage(dir, name string, fallback color.Color, logger *log.Logger) *ebiten.Image {
	img, _, err := ebitenutil.NewImageFromFile(filepath.Join(dir, name))
	if err != nil {
		logger.Warn("texture unavailable, using placeholder", "file", name, "err", err)
		img = ebiten.NewImage(placeholderSize, placeholderSize)
		img.Fill(fallback)
	}
	return img
}

// loadSound decodes a wav file into PCM ready for audio.Context.
func loadSound(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	stream, err := wav.DecodeWithSampleRate(sampleRate, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return io.ReadAll(stream)
}

// speaker plays decoded sounds through an audio context.
type speaker struct {
	ctx    *audio.Context
	sounds map[object.Sound][]byte
	logger *log.Logger
}

var _ object.Audio = (*speaker)(nil)

func newSpeaker(ctx *audio.Context, assets *Assets, logger *log.Logger) *speaker {
	return &speaker{ctx: ctx, sounds: assets.sounds, logger: logger}
}

// Play starts sound at volume. Missing sounds are silent.
func (s *speaker) Play(sound object.Sound, looped bool, volume float64) {
	pcm := s.sounds[sound]
	if len(pcm) == 0 || s.ctx == nil {
		return
	}
	var p *audio.Player
	if looped {
		var err error
		loop := audio.NewInfiniteLoop(bytes.NewReader(pcm), int64(len(pcm)))
		if p, err = s.ctx.NewPlayer(loop); err != nil {
			s.logger.Debug("audio player failed", "err", err)
			return
		}
	} else {
		p = s.ctx.NewPlayerFromBytes(pcm)
	}
	p.SetVolume(volume)
	p.Play()
}
