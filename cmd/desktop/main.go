package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/AlanFayz/Speedy-Jumper/internal/config"
	"github.com/AlanFayz/Speedy-Jumper/internal/desktop"
	"github.com/AlanFayz/Speedy-Jumper/internal/host"
	"github.com/AlanFayz/Speedy-Jumper/internal/leaderboard"
)

const defaultAssetDir = "assets"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}
	logger := config.NewLogger("desktop")

	store := leaderboard.NewStore()
	notifier, stopRelay := host.Connect(context.Background(), config.GetEnv("HOST_URL", ""), store, logger.WithPrefix("relay"))
	defer stopRelay()

	session := leaderboard.NewSession(store, notifier)
	defer session.Close()

	g := desktop.NewGame(desktop.Options{
		Session:  session,
		AssetDir: config.GetEnv("ASSET_DIR", defaultAssetDir),
		Logger:   logger,
		Name:     config.GetEnv("USER", ""),
		Muted:    config.GetEnvBool("MUTE_AUDIO", false),
	})

	ebiten.SetWindowSize(desktop.ScreenSize, desktop.ScreenSize)
	ebiten.SetWindowTitle("Speedy Jumper")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	logger.Info("Starting game...")
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Error("game error", "err", err)
		session.Close()
		stopRelay()
		os.Exit(1)
	}
}
