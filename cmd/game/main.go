package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/user"

	"golang.org/x/term"

	"github.com/AlanFayz/Speedy-Jumper/internal/config"
	"github.com/AlanFayz/Speedy-Jumper/internal/host"
	"github.com/AlanFayz/Speedy-Jumper/internal/leaderboard"
	"github.com/AlanFayz/Speedy-Jumper/internal/loop/client"
	"github.com/AlanFayz/Speedy-Jumper/internal/loop/server"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}
	// Logs go to stderr; redirect it when the terminal is in use.
	logger := config.NewLogger("game")

	store := leaderboard.NewStore()
	notifier, stopRelay := host.Connect(context.Background(), config.GetEnv("HOST_URL", ""), store, logger.WithPrefix("relay"))
	defer stopRelay()
	gameServer := server.NewServer(store, notifier, logger.WithPrefix("server"))

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	reader := bufio.NewReader(os.Stdin)
	c := client.NewClient(gameServer, reader, os.Stdout, client.ClientOptions{
		Username: localUser(),
		Logger:   logger,
		Muted:    config.GetEnvBool("MUTE_BELL", false),
	})
	if err := c.Run(); err != nil {
		_ = term.Restore(fd, oldState)
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		stopRelay()
		os.Exit(1)
	}
}

// localUser prefills the name prompt with the login name.
func localUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return config.GetEnv("USER", "")
}
