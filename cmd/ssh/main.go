package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"

	"github.com/AlanFayz/Speedy-Jumper/internal/config"
	"github.com/AlanFayz/Speedy-Jumper/internal/draw"
	"github.com/AlanFayz/Speedy-Jumper/internal/host"
	"github.com/AlanFayz/Speedy-Jumper/internal/leaderboard"
	"github.com/AlanFayz/Speedy-Jumper/internal/loop/client"
	"github.com/AlanFayz/Speedy-Jumper/internal/loop/server"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}
	logger := config.NewLogger("ssh")

	sshHost := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	hostURL := config.GetEnv("HOST_URL", "")
	shutdownTimeout := config.GetEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second)
	muted := config.GetEnvBool("MUTE_BELL", false)
	logger.Info("SSH config", "host", sshHost, "port", port, "hostKeyPath", hostKeyPath, "hostURL", hostURL)

	// Shared leaderboard, optionally relayed to the web host
	store := leaderboard.NewStore()
	notifier, stopRelay := host.Connect(context.Background(), hostURL, store, logger.WithPrefix("relay"))
	defer stopRelay()
	gameServer := server.NewServer(store, notifier, logger.WithPrefix("server"))
	logger.Info("Game server started")

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(sshHost, port)),
		wish.WithMiddleware(
			gameMiddleware(gameServer, logger, muted),
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(logger),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Starting SSH server", "addr", net.JoinHostPort(sshHost, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("Shutting down server...")

	// Notify players and wait for them to disconnect. Their sessions
	// withdraw from the board before the relay stops.
	logger.Info("Notifying connected players about shutdown...", "players", gameServer.Players())
	if !gameServer.Shutdown(shutdownTimeout) {
		logger.Warn("players still connected after timeout", "players", gameServer.Players())
	}
	stopRelay()
	logger.Info("Game server stopped")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("shutdown error", "err", err)
	}
}

// gameMiddleware handles SSH sessions and runs the game client.
func gameMiddleware(gameServer *server.Server, logger *log.Logger, muted bool) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			pty, winCh, ok := sess.Pty()
			if !ok {
				fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
				return
			}

			sessLogger := logger.With("user", sess.User())
			sessLogger.Info("New game session", "terminal", pty.Term, "width", pty.Window.Width, "height", pty.Window.Height)

			// Create a terminal size tracker that updates on window changes
			sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)

			// Listen for window size changes in a goroutine
			go func() {
				for win := range winCh {
					sizeTracker.update(win.Width, win.Height)
				}
			}()

			reader := bufio.NewReader(sess)
			clientOpts := client.ClientOptions{
				TermSizeFunc: sizeTracker.getSize,
				Username:     sess.User(),
				Logger:       sessLogger,
				Renderer:     newRenderer(sess, pty.Term),
				Muted:        muted,
			}

			// Create a new client connected to the shared game server
			c := client.NewClient(gameServer, reader, sess, clientOpts)
			if err := c.Run(); err != nil {
				sessLogger.Warn("Game error", "err", err)
			}

			sessLogger.Info("Session ended")
			next(sess)
		}
	}
}

// newRenderer picks a colour profile from the client's TERM, since the
// session writer is not a local tty lipgloss could inspect.
func newRenderer(sess ssh.Session, term string) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(sess)
	r.SetColorProfile(colorProfile(term))
	return r
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
