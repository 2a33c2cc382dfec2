package main

import (
	"context"
	_ "embed"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/AlanFayz/Speedy-Jumper/internal/config"
	"github.com/AlanFayz/Speedy-Jumper/internal/host"
	"github.com/AlanFayz/Speedy-Jumper/internal/leaderboard"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8080"
)

//go:embed index.html
var htmlPage string

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Warn("failed to load .env", "err", err)
	}
	logger := config.NewLogger("web")

	addr := net.JoinHostPort(config.GetEnv("WEB_HOST", defaultHost), config.GetEnv("WEB_PORT", defaultPort))
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")
	var origins []string
	if o := config.GetEnv("WS_ORIGINS", ""); o != "" {
		origins = strings.Split(o, ",")
	}

	hub := host.NewHub(leaderboard.NewStore(), logger.WithPrefix("hub"), origins)
	srv := &http.Server{
		Addr:              addr,
		Handler:           newMux(hub, sshHost),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Starting web server", "url", "http://"+addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("Shutting down web server...", "peers", hub.Stats().Peers)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("shutdown error", "err", err)
	}
}

// newMux serves the landing page and the hub endpoints.
func newMux(hub *host.Hub, sshHost string) *http.ServeMux {
	page := strings.ReplaceAll(htmlPage, "{{.SSHHost}}", sshHost)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	})
	mux.HandleFunc("/ws", hub.HandleWS)
	mux.HandleFunc("GET /leaderboard", hub.HandleLeaderboard)
	mux.HandleFunc("GET /stats", hub.HandleStats)
	return mux
}
