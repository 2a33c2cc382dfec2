package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/AlanFayz/Speedy-Jumper/internal/host"
	"github.com/AlanFayz/Speedy-Jumper/internal/leaderboard"
)

func TestMuxRoutes(t *testing.T) {
	store := leaderboard.NewStore()
	store.Upsert("ann", 4.5)
	hub := host.NewHub(store, log.New(io.Discard), nil)
	srv := httptest.NewServer(newMux(hub, "play.example"))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "ssh -t play.example") {
		t.Error("landing page missing ssh host")
	}

	resp, err = http.Get(srv.URL + "/leaderboard")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var entries []leaderboard.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name != "ann" {
		t.Fatalf("leaderboard = %+v", entries)
	}

	resp, err = http.Get(srv.URL + "/missing")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", resp.StatusCode)
	}
}
