package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Seednode/neardle/games/neardle"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

func testScoreboard(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	cfg := validConfig()

	hub := newHub([]neardle.Standing{{Name: "Alice"}, {Name: "Bob"}}, 3)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go hub.run(ctx)

	errs := make(chan error, 8)

	mux := httprouter.New()
	registerScoreboard(cfg, hub, mux, errs)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return hub, srv
}

func guessedRound() neardle.RoundResult {
	track := neardle.NewTrack(
		neardle.Artist{Name: "Queen"},
		neardle.Album{Name: "A Night at the Opera", Year: 1975},
		"Bohemian Rhapsody", "spotify:track:1", 90,
	)

	return neardle.RoundResult{
		Track:     track,
		Outcome:   neardle.OutcomeGuessed,
		Guesser:   "Bob",
		Stage:     0,
		Remaining: 2,
		Standings: []neardle.Standing{{Name: "Alice"}, {Name: "Bob", Score: 6}},
	}
}

func readStandings(t *testing.T, conn *websocket.Conn) StandingsMessage {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg StandingsMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	return msg
}

func TestScoreboardPushesRounds(t *testing.T) {
	hub, srv := testScoreboard(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	initial := readStandings(t, conn)
	if initial.Round != 0 || initial.Remaining != 3 || len(initial.Standings) != 2 {
		t.Errorf("initial message = %+v", initial)
	}

	hub.publish(guessedRound())

	msg := readStandings(t, conn)
	if msg.Round != 1 || msg.Guesser != "Bob" || msg.Outcome != "guessed" {
		t.Errorf("round message = %+v", msg)
	}
	if msg.Track != "Queen -- Bohemian Rhapsody" {
		t.Errorf("track = %q", msg.Track)
	}
	if msg.Standings[1].Score != 6 {
		t.Errorf("standings = %+v", msg.Standings)
	}
}

func TestScoreboardStandingsSnapshot(t *testing.T) {
	hub, srv := testScoreboard(t)

	hub.publish(guessedRound())

	var msg StandingsMessage
	deadline := time.Now().Add(5 * time.Second)
	for msg.Round == 0 && time.Now().Before(deadline) {
		resp, err := http.Get(srv.URL + "/standings")
		if err != nil {
			t.Fatalf("GET /standings: %v", err)
		}

		if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("reading standings: %v", err)
		}

		if bytes.Contains(body, []byte("StagesDurations")) {
			t.Errorf("snapshot leaks player stats: %s", body)
		}

		if err := json.Unmarshal(body, &msg); err != nil {
			t.Fatalf("decoding standings: %v", err)
		}

		time.Sleep(10 * time.Millisecond)
	}

	if msg.Round != 1 || msg.Remaining != 2 {
		t.Errorf("snapshot = %+v", msg)
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	hub := newHub(nil, 0)

	done := make(chan struct{})
	go func() {
		for range 50 {
			hub.publish(guessedRound())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked without a running hub")
	}

	if got := hub.rounds.Load(); got != 50 {
		t.Errorf("rounds = %d, want 50", got)
	}
}

func TestScoreboardPages(t *testing.T) {
	_, srv := testScoreboard(t)

	tests := []struct {
		path        string
		contentType string
		contains    string
	}{
		{"/", "text/html; charset=utf-8", "app.js"},
		{"/app.js", "application/javascript; charset=utf-8", "WebSocket"},
		{"/app.css", "text/css; charset=utf-8", "font-family"},
		{"/qr", "image/png", "\x89PNG"},
	}

	for _, tt := range tests {
		resp, err := http.Get(srv.URL + tt.path)
		if err != nil {
			t.Fatalf("GET %s: %v", tt.path, err)
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s = %d", tt.path, resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != tt.contentType {
			t.Errorf("GET %s Content-Type = %q", tt.path, ct)
		}
		if !strings.Contains(string(body), tt.contains) {
			t.Errorf("GET %s body lacks %q", tt.path, tt.contains)
		}
		if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
			t.Errorf("GET %s missing security headers", tt.path)
		}
	}
}

func TestPageURL(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example.com/neardle/qr", nil)
	r.Header.Set("X-Forwarded-Proto", "https")

	if got, want := pageURL(r, "/qr"), "https://example.com/neardle/"; got != want {
		t.Errorf("pageURL = %q, want %q", got, want)
	}
}
