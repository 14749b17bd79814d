/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Neardle spectator scoreboard
//
// The game itself is played at a single terminal. When enabled, a read-only
// page mirrors the standings for anyone else in the room.
//
// Features:
// - Standings pushed over a WebSocket after every revealed round
// - JSON snapshot at /standings for scripts and late joiners
// - QR code of the page URL, backed by go-qrcode
// - Spectators never send game input; anything they write is discarded

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Seednode/neardle/games/neardle"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// StandingsMessage is sent to every spectator after each round.
type StandingsMessage struct {
	Type      string             `json:"type"` // "standings"
	Round     int                `json:"round"`
	Track     string             `json:"track,omitempty"`
	Guesser   string             `json:"guesser,omitempty"`
	Outcome   string             `json:"outcome,omitempty"`
	Remaining int                `json:"remaining"`
	Standings []neardle.Standing `json:"standings"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func outcomeName(o neardle.Outcome) string {
	switch o {
	case neardle.OutcomeGuessed:
		return "guessed"
	case neardle.OutcomeSkipped:
		return "skipped"
	case neardle.OutcomeExhausted:
		return "exhausted"
	}
	return ""
}

type Client struct {
	conn *websocket.Conn
	send chan StandingsMessage
}

type Hub struct {
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	updates  chan StandingsMessage

	done chan struct{}

	mu     sync.RWMutex
	latest StandingsMessage
	rounds atomic.Int64
}

func newHub(standings []neardle.Standing, remaining int) *Hub {
	return &Hub{
		clients:  make(map[*Client]bool),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		updates:  make(chan StandingsMessage, 8),
		done:     make(chan struct{}),
		latest: StandingsMessage{
			Type:      "standings",
			Remaining: remaining,
			Standings: standings,
			UpdatedAt: time.Now(),
		},
	}
}

func (h *Hub) run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			c.send <- h.snapshot()

		case c := <-h.unreg:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case msg := <-h.updates:
			h.mu.Lock()
			h.latest = msg
			h.mu.Unlock()

			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}

		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}

			return
		}
	}
}

func (h *Hub) snapshot() StandingsMessage {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.latest
}

// publish records a revealed round. It never blocks the game: when the hub
// falls behind, the oldest pending update is dropped.
func (h *Hub) publish(result neardle.RoundResult) {
	msg := StandingsMessage{
		Type:      "standings",
		Round:     int(h.rounds.Add(1)),
		Track:     result.Track.LegibleName(),
		Guesser:   result.Guesser,
		Outcome:   outcomeName(result.Outcome),
		Remaining: result.Remaining,
		Standings: result.Standings,
		UpdatedAt: time.Now(),
	}

	for {
		select {
		case h.updates <- msg:
			return
		default:
		}

		select {
		case <-h.updates:
		default:
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func serveWS(cfg *Config, hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "WS: Upgrade for %s failed: %v", realIP(r), err)
			return
		}

		logf(cfg, "WS: Spectator connected from %s", realIP(r))

		client := &Client{
			conn: conn,
			send: make(chan StandingsMessage, 8),
		}

		select {
		case hub.register <- client:
		case <-hub.done:
			conn.Close()
			return
		}

		go client.writePump()
		client.readPump(hub)
	}
}

// readPump only watches for the connection closing.
func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}

	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func serveStandings(cfg *Config, hub *Hub, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		data, err := json.Marshal(hub.snapshot())
		if err != nil {
			errs <- err

			http.Error(w, "encoding standings failed", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		written, err := w.Write(data)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Standings (%s) to %s in %s",
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

// pageURL rebuilds the public URL of the scoreboard from a request to one
// of its sub-paths.
func pageURL(r *http.Request, suffix string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	return scheme + "://" + r.Host + strings.TrimSuffix(r.URL.Path, suffix) + "/"
}

func serveQR(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		const qrSize = 320

		png, err := qrcode.Encode(pageURL(r, "/qr"), qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)

		_, _ = w.Write(png)
	}
}

const scoreboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Neardle</title>
<link rel="stylesheet" href="app.css">
</head>
<body>
<h1>Neardle</h1>
<p id="status">Connecting...</p>
<p id="last"></p>
<table id="standings"></table>
<img id="qr" src="qr" alt="QR code of this page">
<script src="app.js"></script>
</body>
</html>
`

const scoreboardCSS = `body { font-family: system-ui, sans-serif; margin: 2rem; }
table { border-collapse: collapse; }
td { padding: 0.25rem 1rem 0.25rem 0; }
#last { color: #555; }
#qr { width: 160px; margin-top: 2rem; }
`

const scoreboardJS = `(function() {
  var statusEl = document.getElementById('status');
  var lastEl = document.getElementById('last');
  var table = document.getElementById('standings');

  function render(msg) {
    table.textContent = '';
    (msg.standings || []).slice().sort(function(a, b) { return b.score - a.score; }).forEach(function(s) {
      var row = table.insertRow();
      row.insertCell().textContent = s.name;
      row.insertCell().textContent = s.score + ' points';
    });

    if (msg.track) {
      var who = msg.outcome === 'guessed' ? ' (' + msg.guesser + ')' : '';
      lastEl.textContent = 'Round ' + msg.round + ': ' + msg.track + who;
    }
    statusEl.textContent = msg.remaining + ' tracks left';
  }

  var scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
  var base = location.pathname.replace(/\/$/, '');
  var ws = new WebSocket(scheme + location.host + base + '/ws');

  ws.onmessage = function(ev) {
    render(JSON.parse(ev.data));
  };

  ws.onclose = function() {
    statusEl.textContent = 'Game over.';
  };
})();
`

func serveAsset(cfg *Config, contentType, body string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write([]byte(body))
	}
}

// registerScoreboard sets up routes so that:
//   - $prefix/             → HTML page
//   - $prefix/app.css      → page style
//   - $prefix/app.js       → page script
//   - $prefix/standings    → JSON snapshot
//   - $prefix/ws           → WebSocket pushing standings
//   - $prefix/qr           → PNG QR code of the page URL
func registerScoreboard(cfg *Config, hub *Hub, mux *httprouter.Router, errs chan<- error) {
	mux.GET(cfg.prefix+"/", serveAsset(cfg, "text/html; charset=utf-8", scoreboardHTML))
	mux.GET(cfg.prefix+"/app.css", serveAsset(cfg, "text/css; charset=utf-8", scoreboardCSS))
	mux.GET(cfg.prefix+"/app.js", serveAsset(cfg, "application/javascript; charset=utf-8", scoreboardJS))
	mux.GET(cfg.prefix+"/standings", serveStandings(cfg, hub, errs))
	mux.GET(cfg.prefix+"/ws", serveWS(cfg, hub))
	mux.GET(cfg.prefix+"/qr", serveQR(cfg))
}
