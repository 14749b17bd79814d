/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package neardle

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var (
	ErrDuplicatePlayer = errors.New("duplicate player name")
	ErrReservedName    = errors.New("player name is reserved")
	ErrNoPlayers       = errors.New("at least one player is required")
)

// Stats aggregates a player's guessing history over a session.
type Stats struct {
	StagesDurations       map[time.Duration]int
	CorrectReleaseYears   int
	CloseReleaseYears     int
	IncorrectReleaseYears int
	CorrectAlbums         int
	IncorrectAlbums       int
}

func newStats(stages []time.Duration) Stats {
	s := Stats{StagesDurations: make(map[time.Duration]int, len(stages))}
	for _, d := range stages {
		s.StagesDurations[d] = 0
	}
	return s
}

func (s Stats) clone() Stats {
	c := s
	c.StagesDurations = make(map[time.Duration]int, len(s.StagesDurations))
	for d, n := range s.StagesDurations {
		c.StagesDurations[d] = n
	}
	return c
}

func (s Stats) String() string {
	var b strings.Builder

	durations := make([]time.Duration, 0, len(s.StagesDurations))
	for d := range s.StagesDurations {
		durations = append(durations, d)
	}
	slices.Sort(durations)

	b.WriteString("Stages durations:\n")
	for _, d := range durations {
		fmt.Fprintf(&b, "  %2d seconds: %2d times\n", int(d.Seconds()), s.StagesDurations[d])
	}
	fmt.Fprintf(&b, "Release years correctly guessed: %d\n", s.CorrectReleaseYears)
	fmt.Fprintf(&b, "Release years closely guessed: %d\n", s.CloseReleaseYears)
	fmt.Fprintf(&b, "Release years incorrectly guessed: %d\n", s.IncorrectReleaseYears)
	fmt.Fprintf(&b, "Albums correctly guessed: %d\n", s.CorrectAlbums)
	fmt.Fprintf(&b, "Albums incorrectly guessed: %d\n", s.IncorrectAlbums)

	return b.String()
}

type Player struct {
	Name  string
	Score int
	Stats Stats
}

func (p *Player) String() string {
	return fmt.Sprintf("%s (%d points)", p.Name, p.Score)
}

// Standing is a point-in-time copy of a player.
type Standing struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Stats Stats  `json:"-"`
}

func (s Standing) String() string {
	return fmt.Sprintf("%s (%d points)", s.Name, s.Score)
}

// SplitList splits a comma-separated list of names.
func SplitList(input string) []string {
	var names []string
	for _, name := range strings.Split(input, ",") {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}

// Players is the ordered roster of a session, keyed by unique name.
type Players struct {
	order  []*Player
	byName map[string]*Player
}

func NewPlayers(names []string, stages []time.Duration) (*Players, error) {
	if len(names) == 0 {
		return nil, ErrNoPlayers
	}

	ps := &Players{byName: make(map[string]*Player, len(names))}
	for _, name := range names {
		if _, reserved := commandKinds[name]; reserved {
			return nil, fmt.Errorf("%w: %q", ErrReservedName, name)
		}
		if _, dup := ps.byName[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePlayer, name)
		}

		p := &Player{Name: name, Stats: newStats(stages)}
		ps.order = append(ps.order, p)
		ps.byName[name] = p
	}

	return ps, nil
}

func (ps *Players) Get(name string) (*Player, bool) {
	p, ok := ps.byName[name]
	return p, ok
}

func (ps *Players) Names() []string {
	names := make([]string, len(ps.order))
	for i, p := range ps.order {
		names[i] = p.Name
	}
	return names
}

func (ps *Players) Standings() []Standing {
	out := make([]Standing, len(ps.order))
	for i, p := range ps.order {
		out[i] = Standing{Name: p.Name, Score: p.Score, Stats: p.Stats.clone()}
	}
	return out
}
