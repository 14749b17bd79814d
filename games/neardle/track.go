/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package neardle

import "fmt"

type Artist struct {
	Name string
	ID   string
}

func (a Artist) String() string {
	return a.Name
}

type Album struct {
	Artist Artist
	Name   string
	Year   int
	ID     string
}

// Track is an immutable catalog entry. Build it with NewTrack so the
// legible name is cached.
type Track struct {
	Artist     Artist
	Album      Album
	Name       string
	ID         string
	Popularity int

	legible string
}

func NewTrack(artist Artist, album Album, name, id string, popularity int) Track {
	return Track{
		Artist:     artist,
		Album:      album,
		Name:       name,
		ID:         id,
		Popularity: popularity,
		legible:    fmt.Sprintf("%s -- %s", artist.Name, name),
	}
}

// LegibleName is the "artist -- title" answer key of the track.
func (t Track) LegibleName() string {
	if t.legible == "" {
		return fmt.Sprintf("%s -- %s", t.Artist.Name, t.Name)
	}
	return t.legible
}

func (t Track) Details() string {
	return fmt.Sprintf("%s (%s -- %d) (%d)", t.LegibleName(), t.Album.Name, t.Album.Year, t.Popularity)
}

func (t Track) String() string {
	return t.LegibleName()
}

// Pool is the ordered set of tracks a session draws from. It only grows
// while being built and is read-only once a session owns it.
type Pool struct {
	tracks []Track
}

func NewPool(tracks ...Track) *Pool {
	p := &Pool{}
	p.Add(tracks...)
	return p
}

func (p *Pool) Add(tracks ...Track) {
	p.tracks = append(p.tracks, tracks...)
}

func (p *Pool) Len() int {
	return len(p.tracks)
}

func (p *Pool) At(i int) Track {
	return p.tracks[i]
}

// Tracks returns a copy of the pool contents.
func (p *Pool) Tracks() []Track {
	out := make([]Track, len(p.tracks))
	copy(out, p.tracks)
	return out
}

// Names returns the set of raw track titles in the pool.
func (p *Pool) Names() map[string]bool {
	names := make(map[string]bool, len(p.tracks))
	for _, t := range p.tracks {
		names[t.Name] = true
	}
	return names
}
