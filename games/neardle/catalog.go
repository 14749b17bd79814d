/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package neardle

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// ErrLookupMiss is returned by a Source when an artist, genre or playlist
// query yields nothing.
var ErrLookupMiss = errors.New("no results")

// PlaylistMatchThreshold is the name ratio a playlist must exceed to be
// picked for a query.
const PlaylistMatchThreshold = 0.9

// RawTrack is a catalog record as returned by a Source.
type RawTrack struct {
	ArtistName      string
	ArtistID        string
	AlbumArtistName string
	AlbumName       string
	AlbumID         string
	ReleaseDate     string
	Name            string
	ID              string
	Popularity      int
}

type RawArtist struct {
	Name       string
	ID         string
	Popularity int
}

// Page is one window of a paginated track search.
type Page struct {
	Tracks  []RawTrack
	HasNext bool
}

// Source is the narrow query surface of the streaming catalog.
type Source interface {
	FindArtist(ctx context.Context, name string) (Artist, error)
	SearchTracksByArtist(ctx context.Context, name string, offset, limit int) (Page, error)
	SearchTracksByGenre(ctx context.Context, genre string, offset, limit int) (Page, error)
	TopTracks(ctx context.Context, artist Artist) ([]RawTrack, error)
	RelatedArtists(ctx context.Context, artist Artist) ([]RawArtist, error)
	PlaylistTracks(ctx context.Context, query string, public bool) ([]RawTrack, error)
}

// PageFunc fetches the page starting at offset.
type PageFunc func(ctx context.Context, offset, limit int) (Page, error)

// Pager walks a paginated search until the source runs out of pages or
// maxOffset is reached.
type Pager struct {
	fetch     PageFunc
	limit     int
	maxOffset int

	offset int
	page   Page
	done   bool
	err    error
}

func NewPager(fetch PageFunc, limit, maxOffset int) *Pager {
	return &Pager{
		fetch:     fetch,
		limit:     limit,
		maxOffset: maxOffset,
	}
}

// Next fetches the next page and reports whether one is available.
func (p *Pager) Next(ctx context.Context) bool {
	if p.done || p.offset >= p.maxOffset || p.limit <= 0 {
		return false
	}

	page, err := p.fetch(ctx, p.offset, p.limit)
	if err != nil {
		p.err = err
		p.done = true
		return false
	}

	p.page = page
	p.offset += p.limit
	p.done = !page.HasNext

	return true
}

func (p *Pager) Tracks() []RawTrack {
	return p.page.Tracks
}

func (p *Pager) Err() error {
	return p.err
}

// Params bounds the catalog queries.
type Params struct {
	PageSize                  int
	MaxOffset                 int
	TrackPopularityThreshold  int
	ArtistPopularityThreshold int
	MaxRelatedArtists         int
	MaxTracksPerArtist        int
}

func DefaultParams() Params {
	return Params{
		PageSize:                  50,
		MaxOffset:                 1000,
		TrackPopularityThreshold:  50,
		ArtistPopularityThreshold: 50,
		MaxRelatedArtists:         5,
		MaxTracksPerArtist:        20,
	}
}

// Builder turns Source queries into filtered, deduplicated tracks.
type Builder struct {
	Source Source
	Params Params

	// Warnf reports skipped records. Defaults to log.Printf.
	Warnf func(format string, args ...any)
}

func NewBuilder(src Source, params Params) *Builder {
	return &Builder{
		Source: src,
		Params: params,
		Warnf:  log.Printf,
	}
}

func (b *Builder) warnf(format string, args ...any) {
	if b.Warnf != nil {
		b.Warnf(format, args...)
	}
}

// track converts a raw record. Records with an unusable release date are
// skipped rather than aborting the whole build.
func (b *Builder) track(raw RawTrack, artist Artist) (Track, bool) {
	year, err := ReleaseYear(raw.ReleaseDate)
	if err != nil {
		b.warnf("SKIP: %s -- %s: %v", raw.ArtistName, raw.Name, err)
		return Track{}, false
	}

	album := Album{
		Artist: artist,
		Name:   raw.AlbumName,
		Year:   year,
		ID:     raw.AlbumID,
	}

	return NewTrack(artist, album, raw.Name, raw.ID, raw.Popularity), true
}

func (b *Builder) inFrame(raw RawTrack, frame Dateframe) bool {
	ok, err := frame.Contains(raw.ReleaseDate)
	if err != nil {
		b.warnf("SKIP: %s -- %s: %v", raw.ArtistName, raw.Name, err)
		return false
	}

	return ok
}

// FindArtists resolves artist names, reporting and skipping misses.
func (b *Builder) FindArtists(ctx context.Context, names []string) ([]Artist, error) {
	var artists []Artist

	for _, name := range names {
		artist, err := b.Source.FindArtist(ctx, name)
		switch {
		case errors.Is(err, ErrLookupMiss):
			b.warnf("%s not found", name)
			continue
		case err != nil:
			return nil, fmt.Errorf("looking up artist %q: %w", name, err)
		}

		artists = append(artists, artist)
	}

	return artists, nil
}

// TopTracks returns the source's most popular tracks of an artist,
// without near-duplicate titles.
func (b *Builder) TopTracks(ctx context.Context, artist Artist) ([]Track, error) {
	raws, err := b.Source.TopTracks(ctx, artist)
	if err != nil {
		return nil, fmt.Errorf("top tracks of %s: %w", artist.Name, err)
	}

	var kept []Track
	for _, raw := range raws {
		if FilterSimilar(raw.Name, kept) {
			continue
		}

		if t, ok := b.track(raw, artist); ok {
			kept = append(kept, t)
		}
	}

	return kept, nil
}

// PopularTracks searches every track of an artist released within frame,
// keeps the popular ones, drops near-duplicates in favour of the most
// popular variant and caps the result.
func (b *Builder) PopularTracks(ctx context.Context, artist Artist, frame Dateframe) ([]Track, error) {
	pager := NewPager(func(ctx context.Context, offset, limit int) (Page, error) {
		return b.Source.SearchTracksByArtist(ctx, artist.Name, offset, limit)
	}, b.Params.PageSize, b.Params.MaxOffset)

	var popular []Track
	for pager.Next(ctx) {
		for _, raw := range pager.Tracks() {
			if raw.AlbumArtistName != artist.Name {
				continue
			}
			if !b.inFrame(raw, frame) {
				continue
			}
			if raw.Popularity <= b.Params.TrackPopularityThreshold {
				continue
			}

			if t, ok := b.track(raw, artist); ok {
				popular = append(popular, t)
			}
		}
	}
	if err := pager.Err(); err != nil {
		return nil, fmt.Errorf("searching tracks of %s: %w", artist.Name, err)
	}

	kept := Dedupe(popular)
	if b.Params.MaxTracksPerArtist > 0 && len(kept) > b.Params.MaxTracksPerArtist {
		kept = kept[:b.Params.MaxTracksPerArtist]
	}

	return kept, nil
}

// RelatedArtists returns popular artists related to artist that are not
// already known.
func (b *Builder) RelatedArtists(ctx context.Context, artist Artist, known []Artist) ([]Artist, error) {
	raws, err := b.Source.RelatedArtists(ctx, artist)
	if err != nil {
		return nil, fmt.Errorf("related artists of %s: %w", artist.Name, err)
	}

	seen := make(map[string]bool, len(known))
	for _, a := range known {
		seen[a.Name] = true
	}

	var related []Artist
	for _, raw := range raws {
		if b.Params.MaxRelatedArtists > 0 && len(related) >= b.Params.MaxRelatedArtists {
			break
		}
		if seen[raw.Name] || raw.Popularity <= b.Params.ArtistPopularityThreshold {
			continue
		}

		seen[raw.Name] = true
		related = append(related, Artist{Name: raw.Name, ID: raw.ID})
	}

	return related, nil
}

// GenreTracks searches popular tracks of a genre released within frame.
// Titles already present in existing are skipped.
func (b *Builder) GenreTracks(ctx context.Context, genre string, frame Dateframe, existing map[string]bool) ([]Track, error) {
	pager := NewPager(func(ctx context.Context, offset, limit int) (Page, error) {
		return b.Source.SearchTracksByGenre(ctx, genre, offset, limit)
	}, b.Params.PageSize, b.Params.MaxOffset)

	var kept []Track
	for pager.Next(ctx) {
		for _, raw := range pager.Tracks() {
			if FilterSimilar(raw.Name, kept) {
				continue
			}
			if existing[raw.Name] || raw.Popularity <= b.Params.TrackPopularityThreshold {
				continue
			}
			if !b.inFrame(raw, frame) {
				continue
			}

			if t, ok := b.track(raw, Artist{Name: raw.ArtistName, ID: raw.ArtistID}); ok {
				kept = append(kept, t)
			}
		}
	}
	if err := pager.Err(); err != nil {
		return nil, fmt.Errorf("searching genre %s: %w", genre, err)
	}

	return kept, nil
}

// PlaylistTracks returns every track of the playlist matching query,
// either among the user's playlists or among public ones.
func (b *Builder) PlaylistTracks(ctx context.Context, query string, public bool) ([]Track, error) {
	raws, err := b.Source.PlaylistTracks(ctx, query, public)
	if err != nil {
		return nil, fmt.Errorf("playlist %q: %w", query, err)
	}

	tracks := make([]Track, 0, len(raws))
	for _, raw := range raws {
		if t, ok := b.track(raw, Artist{Name: raw.ArtistName, ID: raw.ArtistID}); ok {
			tracks = append(tracks, t)
		}
	}

	return tracks, nil
}

// MatchPlaylist picks the first playlist name similar enough to query.
func MatchPlaylist(names []string, query string) (int, bool) {
	for i, name := range names {
		if Ratio(name, query) > PlaylistMatchThreshold {
			return i, true
		}
	}

	return -1, false
}
