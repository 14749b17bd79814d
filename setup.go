/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Seednode/neardle/games/neardle"
)

const (
	sourceArtists         = "Artists"
	sourceGenres          = "Genres"
	sourceUserPlaylists   = "User playlists"
	sourcePublicPlaylists = "Public playlists"

	modeTopTracks     = "Top 10"
	modePopularTracks = "All (popular) songs"
)

// setup gathers the track pool interactively before the first round.
type setup struct {
	builder *neardle.Builder
	prompt  neardle.Prompter
	out     io.Writer
	frame   neardle.Dateframe
}

func (s *setup) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *setup) list(message string) ([]string, error) {
	input, err := s.prompt.Input(message)
	if err != nil {
		return nil, err
	}

	return neardle.SplitList(input), nil
}

// dateframe asks whether to restrict release dates, re-asking until the
// range parses.
func (s *setup) dateframe() (neardle.Dateframe, error) {
	restrict, err := s.prompt.Confirm("Do you want to use a date range for the tracks", true)
	if err != nil {
		return neardle.Dateframe{}, err
	}
	if !restrict {
		return s.frame, nil
	}

	for {
		input, err := s.prompt.Input("Enter dates in the format 1975-1995")
		if err != nil {
			return neardle.Dateframe{}, err
		}

		frame, err := neardle.ParseDateframe(input)
		if err == nil {
			return frame, nil
		}

		s.printf("%v\n", err)
	}
}

func (s *setup) pool(ctx context.Context) (*neardle.Pool, error) {
	source, err := s.prompt.Select("Play with artists or with genres?", []string{
		sourceArtists,
		sourceGenres,
		sourceUserPlaylists,
		sourcePublicPlaylists,
	})
	if err != nil {
		return nil, err
	}

	pool := neardle.NewPool()

	switch source {
	case sourceArtists:
		err = s.artists(ctx, pool)
	case sourceGenres:
		err = s.genres(ctx, pool)
	case sourceUserPlaylists:
		err = s.playlists(ctx, pool, false)
	case sourcePublicPlaylists:
		err = s.playlists(ctx, pool, true)
	default:
		err = fmt.Errorf("unknown track source %q", source)
	}
	if err != nil {
		return nil, err
	}

	s.printf("Playing with a database of %d tracks\n", pool.Len())

	return pool, nil
}

func (s *setup) artists(ctx context.Context, pool *neardle.Pool) error {
	names, err := s.list("Enter a comma-separated list of artists")
	if err != nil {
		return err
	}

	artists, err := s.builder.FindArtists(ctx, names)
	if err != nil {
		return err
	}

	related, err := s.prompt.Confirm("Do you want to use related artists", false)
	if err != nil {
		return err
	}

	if related {
		named := artists
		for _, artist := range named {
			more, err := s.builder.RelatedArtists(ctx, artist, artists)
			if err != nil {
				return err
			}

			artists = append(artists, more...)
		}
	}

	s.printf("Playing with a database of %d artist\n\n", len(artists))

	mode, err := s.prompt.Select("What mode?", []string{modeTopTracks, modePopularTracks})
	if err != nil {
		return err
	}

	if mode == modeTopTracks {
		for _, artist := range artists {
			tracks, err := s.builder.TopTracks(ctx, artist)
			if err != nil {
				return err
			}

			pool.Add(tracks...)
		}

		return nil
	}

	frame, err := s.dateframe()
	if err != nil {
		return err
	}

	for i, artist := range artists {
		s.printf("Finding tracks for artist %d\n", i)

		tracks, err := s.builder.PopularTracks(ctx, artist, frame)
		if err != nil {
			return err
		}

		s.printf("Found %d tracks\n", len(tracks))

		pool.Add(tracks...)
	}

	return nil
}

func (s *setup) genres(ctx context.Context, pool *neardle.Pool) error {
	genres, err := s.list("Enter a comma-separated list of genres")
	if err != nil {
		return err
	}

	frame, err := s.dateframe()
	if err != nil {
		return err
	}

	for i, genre := range genres {
		s.printf("Finding tracks for genre number %d\n", i)

		tracks, err := s.builder.GenreTracks(ctx, genre, frame, pool.Names())
		if err != nil {
			return err
		}

		s.printf("Found %d tracks\n", len(tracks))

		pool.Add(tracks...)
	}

	return nil
}

func (s *setup) playlists(ctx context.Context, pool *neardle.Pool, public bool) error {
	queries, err := s.list("Enter a comma-separated list of playlists")
	if err != nil {
		return err
	}

	for _, query := range queries {
		tracks, err := s.builder.PlaylistTracks(ctx, query, public)
		switch {
		case errors.Is(err, neardle.ErrLookupMiss):
			s.printf("%s not found\n", query)
			continue
		case err != nil:
			return err
		}

		pool.Add(tracks...)
	}

	return nil
}
