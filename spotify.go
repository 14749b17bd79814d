/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Seednode/neardle/games/neardle"
	"github.com/zmb3/spotify/v2"
)

// spotifyCatalog is both the catalog Source and the Playback device of a
// game, backed by the Spotify Web API.
type spotifyCatalog struct {
	client *spotify.Client
	market string
	device spotify.ID
}

func newSpotifyCatalog(client *spotify.Client, cfg *Config) *spotifyCatalog {
	return &spotifyCatalog{
		client: client,
		market: cfg.market,
		device: spotify.ID(cfg.device),
	}
}

func (s *spotifyCatalog) options(opts ...spotify.RequestOption) []spotify.RequestOption {
	if s.market != "" {
		opts = append(opts, spotify.Market(s.market))
	}
	return opts
}

func rawTrack(t spotify.FullTrack) neardle.RawTrack {
	raw := neardle.RawTrack{
		AlbumName:   t.Album.Name,
		AlbumID:     string(t.Album.URI),
		ReleaseDate: t.Album.ReleaseDate,
		Name:        t.Name,
		ID:          string(t.URI),
		Popularity:  int(t.Popularity),
	}

	if len(t.Artists) > 0 {
		raw.ArtistName = t.Artists[0].Name
		raw.ArtistID = string(t.Artists[0].ID)
	}
	if len(t.Album.Artists) > 0 {
		raw.AlbumArtistName = t.Album.Artists[0].Name
	}

	return raw
}

func (s *spotifyCatalog) FindArtist(ctx context.Context, name string) (neardle.Artist, error) {
	res, err := s.client.Search(ctx, "artist:"+name, spotify.SearchTypeArtist, s.options(spotify.Limit(1))...)
	if err != nil {
		return neardle.Artist{}, err
	}

	if res.Artists == nil || len(res.Artists.Artists) == 0 {
		return neardle.Artist{}, fmt.Errorf("artist %q: %w", name, neardle.ErrLookupMiss)
	}

	a := res.Artists.Artists[0]

	return neardle.Artist{Name: a.Name, ID: string(a.ID)}, nil
}

func (s *spotifyCatalog) searchTracks(ctx context.Context, query string, offset, limit int) (neardle.Page, error) {
	res, err := s.client.Search(ctx, query, spotify.SearchTypeTrack, s.options(spotify.Limit(limit), spotify.Offset(offset))...)
	if err != nil {
		return neardle.Page{}, err
	}

	if res.Tracks == nil {
		return neardle.Page{}, nil
	}

	page := neardle.Page{
		Tracks:  make([]neardle.RawTrack, 0, len(res.Tracks.Tracks)),
		HasNext: res.Tracks.Next != "",
	}
	for _, t := range res.Tracks.Tracks {
		page.Tracks = append(page.Tracks, rawTrack(t))
	}

	return page, nil
}

func (s *spotifyCatalog) SearchTracksByArtist(ctx context.Context, name string, offset, limit int) (neardle.Page, error) {
	return s.searchTracks(ctx, "artist:"+name, offset, limit)
}

func (s *spotifyCatalog) SearchTracksByGenre(ctx context.Context, genre string, offset, limit int) (neardle.Page, error) {
	return s.searchTracks(ctx, "genre:"+genre, offset, limit)
}

func (s *spotifyCatalog) TopTracks(ctx context.Context, artist neardle.Artist) ([]neardle.RawTrack, error) {
	tracks, err := s.client.GetArtistsTopTracks(ctx, spotify.ID(artist.ID), s.market)
	if err != nil {
		return nil, err
	}

	raws := make([]neardle.RawTrack, 0, len(tracks))
	for _, t := range tracks {
		raws = append(raws, rawTrack(t))
	}

	return raws, nil
}

func (s *spotifyCatalog) RelatedArtists(ctx context.Context, artist neardle.Artist) ([]neardle.RawArtist, error) {
	artists, err := s.client.GetRelatedArtists(ctx, spotify.ID(artist.ID))
	if err != nil {
		return nil, err
	}

	raws := make([]neardle.RawArtist, 0, len(artists))
	for _, a := range artists {
		raws = append(raws, neardle.RawArtist{
			Name:       a.Name,
			ID:         string(a.ID),
			Popularity: int(a.Popularity),
		})
	}

	return raws, nil
}

func (s *spotifyCatalog) playlists(ctx context.Context, query string, public bool) ([]spotify.SimplePlaylist, error) {
	if public {
		res, err := s.client.Search(ctx, query, spotify.SearchTypePlaylist, s.options()...)
		if err != nil {
			return nil, err
		}
		if res.Playlists == nil {
			return nil, nil
		}
		return res.Playlists.Playlists, nil
	}

	page, err := s.client.CurrentUsersPlaylists(ctx, spotify.Limit(50))
	if err != nil {
		return nil, err
	}

	var all []spotify.SimplePlaylist
	for {
		all = append(all, page.Playlists...)

		err := s.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			return all, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (s *spotifyCatalog) PlaylistTracks(ctx context.Context, query string, public bool) ([]neardle.RawTrack, error) {
	candidates, err := s.playlists(ctx, query, public)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(candidates))
	for i, p := range candidates {
		names[i] = p.Name
	}

	i, ok := neardle.MatchPlaylist(names, query)
	if !ok {
		return nil, neardle.ErrLookupMiss
	}

	items, err := s.client.GetPlaylistItems(ctx, candidates[i].ID, s.options()...)
	if err != nil {
		return nil, err
	}

	var raws []neardle.RawTrack
	for {
		for _, item := range items.Items {
			if item.Track.Track == nil {
				continue
			}
			raws = append(raws, rawTrack(*item.Track.Track))
		}

		err := s.client.NextPage(ctx, items)
		if errors.Is(err, spotify.ErrNoMorePages) {
			return raws, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (s *spotifyCatalog) playOptions() *spotify.PlayOptions {
	opts := &spotify.PlayOptions{}
	if s.device != "" {
		device := s.device
		opts.DeviceID = &device
	}
	return opts
}

func (s *spotifyCatalog) Play(ctx context.Context, trackID string) error {
	opts := s.playOptions()
	opts.URIs = []spotify.URI{spotify.URI(trackID)}

	return s.client.PlayOpt(ctx, opts)
}

func (s *spotifyCatalog) Pause(ctx context.Context) error {
	return s.client.PauseOpt(ctx, s.playOptions())
}
