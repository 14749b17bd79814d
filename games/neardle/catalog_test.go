package neardle

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
)

type fakeSource struct {
	artists  map[string]Artist
	byArtist []RawTrack
	byGenre  []RawTrack
	top      []RawTrack
	related  []RawArtist
	playlist []RawTrack

	pageCalls int
	err       error
}

func (f *fakeSource) FindArtist(_ context.Context, name string) (Artist, error) {
	if a, ok := f.artists[name]; ok {
		return a, nil
	}
	return Artist{}, ErrLookupMiss
}

func (f *fakeSource) page(all []RawTrack, offset, limit int) (Page, error) {
	f.pageCalls++
	if f.err != nil {
		return Page{}, f.err
	}
	if offset >= len(all) {
		return Page{}, nil
	}
	end := min(offset+limit, len(all))
	return Page{Tracks: all[offset:end], HasNext: end < len(all)}, nil
}

func (f *fakeSource) SearchTracksByArtist(_ context.Context, _ string, offset, limit int) (Page, error) {
	return f.page(f.byArtist, offset, limit)
}

func (f *fakeSource) SearchTracksByGenre(_ context.Context, _ string, offset, limit int) (Page, error) {
	return f.page(f.byGenre, offset, limit)
}

func (f *fakeSource) TopTracks(context.Context, Artist) ([]RawTrack, error) {
	return f.top, f.err
}

func (f *fakeSource) RelatedArtists(context.Context, Artist) ([]RawArtist, error) {
	return f.related, f.err
}

func (f *fakeSource) PlaylistTracks(context.Context, string, bool) ([]RawTrack, error) {
	return f.playlist, f.err
}

func raw(artist, name, date string, popularity int) RawTrack {
	return RawTrack{
		ArtistName:      artist,
		ArtistID:        "id:" + artist,
		AlbumArtistName: artist,
		AlbumName:       name + " LP",
		AlbumID:         "album:" + name,
		ReleaseDate:     date,
		Name:            name,
		ID:              "track:" + name,
		Popularity:      popularity,
	}
}

func testBuilder(src Source) (*Builder, *[]string) {
	var warnings []string

	b := NewBuilder(src, Params{
		PageSize:                  2,
		MaxOffset:                 100,
		TrackPopularityThreshold:  50,
		ArtistPopularityThreshold: 50,
		MaxRelatedArtists:         2,
		MaxTracksPerArtist:        3,
	})
	b.Warnf = func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	return b, &warnings
}

func TestPagerStopsAtLastPage(t *testing.T) {
	src := &fakeSource{byGenre: []RawTrack{
		raw("A", "one", "1990", 60),
		raw("A", "two", "1990", 60),
		raw("A", "three", "1990", 60),
	}}

	pager := NewPager(func(ctx context.Context, offset, limit int) (Page, error) {
		return src.SearchTracksByGenre(ctx, "rock", offset, limit)
	}, 2, 100)

	var seen []string
	for pager.Next(context.Background()) {
		for _, r := range pager.Tracks() {
			seen = append(seen, r.Name)
		}
	}

	if err := pager.Err(); err != nil {
		t.Fatalf("pager error: %v", err)
	}
	if want := []string{"one", "two", "three"}; !slices.Equal(seen, want) {
		t.Errorf("seen = %v, want %v", seen, want)
	}
	if src.pageCalls != 2 {
		t.Errorf("page calls = %d, want 2", src.pageCalls)
	}
}

func TestPagerStopsAtMaxOffset(t *testing.T) {
	calls := 0
	pager := NewPager(func(context.Context, int, int) (Page, error) {
		calls++
		return Page{Tracks: []RawTrack{{Name: "x"}}, HasNext: true}, nil
	}, 10, 30)

	for pager.Next(context.Background()) {
	}

	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestPagerError(t *testing.T) {
	boom := errors.New("boom")
	pager := NewPager(func(context.Context, int, int) (Page, error) {
		return Page{}, boom
	}, 10, 30)

	if pager.Next(context.Background()) {
		t.Fatal("Next returned true on error")
	}
	if !errors.Is(pager.Err(), boom) {
		t.Errorf("Err = %v, want boom", pager.Err())
	}
}

func TestPopularTracks(t *testing.T) {
	src := &fakeSource{byArtist: []RawTrack{
		raw("Queen", "Bohemian Rhapsody (Live)", "1986", 70),
		raw("Queen", "Bohemian Rhapsody", "1975-10-31", 90),
		raw("Queen", "Too Obscure", "1980", 20),
		raw("Queen", "Too Late", "2001", 80),
		raw("Queen", "Bad Date", "19", 80),
		raw("Queen", "Radio Ga Ga", "1984-01", 75),
		raw("Queen", "Under Pressure", "1981", 85),
		raw("Queen", "Killer Queen", "1974-10", 65),
	}}
	cover := raw("Someone Else", "Cover Song", "1980", 99)
	cover.AlbumArtistName = "Someone Else"
	src.byArtist = append(src.byArtist, cover)

	b, warnings := testBuilder(src)

	got, err := b.PopularTracks(context.Background(), Artist{Name: "Queen", ID: "q"}, Dateframe{Start: 1970, End: 1990})
	if err != nil {
		t.Fatalf("PopularTracks: %v", err)
	}

	want := []string{"Bohemian Rhapsody", "Under Pressure", "Radio Ga Ga"}
	if !slices.Equal(names(got), want) {
		t.Errorf("PopularTracks = %v, want %v", names(got), want)
	}

	if got[0].Album.Year != 1975 || got[0].Artist.ID != "q" {
		t.Errorf("first track = %+v", got[0])
	}

	if len(*warnings) != 1 {
		t.Errorf("warnings = %v, want one for the bad date", *warnings)
	}
}

func TestTopTracks(t *testing.T) {
	src := &fakeSource{top: []RawTrack{
		raw("Queen", "Bohemian Rhapsody", "1975", 90),
		raw("Queen", "Bohemian Rhapsody - Remastered", "2011", 95),
		raw("Queen", "Don't Stop Me Now", "1978", 88),
	}}

	b, _ := testBuilder(src)

	got, err := b.TopTracks(context.Background(), Artist{Name: "Queen"})
	if err != nil {
		t.Fatalf("TopTracks: %v", err)
	}

	if want := []string{"Bohemian Rhapsody", "Don't Stop Me Now"}; !slices.Equal(names(got), want) {
		t.Errorf("TopTracks = %v, want %v", names(got), want)
	}
}

func TestRelatedArtists(t *testing.T) {
	src := &fakeSource{related: []RawArtist{
		{Name: "David Bowie", ID: "db", Popularity: 80},
		{Name: "Queen", ID: "q", Popularity: 90},
		{Name: "Nobody", ID: "n", Popularity: 10},
		{Name: "Led Zeppelin", ID: "lz", Popularity: 85},
		{Name: "The Who", ID: "tw", Popularity: 75},
	}}

	b, _ := testBuilder(src)

	got, err := b.RelatedArtists(context.Background(), Artist{Name: "Queen"}, []Artist{{Name: "Queen"}})
	if err != nil {
		t.Fatalf("RelatedArtists: %v", err)
	}

	want := []Artist{{Name: "David Bowie", ID: "db"}, {Name: "Led Zeppelin", ID: "lz"}}
	if !slices.Equal(got, want) {
		t.Errorf("RelatedArtists = %v, want %v", got, want)
	}
}

func TestGenreTracks(t *testing.T) {
	src := &fakeSource{byGenre: []RawTrack{
		raw("A", "Alpha", "1980", 70),
		raw("B", "Alpha (Live)", "1981", 90),
		raw("C", "Known", "1982", 90),
		raw("D", "Quiet", "1983", 40),
		raw("E", "Future", "2020", 90),
		raw("F", "Zulu", "1984-02-02", 60),
	}}

	b, _ := testBuilder(src)

	got, err := b.GenreTracks(context.Background(), "rock", Dateframe{Start: 1970, End: 1999}, map[string]bool{"Known": true})
	if err != nil {
		t.Fatalf("GenreTracks: %v", err)
	}

	if want := []string{"Alpha", "Zulu"}; !slices.Equal(names(got), want) {
		t.Errorf("GenreTracks = %v, want %v", names(got), want)
	}
	if got[1].Artist.Name != "F" {
		t.Errorf("artist = %q, want F", got[1].Artist.Name)
	}
}

func TestFindArtistsSkipsMisses(t *testing.T) {
	src := &fakeSource{artists: map[string]Artist{"Queen": {Name: "Queen", ID: "q"}}}
	b, warnings := testBuilder(src)

	got, err := b.FindArtists(context.Background(), []string{"Queen", "Nobody"})
	if err != nil {
		t.Fatalf("FindArtists: %v", err)
	}
	if len(got) != 1 || got[0].ID != "q" {
		t.Errorf("FindArtists = %v", got)
	}
	if len(*warnings) != 1 {
		t.Errorf("warnings = %v", *warnings)
	}
}

func TestPlaylistTracks(t *testing.T) {
	src := &fakeSource{playlist: []RawTrack{
		raw("A", "One", "1990-01-01", 10),
		raw("B", "Two", "bogus", 10),
	}}
	b, _ := testBuilder(src)

	got, err := b.PlaylistTracks(context.Background(), "mix", false)
	if err != nil {
		t.Fatalf("PlaylistTracks: %v", err)
	}
	if want := []string{"One"}; !slices.Equal(names(got), want) {
		t.Errorf("PlaylistTracks = %v, want %v", names(got), want)
	}
}

func TestMatchPlaylist(t *testing.T) {
	playlists := []string{"Road Trip", "Summer Hits 2020", "Summer Hits"}

	if i, ok := MatchPlaylist(playlists, "Summer Hits"); !ok || i != 2 {
		t.Errorf("MatchPlaylist = %d, %v; want 2, true", i, ok)
	}
	if _, ok := MatchPlaylist(playlists, "Winter"); ok {
		t.Error("MatchPlaylist matched an unrelated name")
	}
}
