package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/jukebox/internal/models"
	tu "github.com/desertthunder/jukebox/internal/testing"
)

func sampleLibrary() *Library {
	artists := []models.Artist{
		{ID: 1, Name: "Neon Tide"},
		{ID: 2, Name: "Glass Harbor"},
	}
	tracks := []models.Track{
		{ID: 10, Title: "Night Drive", ArtistID: 1, Genre: "Synthwave", PlayCount: 40, LikeCount: 2},
		{ID: 11, Title: "Low Tide", ArtistID: 2, Genre: "Ambient", PlayCount: 90, LikeCount: 5, DownloadCount: 1},
		{ID: 12, Title: "Harbor Lights", ArtistID: 2, Genre: "Ambient", PlayCount: 40},
		{ID: 13, Title: "Static", ArtistID: 9, PlayCount: 5},
	}
	return New(tracks, artists)
}

func trackIDs(tracks []models.Track) string {
	ids := make([]int64, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}
	return fmt.Sprint(ids)
}

func TestLoad(t *testing.T) {
	t.Run("fetches both collections", func(t *testing.T) {
		src := tu.NewFakeCatalog(sampleLibrary().All(), sampleLibrary().Artists())
		lib, err := Load(context.Background(), src)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if lib.Len() != 4 || len(lib.Artists()) != 2 {
			t.Errorf("unexpected library with %d tracks and %d artists", lib.Len(), len(lib.Artists()))
		}
	})

	tests := []struct {
		name      string
		songsErr  error
		artistErr error
	}{
		{"songs fail", errors.New("songs down"), nil},
		{"artists fail", nil, errors.New("artists down")},
		{"both fail", errors.New("songs down"), errors.New("artists down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := tu.NewFakeCatalog(nil, nil)
			src.SongsErr = tt.songsErr
			src.ArtistErr = tt.artistErr

			lib, err := Load(context.Background(), src)
			if err == nil || lib != nil {
				t.Fatalf("expected an error, got %v", lib)
			}
			if want := tt.artistErr; want != nil && !errors.Is(err, want) {
				t.Errorf("expected %v, got %v", want, err)
			}
			if tt.artistErr == nil && !errors.Is(err, tt.songsErr) {
				t.Errorf("expected %v, got %v", tt.songsErr, err)
			}
		})
	}
}

func TestLibrary_Lookups(t *testing.T) {
	lib := sampleLibrary()

	if tr, ok := lib.Track(12); !ok || tr.Title != "Harbor Lights" {
		t.Errorf("unexpected track %+v", tr)
	}
	if _, ok := lib.Track(99); ok {
		t.Error("expected unknown track to be missing")
	}
	if got := lib.ArtistName(2); got != "Glass Harbor" {
		t.Errorf("expected Glass Harbor, got %q", got)
	}
	if got := lib.ArtistName(9); got != UnknownArtist {
		t.Errorf("expected fallback name, got %q", got)
	}
	if got := trackIDs(lib.Tracks([]int64{13, 99, 10})); got != "[13 10]" {
		t.Errorf("unexpected resolved tracks %s", got)
	}
}

func TestLibrary_Trending(t *testing.T) {
	lib := sampleLibrary()

	tests := []struct {
		n    int
		want string
	}{
		{2, "[11 10]"},
		{3, "[11 10 12]"}, // ties keep catalog order
		{10, "[11 10 12 13]"},
		{-1, "[11 10 12 13]"},
	}

	for _, tt := range tests {
		if got := trackIDs(lib.Trending(tt.n)); got != tt.want {
			t.Errorf("Trending(%d) = %s, want %s", tt.n, got, tt.want)
		}
	}
}

func TestLibrary_Filter(t *testing.T) {
	lib := sampleLibrary()

	tests := []struct {
		name   string
		filter Filter
		want   string
	}{
		{"everything", Filter{}, "[10 11 12 13]"},
		{"title", Filter{Query: "drive"}, "[10]"},
		{"artist name", Filter{Query: "GLASS"}, "[11 12]"},
		{"title or artist", Filter{Query: "tide"}, "[10 11]"},
		{"artist id", Filter{ArtistID: 2}, "[11 12]"},
		{"genre", Filter{Genre: "Synthwave"}, "[10]"},
		{"combined", Filter{Query: "harbor", Genre: "Ambient"}, "[11 12]"},
		{"no match", Filter{Query: "polka"}, "[]"},
		{"whitespace", Filter{Query: "  static "}, "[13]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trackIDs(lib.Filter(tt.filter)); got != tt.want {
				t.Errorf("Filter(%+v) = %s, want %s", tt.filter, got, tt.want)
			}
		})
	}
}

func TestLibrary_Views(t *testing.T) {
	lib := sampleLibrary()

	t.Run("FilterArtists", func(t *testing.T) {
		if got := lib.FilterArtists("neon", ""); len(got) != 1 || got[0].ID != 1 {
			t.Errorf("unexpected artists %+v", got)
		}
		if got := lib.FilterArtists("", "Ambient"); len(got) != 1 || got[0].ID != 2 {
			t.Errorf("unexpected artists %+v", got)
		}
	})

	t.Run("ByArtist", func(t *testing.T) {
		if got := trackIDs(lib.ByArtist(2)); got != "[11 12]" {
			t.Errorf("unexpected discography %s", got)
		}
	})

	t.Run("Liked", func(t *testing.T) {
		if got := trackIDs(lib.Liked(models.NewLikeSet(12, 10, 77))); got != "[10 12]" {
			t.Errorf("unexpected liked tracks %s", got)
		}
	})

	t.Run("Genres", func(t *testing.T) {
		if got := fmt.Sprint(lib.Genres()); got != "[Ambient Synthwave]" {
			t.Errorf("unexpected genres %s", got)
		}
	})

	t.Run("ArtistStats", func(t *testing.T) {
		got := lib.ArtistStats(2)
		want := ArtistStats{Tracks: 2, Plays: 130, Likes: 5, Downloads: 1, Genre: "Ambient"}
		if got != want {
			t.Errorf("ArtistStats(2) = %+v, want %+v", got, want)
		}
		if empty := lib.ArtistStats(99); empty != (ArtistStats{}) {
			t.Errorf("expected zero stats, got %+v", empty)
		}
	})

	t.Run("copies", func(t *testing.T) {
		all := lib.All()
		all[0].Title = "changed"
		if tr, _ := lib.Track(10); tr.Title != "Night Drive" {
			t.Error("All should return a copy")
		}
	})
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	tests := []struct {
		name      string
		page, per int
		want      string
		gotPage   int
		pages     int
	}{
		{"first", 1, 3, "[1 2 3]", 1, 3},
		{"last partial", 3, 3, "[7]", 3, 3},
		{"past end clamps", 9, 3, "[7]", 3, 3},
		{"before start clamps", 0, 3, "[1 2 3]", 1, 3},
		{"no page size", 1, 0, "[1 2 3 4 5 6 7]", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(items, tt.page, tt.per)
			if fmt.Sprint(p.Items) != tt.want || p.Page != tt.gotPage || p.Pages != tt.pages || p.Total != 7 {
				t.Errorf("Paginate(%d, %d) = %+v", tt.page, tt.per, p)
			}
		})
	}

	t.Run("empty", func(t *testing.T) {
		p := Paginate([]int{}, 4, 10)
		if p.Page != 1 || p.Pages != 1 || len(p.Items) != 0 || p.HasNext() || p.HasPrev() {
			t.Errorf("unexpected empty page %+v", p)
		}
	})

	t.Run("navigation", func(t *testing.T) {
		p := Paginate(items, 2, 3)
		if !p.HasNext() || !p.HasPrev() {
			t.Errorf("middle page should have neighbours: %+v", p)
		}
	})
}
