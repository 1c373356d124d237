// package catalog caches the catalog for the lifetime of a run and derives the browse views from it
package catalog

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/desertthunder/jukebox/internal/models"
)

// UnknownArtist is shown for tracks whose artist is not in the catalog.
const UnknownArtist = "Unknown"

// Page sizes used by the browse views.
const (
	SongsPerPage   = 10
	ArtistsPerPage = 8
	TrendingSize   = 5
)

// Source fetches the catalog collections.
type Source interface {
	GetSongs(ctx context.Context) ([]models.Track, error)
	GetArtists(ctx context.Context) ([]models.Artist, error)
}

// Library is an immutable snapshot of the catalog with id lookups.
type Library struct {
	tracks  []models.Track
	artists []models.Artist
	trackAt map[int64]int
	artAt   map[int64]int
}

// New builds a [Library] from already fetched records, preserving their order.
func New(tracks []models.Track, artists []models.Artist) *Library {
	l := &Library{
		tracks:  slices.Clone(tracks),
		artists: slices.Clone(artists),
		trackAt: make(map[int64]int, len(tracks)),
		artAt:   make(map[int64]int, len(artists)),
	}
	for i, t := range l.tracks {
		l.trackAt[t.ID] = i
	}
	for i, a := range l.artists {
		l.artAt[a.ID] = i
	}
	return l
}

// Load fetches artists and songs concurrently. Either failure fails the load.
func Load(ctx context.Context, src Source) (*Library, error) {
	var (
		wg         sync.WaitGroup
		tracks     []models.Track
		artists    []models.Artist
		trackErr   error
		artistsErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		tracks, trackErr = src.GetSongs(ctx)
	}()
	go func() {
		defer wg.Done()
		artists, artistsErr = src.GetArtists(ctx)
	}()
	wg.Wait()

	if artistsErr != nil {
		return nil, fmt.Errorf("failed to load artists: %w", artistsErr)
	}
	if trackErr != nil {
		return nil, fmt.Errorf("failed to load songs: %w", trackErr)
	}
	return New(tracks, artists), nil
}

// All returns every track in catalog order.
func (l *Library) All() []models.Track { return slices.Clone(l.tracks) }

// Artists returns every artist in catalog order.
func (l *Library) Artists() []models.Artist { return slices.Clone(l.artists) }

// Len returns the number of tracks.
func (l *Library) Len() int { return len(l.tracks) }

// Track looks up a track by id.
func (l *Library) Track(id int64) (models.Track, bool) {
	i, ok := l.trackAt[id]
	if !ok {
		return models.Track{}, false
	}
	return l.tracks[i], true
}

// Artist looks up an artist by id.
func (l *Library) Artist(id int64) (models.Artist, bool) {
	i, ok := l.artAt[id]
	if !ok {
		return models.Artist{}, false
	}
	return l.artists[i], true
}

// ArtistName returns the artist's name or [UnknownArtist].
func (l *Library) ArtistName(id int64) string {
	if a, ok := l.Artist(id); ok {
		return a.Name
	}
	return UnknownArtist
}

// Tracks resolves ids in order, skipping ids that are not in the catalog.
func (l *Library) Tracks(ids []int64) []models.Track {
	out := make([]models.Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := l.Track(id); ok {
			out = append(out, t)
		}
	}
	return out
}

// Trending returns the n most played tracks. Ties keep catalog order.
func (l *Library) Trending(n int) []models.Track {
	sorted := slices.Clone(l.tracks)
	slices.SortStableFunc(sorted, func(a, b models.Track) int {
		return cmp.Compare(b.PlayCount, a.PlayCount)
	})
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// Filter selects tracks for the songs view. Zero fields match everything.
type Filter struct {
	Query    string // matched case-insensitively against title and artist name
	ArtistID int64
	Genre    string
}

// Filter returns the tracks matching f in catalog order.
func (l *Library) Filter(f Filter) []models.Track {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.Track, 0, len(l.tracks))
	for _, t := range l.tracks {
		if f.ArtistID != 0 && t.ArtistID != f.ArtistID {
			continue
		}
		if f.Genre != "" && t.Genre != f.Genre {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(l.ArtistName(t.ArtistID)), q) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// FilterArtists returns artists whose name contains query and, when genre is set,
// who have at least one track in that genre.
func (l *Library) FilterArtists(query, genre string) []models.Artist {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Artist, 0, len(l.artists))
	for _, a := range l.artists {
		if q != "" && !strings.Contains(strings.ToLower(a.Name), q) {
			continue
		}
		if genre != "" && !slices.ContainsFunc(l.tracks, func(t models.Track) bool {
			return t.ArtistID == a.ID && t.Genre == genre
		}) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// ByArtist returns an artist's discography in catalog order.
func (l *Library) ByArtist(id int64) []models.Track {
	return l.Filter(Filter{ArtistID: id})
}

// Liked returns the liked tracks in catalog order.
func (l *Library) Liked(likes models.LikeSet) []models.Track {
	out := make([]models.Track, 0, likes.Len())
	for _, t := range l.tracks {
		if likes.Has(t.ID) {
			out = append(out, t)
		}
	}
	return out
}

// Genres returns the distinct non-empty genres, sorted.
func (l *Library) Genres() []string {
	var genres []string
	for _, t := range l.tracks {
		if t.Genre != "" {
			genres = append(genres, t.Genre)
		}
	}
	slices.Sort(genres)
	return slices.Compact(genres)
}

// ArtistStats summarises an artist's discography.
type ArtistStats struct {
	Tracks    int
	Plays     int
	Likes     int
	Downloads int
	Genre     string // genre of the first track, empty when the artist has none
}

// ArtistStats totals the counters over an artist's tracks.
func (l *Library) ArtistStats(id int64) ArtistStats {
	var s ArtistStats
	for _, t := range l.ByArtist(id) {
		if s.Tracks == 0 {
			s.Genre = t.Genre
		}
		s.Tracks++
		s.Plays += t.PlayCount
		s.Likes += t.LikeCount
		s.Downloads += t.DownloadCount
	}
	return s
}

// Page is one page of a paginated view. Page numbers start at 1.
type Page[T any] struct {
	Items []T
	Page  int
	Pages int
	Total int
}

// HasNext reports whether a later page exists.
func (p Page[T]) HasNext() bool { return p.Page < p.Pages }

// HasPrev reports whether an earlier page exists.
func (p Page[T]) HasPrev() bool { return p.Page > 1 }

// Paginate returns page of items with per items per page.
//
// The page is clamped to [1, pages]; an empty list has a single empty page.
func Paginate[T any](items []T, page, per int) Page[T] {
	if per <= 0 {
		per = len(items)
		if per == 0 {
			per = 1
		}
	}
	pages := max((len(items)+per-1)/per, 1)
	page = min(max(page, 1), pages)

	start := min((page-1)*per, len(items))
	end := min(start+per, len(items))
	return Page[T]{Items: items[start:end], Page: page, Pages: pages, Total: len(items)}
}
