package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/jukebox/internal/catalog"
	"github.com/desertthunder/jukebox/internal/models"
	"github.com/desertthunder/jukebox/internal/shared"
	"github.com/urfave/cli/v3"
)

// CatalogSongs lists songs matching the query, artist and genre filters one page at a time.
func (r *Runner) CatalogSongs(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.loadLibrary(ctx)
	if err != nil {
		return err
	}

	tracks := lib.Filter(catalog.Filter{
		Query:    cmd.String("query"),
		ArtistID: cmd.Int64("artist"),
		Genre:    cmd.String("genre"),
	})
	page := catalog.Paginate(tracks, cmd.Int("page"), catalog.SongsPerPage)

	if cmd.Bool("json") {
		return r.writeJSON(page.Items, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Songs")
	r.writeTracks(lib, page.Items, (page.Page-1)*catalog.SongsPerPage)
	return r.writePageFooter(page.Page, page.Pages, page.Total)
}

// CatalogArtists lists artists matching the query and genre filters one page at a time.
func (r *Runner) CatalogArtists(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.loadLibrary(ctx)
	if err != nil {
		return err
	}

	artists := lib.FilterArtists(cmd.String("query"), cmd.String("genre"))
	page := catalog.Paginate(artists, cmd.Int("page"), catalog.ArtistsPerPage)

	if cmd.Bool("json") {
		return r.writeJSON(page.Items, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Artists")
	if len(page.Items) == 0 {
		r.writePlain("No artists found.\n")
	}
	for _, a := range page.Items {
		stats := lib.ArtistStats(a.ID)
		r.writePlain("  [%d] %s\n", a.ID, a.Name)
		r.writePlain("      %d songs • %d plays • %d likes", stats.Tracks, stats.Plays, stats.Likes)
		if stats.Genre != "" {
			r.writePlain(" • %s", stats.Genre)
		}
		r.writePlain("\n")
	}
	return r.writePageFooter(page.Page, page.Pages, page.Total)
}

// CatalogTrending shows the most played songs.
func (r *Runner) CatalogTrending(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.loadLibrary(ctx)
	if err != nil {
		return err
	}

	tracks := lib.Trending(catalog.TrendingSize)
	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Trending")
	r.writeTracks(lib, tracks, 0)
	return nil
}

// CatalogStats prints the data service counters.
func (r *Runner) CatalogStats(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	stats, err := r.catalog.GetStats(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(stats, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Catalog")
	r.writePlain("Songs:    %d\n", stats.SongCount)
	r.writePlain("Artists:  %d\n", stats.ArtistCount)
	r.writePlain("Plays:    %d\n", stats.TotalPlays)
	r.writePlain("Users:    %d\n", stats.UserCount)
	return nil
}

func (r *Runner) writeTracks(lib *catalog.Library, tracks []models.Track, offset int) {
	if len(tracks) == 0 {
		r.writePlain("No songs found.\n")
		return
	}
	for i, t := range tracks {
		details := []string{shared.FormatDuration(float64(t.DurationSeconds)), fmt.Sprintf("%d plays", t.PlayCount)}
		if t.Genre != "" {
			details = append(details, t.Genre)
		}
		r.writePlain("%3d. [%d] %s - %s\n", offset+i+1, t.ID, t.Title, lib.ArtistName(t.ArtistID))
		r.writePlain("     %s\n", strings.Join(details, " • "))
	}
}

func (r *Runner) writePageFooter(page, pages, total int) error {
	return r.writePlainln("Page %d of %d • %d items", page, pages, total)
}
