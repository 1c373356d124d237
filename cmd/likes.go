package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/jukebox/internal/formatter"
	"github.com/desertthunder/jukebox/internal/shared"
	"github.com/desertthunder/jukebox/internal/tasks"
	"github.com/urfave/cli/v3"
)

// LikesList prints the liked songs that are still in the catalog.
func (r *Runner) LikesList(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.loadLibrary(ctx)
	if err != nil {
		return err
	}

	store, err := r.openStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	likes, err := tasks.NewLikeSync(store.slots, r.catalog, r.logger).Likes(ctx)
	if err != nil {
		return err
	}

	tracks := lib.Liked(likes)
	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Liked Songs (%d)", len(tracks)))
	r.writeTracks(lib, tracks, 0)
	return nil
}

// LikesToggle likes or unlikes a song and mirrors the change to the data service.
func (r *Runner) LikesToggle(ctx context.Context, cmd *cli.Command) error {
	id, err := parseTrackID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	lib, err := r.loadLibrary(ctx)
	if err != nil {
		return err
	}
	track, ok := lib.Track(id)
	if !ok {
		return fmt.Errorf("%w: %d", shared.ErrTrackNotFound, id)
	}

	store, err := r.openStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	liked, err := tasks.NewLikeSync(store.slots, r.catalog, r.logger).Toggle(ctx, id)
	if err != nil {
		return err
	}

	return r.writePlain("%s %s - %s\n", tasks.GlyphFor(liked).Icon(), track.Title, lib.ArtistName(track.ArtistID))
}

// LikesExport writes the liked songs in the requested format.
func (r *Runner) LikesExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	lib, err := r.loadLibrary(ctx)
	if err != nil {
		return err
	}

	store, err := r.openStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	likes, err := tasks.NewLikeSync(store.slots, r.catalog, r.logger).Likes(ctx)
	if err != nil {
		return err
	}

	tracks := lib.Liked(likes)
	export := formatter.NewExport(cmd.String("name"), "Songs liked in jukebox", tracks, lib.ArtistName)
	paths, err := formatter.WriteExport(export, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("exported liked songs", "format", format, "tracks", len(tracks))
	r.writePlain("✓ Exported %d liked songs\n", len(tracks))
	for _, p := range paths {
		r.writePlain("  %s\n", p)
	}
	return nil
}
