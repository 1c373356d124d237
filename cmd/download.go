package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/jukebox/internal/models"
	"github.com/desertthunder/jukebox/internal/shared"
	"github.com/desertthunder/jukebox/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Download saves one song, or every liked song with --liked.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.String("output")
	if dir == "" {
		dir = r.config.Player.DownloadDir
	}

	lib, err := r.loadLibrary(ctx)
	if err != nil {
		return err
	}
	downloader := tasks.NewDownloader(r.catalog, lib, r.logger)

	if !cmd.Bool("liked") {
		id, err := parseTrackID(cmd.StringArg("id"))
		if err != nil {
			return err
		}
		track, ok := lib.Track(id)
		if !ok {
			return fmt.Errorf("%w: %d", shared.ErrTrackNotFound, id)
		}

		path, err := downloader.Download(ctx, track, dir)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Saved %s\n", path)
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
	if len(tracks) == 0 {
		return r.writePlain("No liked songs to download.\n")
	}

	result, err := r.bulkDownload(ctx, downloader, tracks, tasks.BulkDownloadOpts{
		OutputDir:  dir,
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	})
	if result != nil {
		r.writePlainln("Downloaded %d of %d songs to %s", result.Successful, result.TotalTracks, result.OutputDirectory)
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  ✗ %s: %v\n", res.Title, res.Error)
			}
		}
		if result.ManifestPath != "" {
			r.writePlain("Manifest: %s\n", result.ManifestPath)
		}
	}
	return err
}

// bulkDownload runs a bulk download, printing progress updates as they arrive.
func (r *Runner) bulkDownload(
	ctx context.Context,
	downloader *tasks.Downloader,
	tracks []models.Track,
	opts tasks.BulkDownloadOpts,
) (*tasks.BulkDownloadResult, error) {
	progress := make(chan tasks.ProgressUpdate, 16)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			if update.Phase == tasks.DownloadTrack && update.Total > 0 {
				r.writePlain("[%d/%d] %s\n", update.Step, update.Total, update.Message)
				continue
			}
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := downloader.BulkDownload(ctx, progress, tracks, opts)
	close(progress)
	wg.Wait()
	return result, err
}
