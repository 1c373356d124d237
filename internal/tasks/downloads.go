package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jukebox/internal/formatter"
	"github.com/desertthunder/jukebox/internal/models"
	"github.com/desertthunder/jukebox/internal/shared"
	"golang.org/x/time/rate"
)

// AudioOpener streams a track's audio.
type AudioOpener interface {
	OpenAudio(ctx context.Context, ref string) (io.ReadCloser, int64, error)
}

// ArtistNamer names the artist of a track.
type ArtistNamer interface {
	ArtistName(id int64) string
}

// Downloader saves track audio to disk.
type Downloader struct {
	opener AudioOpener
	names  ArtistNamer
	logger *log.Logger
}

// NewDownloader creates a [Downloader].
func NewDownloader(opener AudioOpener, names ArtistNamer, logger *log.Logger) *Downloader {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Downloader{opener: opener, names: names, logger: logger}
}

// FileName returns the sanitized "<title> - <artist>.mp3" name for track.
func (d *Downloader) FileName(track models.Track) string {
	return shared.SanitizeFilename(shared.DownloadName(track.Title, d.names.ArtistName(track.ArtistID)))
}

// Download saves track into dir and returns the file path.
//
// The file is written under a temporary name and renamed when complete, so a failed
// download never leaves a partial file under the final name.
func (d *Downloader) Download(ctx context.Context, track models.Track, dir string) (string, error) {
	path, _, err := d.download(ctx, track, dir)
	return path, err
}

func (d *Downloader) download(ctx context.Context, track models.Track, dir string) (string, int64, error) {
	if track.AudioURL == "" {
		return "", 0, fmt.Errorf("%w: track %d has no audio", shared.ErrInvalidArgument, track.ID)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create download directory: %w", err)
	}

	body, _, err := d.opener.OpenAudio(ctx, track.AudioURL)
	if err != nil {
		return "", 0, err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, body)
	if err != nil {
		tmp.Close()
		return "", 0, fmt.Errorf("failed to write audio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", 0, fmt.Errorf("failed to write audio: %w", err)
	}

	path := filepath.Join(dir, d.FileName(track))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", 0, fmt.Errorf("failed to save %s: %w", path, err)
	}

	d.logger.Info("downloaded track", "track", track.ID, "path", path, "bytes", n)
	return path, n, nil
}

// BulkDownloadOpts contains configuration for bulk downloads.
type BulkDownloadOpts struct {
	OutputDir  string  // Base output directory (default: downloads_{epoch})
	NumWorkers int     // Concurrent workers (default: 3, max 8)
	RateLimit  float64 // Downloads started per second (default: 2)
}

// DownloadResult is the outcome for one track.
type DownloadResult struct {
	TrackID int64  `json:"track_id"`
	Title   string `json:"title"`
	Path    string `json:"path,omitempty"`
	Bytes   int64  `json:"bytes"`
	Success bool   `json:"success"`
	Error   error  `json:"-"`
}

// BulkDownloadResult summarizes a bulk download.
type BulkDownloadResult struct {
	TotalTracks     int              `json:"total_tracks"`
	Successful      int              `json:"successful"`
	Failed          int              `json:"failed"`
	OutputDirectory string           `json:"output_directory"`
	Results         []DownloadResult `json:"results"`
	ManifestPath    string           `json:"-"`
}

type manifestEntry struct {
	DownloadResult
	Error string `json:"error,omitempty"`
}

type manifest struct {
	*BulkDownloadResult
	Results []manifestEntry `json:"results"`
}

// BulkDownload downloads tracks concurrently with rate limiting and progress tracking.
//
// Failures are recorded per track. A manifest summarizing the run is written to the output directory.
func (d *Downloader) BulkDownload(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	tracks []models.Track,
	opts BulkDownloadOpts,
) (*BulkDownloadResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("downloads_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkDownloadResult{
		TotalTracks:     len(tracks),
		OutputDirectory: opts.OutputDir,
		Results:         make([]DownloadResult, 0, len(tracks)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan models.Track, len(tracks))
	results := make(chan DownloadResult, len(tracks))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go d.downloadWorker(ctx, &wg, jobs, results, opts.OutputDir)
	}

	go func() {
		defer close(jobs)
		sendProgress(prog, queueUpdate(len(tracks), opts.OutputDir))
		for i, track := range tracks {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			jobs <- track
			sendProgress(prog, downloadingUpdate(i+1, len(tracks), track))
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.Successful++
			sendProgress(prog, downloadCompletedUpdate(completed, len(tracks), res))
		} else {
			result.Failed++
			sendProgress(prog, downloadFailedUpdate(completed, len(tracks), res))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, "download_manifest.json")
	if err := formatter.WriteJSON(result.manifest(), manifestPath); err != nil {
		return result, fmt.Errorf("downloads completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	sendProgress(prog, manifestUpdate(manifestPath))

	if result.TotalTracks > 0 && result.Successful == 0 {
		return result, errors.New("no tracks were downloaded")
	}
	return result, nil
}

// downloadWorker downloads tracks from the jobs channel.
func (d *Downloader) downloadWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan models.Track,
	results chan<- DownloadResult,
	dir string,
) {
	defer wg.Done()

	for track := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res := DownloadResult{TrackID: track.ID, Title: track.Title}
		res.Path, res.Bytes, res.Error = d.download(ctx, track, dir)
		res.Success = res.Error == nil
		if res.Error != nil {
			d.logger.Warn("download failed", "track", track.ID, "error", res.Error)
		}
		results <- res
	}
}

func (r *BulkDownloadResult) manifest() manifest {
	m := manifest{BulkDownloadResult: r, Results: make([]manifestEntry, len(r.Results))}
	for i, res := range r.Results {
		m.Results[i] = manifestEntry{DownloadResult: res}
		if res.Error != nil {
			m.Results[i].Error = res.Error.Error()
		}
	}
	return m
}
