package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/desertthunder/jukebox/internal/catalog"
	"github.com/desertthunder/jukebox/internal/models"
	tu "github.com/desertthunder/jukebox/internal/testing"
)

var (
	dlArtists = []models.Artist{{ID: 1, Name: "AC/DC Tribute"}, {ID: 2, Name: "Neon Tide"}}
	dlTracks  = []models.Track{
		{ID: 1, Title: "Thunder", ArtistID: 1, AudioURL: "/audio/1.mp3"},
		{ID: 2, Title: "Night Drive", ArtistID: 2, AudioURL: "/audio/2.mp3"},
		{ID: 3, Title: "Lost", ArtistID: 2, AudioURL: "/audio/missing.mp3"},
	}
)

func newTestDownloader() (*Downloader, *tu.FakeCatalog) {
	fc := tu.NewFakeCatalog(dlTracks, dlArtists)
	fc.Audio["/audio/1.mp3"] = []byte("ID3-one")
	fc.Audio["/audio/2.mp3"] = []byte("ID3-two-longer")
	return NewDownloader(fc, catalog.New(dlTracks, dlArtists), nil), fc
}

func TestDownloader_Download(t *testing.T) {
	ctx := context.Background()

	t.Run("saves under a sanitized title - artist name", func(t *testing.T) {
		d, _ := newTestDownloader()
		dir := t.TempDir()

		path, err := d.Download(ctx, dlTracks[0], dir)
		if err != nil {
			t.Fatalf("Download() error = %v", err)
		}

		want := filepath.Join(dir, "Thunder - AC_DC Tribute.mp3")
		if path != want {
			t.Errorf("expected %s, got %s", want, path)
		}
		if got := tu.MustReadFile(t, path); got != "ID3-one" {
			t.Errorf("unexpected content %q", got)
		}
	})

	t.Run("failure leaves no file", func(t *testing.T) {
		d, _ := newTestDownloader()
		dir := t.TempDir()

		if _, err := d.Download(ctx, dlTracks[2], dir); err == nil {
			t.Fatal("expected error for missing audio")
		}
		tu.AssertNoFile(t, dir, ".download-")
		tu.AssertNoFile(t, dir, ".mp3")
	})

	t.Run("track without audio", func(t *testing.T) {
		d, _ := newTestDownloader()
		if _, err := d.Download(ctx, models.Track{ID: 9, Title: "Silent"}, t.TempDir()); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("opener error is returned", func(t *testing.T) {
		d, fc := newTestDownloader()
		fc.AudioErr = errors.New("connection reset")
		if _, err := d.Download(ctx, dlTracks[0], t.TempDir()); err == nil {
			t.Error("expected error")
		}
	})
}

func TestDownloader_BulkDownload(t *testing.T) {
	ctx := context.Background()

	t.Run("partial failures are recorded", func(t *testing.T) {
		d, _ := newTestDownloader()
		dir := filepath.Join(t.TempDir(), "out")
		progress := make(chan ProgressUpdate, 32)

		result, err := d.BulkDownload(ctx, progress, dlTracks, BulkDownloadOpts{OutputDir: dir, NumWorkers: 2, RateLimit: 100})
		if err != nil {
			t.Fatalf("BulkDownload() error = %v", err)
		}
		if result.TotalTracks != 3 || result.Successful != 2 || result.Failed != 1 {
			t.Errorf("unexpected counts %+v", result)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "Night Drive - Neon Tide.mp3"))
		tu.AssertFileExists(t, result.ManifestPath)

		var manifest struct {
			Successful int `json:"successful"`
			Results    []struct {
				TrackID int64  `json:"track_id"`
				Success bool   `json:"success"`
				Error   string `json:"error"`
			} `json:"results"`
		}
		if err := json.Unmarshal([]byte(tu.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
			t.Fatalf("invalid manifest: %v", err)
		}
		if manifest.Successful != 2 || len(manifest.Results) != 3 {
			t.Errorf("unexpected manifest %+v", manifest)
		}
		for _, r := range manifest.Results {
			if r.TrackID == 3 && (r.Success || r.Error == "") {
				t.Errorf("expected failure with message for track 3, got %+v", r)
			}
		}

		close(progress)
		phases := map[Phase]int{}
		for u := range progress {
			phases[u.Phase]++
		}
		if phases[QueueDownloads] != 1 || phases[WriteManifest] != 1 || phases[DownloadTrack] == 0 {
			t.Errorf("unexpected progress phases %v", phases)
		}
	})

	t.Run("all failures return an error", func(t *testing.T) {
		d, fc := newTestDownloader()
		fc.AudioErr = errors.New("offline")

		result, err := d.BulkDownload(ctx, nil, dlTracks[:2], BulkDownloadOpts{OutputDir: t.TempDir(), RateLimit: 100})
		if err == nil {
			t.Fatal("expected error when nothing downloads")
		}
		if result == nil || result.Failed != 2 {
			t.Errorf("expected 2 failures, got %+v", result)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		d, _ := newTestDownloader()
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		if _, err := d.BulkDownload(cctx, nil, dlTracks, BulkDownloadOpts{OutputDir: t.TempDir()}); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("empty track list", func(t *testing.T) {
		d, _ := newTestDownloader()
		result, err := d.BulkDownload(ctx, nil, nil, BulkDownloadOpts{OutputDir: t.TempDir()})
		if err != nil {
			t.Fatalf("BulkDownload() error = %v", err)
		}
		if result.TotalTracks != 0 || result.ManifestPath == "" {
			t.Errorf("unexpected result %+v", result)
		}
	})
}

func TestPhase_String(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{QueueDownloads, "queue_downloads"},
		{DownloadTrack, "download_track"},
		{WriteManifest, "write_manifest"},
		{Phase(99), ""},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}
