package tasks

import (
	"fmt"

	"github.com/desertthunder/jukebox/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	QueueDownloads Phase = iota
	DownloadTrack
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case QueueDownloads:
		return "queue_downloads"
	case DownloadTrack:
		return "download_track"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func queueUpdate(total int, dir string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   QueueDownloads,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Downloading %d tracks to %s...", total, dir),
	}
}

func downloadingUpdate(step, total int, tr models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadTrack,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Downloading: %s...", step, total, tr.Title),
	}
}

func downloadCompletedUpdate(step, total int, res DownloadResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadTrack,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d bytes)", step, total, res.Title, res.Bytes),
		Data:    res,
	}
}

func downloadFailedUpdate(step, total int, res DownloadResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadTrack,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Title, res.Error),
		Data:    res,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Wrote manifest: %s", path),
	}
}
