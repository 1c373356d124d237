// package formatter exports track lists (liked tracks, playlists, download manifests) to CSV, Markdown, plain text and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/jukebox/internal/models"
	"github.com/desertthunder/jukebox/internal/shared"
)

// Supported export formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// Entry is a track with its artist name resolved.
type Entry struct {
	models.Track
	Artist string `json:"artist"`
}

// Export is a named list of tracks ready to be written.
type Export struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ExportedAt  time.Time `json:"exported_at"`
	Entries     []Entry   `json:"tracks"`
}

// Metadata describes an export without its tracks.
type Metadata struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ExportedAt  time.Time `json:"exported_at"`
	TrackCount  int       `json:"track_count"`
}

// NewExport builds an [Export] from tracks, naming each artist with artistName.
func NewExport(name, description string, tracks []models.Track, artistName func(id int64) string) *Export {
	entries := make([]Entry, len(tracks))
	for i, t := range tracks {
		entries[i] = Entry{Track: t, Artist: artistName(t.ArtistID)}
	}
	return &Export{
		Name:        name,
		Description: description,
		ExportedAt:  time.Now().UTC().Truncate(time.Second),
		Entries:     entries,
	}
}

// Metadata returns the export header.
func (e *Export) Metadata() Metadata {
	return Metadata{Name: e.Name, Description: e.Description, ExportedAt: e.ExportedAt, TrackCount: len(e.Entries)}
}

// ParseFormat validates a format name. "md" and "text" are accepted as aliases.
func ParseFormat(s string) (string, error) {
	switch s {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatText, "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (json, csv, markdown, txt)", shared.ErrInvalidArgument, s)
	}
}

// ExportToJSON converts an Export to indented JSON.
func ExportToJSON(export *Export) ([]byte, error) {
	return marshalJSON(export)
}

// ExportToCSV converts an Export to CSV format with columns: ID, Title, Artist, Genre, Duration, Plays, Likes, Downloads
func ExportToCSV(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Genre", "Duration", "Plays", "Likes", "Downloads"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range export.Entries {
		record := []string{
			strconv.FormatInt(e.ID, 10),
			e.Title,
			e.Artist,
			e.Genre,
			shared.FormatDuration(float64(e.DurationSeconds)),
			strconv.Itoa(e.PlayCount),
			strconv.Itoa(e.LikeCount),
			strconv.Itoa(e.DownloadCount),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts an Export to Markdown format with optional cover image
func ExportToMarkdown(export *Export, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Name)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	if export.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", export.Description)
	}

	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(export.Entries))
	if !export.ExportedAt.IsZero() {
		fmt.Fprintf(&buf, "**Exported**: %s\n", export.ExportedAt.Format(time.RFC3339))
	}
	buf.WriteString("\n## Tracks\n\n")

	for i, e := range export.Entries {
		genrePart := ""
		if e.Genre != "" {
			genrePart = fmt.Sprintf(" (%s)", e.Genre)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, e.Artist, e.Title, genrePart, shared.FormatDuration(float64(e.DurationSeconds)))
	}

	return buf.Bytes(), nil
}

// ExportToText converts an Export to plain text format
func ExportToText(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", export.Name)
	if export.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", export.Description)
	}
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(export.Entries))

	for i, e := range export.Entries {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, e.Artist, e.Title)
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport exports tracks to CSV format with an accompanying metadata JSON file.
//
// Creates {base}_tracks.csv and {base}_metadata.json
func WriteCSVExport(export *Export, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = shared.SanitizeFilename(export.Name)
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := marshalJSON(export.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		TracksFile:   tracksFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports tracks to Markdown format in a dedicated directory.
//
// The imageURL parameter is optional - if provided, attempts to download the cover image.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(export *Export, outputDir string, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = shared.SanitizeFilename(export.Name)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(export, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports tracks to plain text format.
//
// Defaults to {name}_tracks.txt as the filename.
func WriteTextExport(export *Export, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_tracks.txt", shared.SanitizeFilename(export.Name))
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteExport writes export in format under dir and returns the files created.
func WriteExport(export *Export, format, dir string) ([]string, error) {
	format, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	base := filepath.Join(dir, shared.SanitizeFilename(export.Name))
	switch format {
	case FormatCSV:
		res, err := WriteCSVExport(export, base)
		if err != nil {
			return nil, err
		}
		return []string{res.TracksFile, res.MetadataFile}, nil
	case FormatMarkdown:
		res, err := WriteMarkdownExport(export, base, "")
		if err != nil {
			return nil, err
		}
		return res.Files, nil
	case FormatText:
		path, err := WriteTextExport(export, base+"_tracks.txt")
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	default:
		if err := WriteJSON(export, base+".json"); err != nil {
			return nil, err
		}
		return []string{base + ".json"}, nil
	}
}

// WriteJSON writes v as indented JSON to path. Download manifests are written with it.
func WriteJSON(v any, path string) error {
	data, err := marshalJSON(v)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func marshalJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return data, nil
}
