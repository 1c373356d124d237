package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/jukebox/internal/catalog"
	"github.com/desertthunder/jukebox/internal/models"
	"github.com/desertthunder/jukebox/internal/player"
	"github.com/desertthunder/jukebox/internal/repositories"
	"github.com/desertthunder/jukebox/internal/services"
	"github.com/desertthunder/jukebox/internal/session"
	"github.com/desertthunder/jukebox/internal/shared"
	tu "github.com/desertthunder/jukebox/internal/testing"
	"github.com/urfave/cli/v3"
)

var (
	testArtists = []models.Artist{
		{ID: 1, Name: "Neon Tide"},
		{ID: 2, Name: "Glass Harbor"},
	}
	testTracks = []models.Track{
		{ID: 10, Title: "Night Drive", ArtistID: 1, Genre: "Synthwave", PlayCount: 40, AudioURL: "/audio/10.mp3", DurationSeconds: 200},
		{ID: 11, Title: "Low Tide", ArtistID: 2, Genre: "Ambient", PlayCount: 90, AudioURL: "/audio/11.mp3", DurationSeconds: 185},
		{ID: 12, Title: "Harbor Lights", ArtistID: 2, Genre: "Ambient", PlayCount: 60, AudioURL: "/audio/12.mp3", DurationSeconds: 240},
	}
)

// fakeDataService serves the catalog endpoints and records like toggles.
type fakeDataService struct {
	mu      sync.Mutex
	toggles []string
}

func (f *fakeDataService) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(v); err != nil {
			t.Errorf("failed to encode response: %v", err)
		}
	}

	mux.HandleFunc("GET /api/songs", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, testTracks) })
	mux.HandleFunc("GET /api/artists", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, testArtists) })
	mux.HandleFunc("GET /api/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, services.Stats{SongCount: 3, TotalPlays: 190, ArtistCount: 2, UserCount: 7})
	})
	mux.HandleFunc("POST /api/songs/{id}/toggle-like", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Increment bool `json:"increment"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.toggles = append(f.toggles, fmt.Sprintf("%s:%t", r.PathValue("id"), body.Increment))
		f.mu.Unlock()
		writeJSON(w, map[string]bool{"success": true})
	})
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.Email != "ada@example.com" || body.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			writeJSON(w, map[string]string{"error": "invalid credentials"})
			return
		}
		writeJSON(w, models.User{ID: 5, Username: "ada", Email: body.Email})
	})
	mux.HandleFunc("GET /audio/{file}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ID3 fake audio " + r.PathValue("file")))
	})
	return mux
}

func (f *fakeDataService) Toggles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.toggles...)
}

type testRunner struct {
	*Runner
	out     *bytes.Buffer
	service *fakeDataService
	dir     string
}

func newTestRunner(t *testing.T) *testRunner {
	t.Helper()

	service := &fakeDataService{}
	srv := httptest.NewServer(service.handler(t))
	t.Cleanup(srv.Close)

	catalogService, err := services.NewCatalogService(srv.URL, srv.Client(), 0)
	if err != nil {
		t.Fatalf("failed to create catalog service: %v", err)
	}

	dir := t.TempDir()
	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(dir, "jukebox.db")
	config.Storage.Driver = "sqlite"
	config.Player.DownloadDir = filepath.Join(dir, "downloads")

	out := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:  config,
		Catalog: catalogService,
		Logger:  shared.NewLogger(io.Discard),
		Output:  out,
	})
	return &testRunner{Runner: runner, out: out, service: service, dir: dir}
}

// run executes the command line and returns what it printed.
func (tr *testRunner) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	tr.out.Reset()
	app := &cli.Command{Name: "jukebox", Commands: tr.register()}
	err := app.Run(context.Background(), append([]string{"jukebox"}, args...))
	return tr.out.String(), err
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			svc, err := services.NewCatalogService("http://catalog.test", httpClient, 0)
			if err != nil {
				t.Fatal(err)
			}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Catalog:    svc,
				HTTPClient: httpClient,
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.catalog != svc {
				t.Error("expected catalog to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient == nil || runner.httpClient.Timeout != runner.config.API.Timeout() {
				t.Error("expected httpClient with the configured timeout")
			}
			if runner.catalog == nil || runner.catalog.BaseURL() != runner.config.API.BaseURL {
				t.Error("expected catalog service built from config")
			}
		})

		t.Run("with bad base url leaves catalog unset", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.API.BaseURL = "not a url"
			runner := NewRunner(RunnerOpts{Config: config, Logger: shared.NewLogger(io.Discard)})

			if runner.catalog != nil {
				t.Error("expected no catalog service")
			}
			if _, err := runner.loadLibrary(context.Background()); !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		tests := []struct {
			name   string
			format string
			args   []any
			want   string
		}{
			{"formats arguments", "hello %s", []any{"world"}, "hello world"},
			{"plain text", "simple text", nil, "simple text"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				output := &bytes.Buffer{}
				runner := NewRunner(RunnerOpts{Output: output})

				if err := runner.writePlain(tt.format, tt.args...); err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if output.String() != tt.want {
					t.Errorf("expected %q, got %q", tt.want, output.String())
				}
			})
		}

		t.Run("writePlainln pads with newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			runner.writePlainln("Page %d", 2)
			if output.String() != "\nPage 2\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writePlain("test"); err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}
		for _, want := range []string{"setup", "catalog", "likes", "download", "auth", "play", "serve"} {
			if !names[want] {
				t.Errorf("expected %q command to be registered", want)
			}
		}
	})
}

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("sqlite joins the active session", func(t *testing.T) {
		tr := newTestRunner(t)

		first, err := tr.openStorage(ctx)
		if err != nil {
			t.Fatalf("openStorage failed: %v", err)
		}
		if err := repositories.Write(ctx, first.slots, repositories.PlaybackStateKey, models.PlaybackState{
			Playlist: models.Playlist{10, 11}, CurrentIndex: 1, ElapsedSeconds: 12,
		}); err != nil {
			t.Fatalf("failed to write slot: %v", err)
		}
		first.Close()

		second, err := tr.openStorage(ctx)
		if err != nil {
			t.Fatalf("openStorage failed: %v", err)
		}
		defer second.Close()

		if second.session != first.session {
			t.Errorf("expected session %s to be reused, got %s", first.session, second.session)
		}
		state, ok, err := repositories.Read(ctx, second.slots, repositories.PlaybackStateKey)
		if err != nil || !ok || state.CurrentIndex != 1 {
			t.Errorf("expected stored state, got %+v ok=%v err=%v", state, ok, err)
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		tr := newTestRunner(t)
		tr.config.Storage.Driver = "etcd"

		if _, err := tr.openStorage(ctx); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestLibraryRef(t *testing.T) {
	ref := &libraryRef{}

	if _, ok := ref.Track(10); ok {
		t.Error("expected lookups to miss before a library is loaded")
	}
	if got := ref.ArtistName(1); got != catalog.UnknownArtist {
		t.Errorf("expected %q, got %q", catalog.UnknownArtist, got)
	}

	ref.Set(catalog.New(testTracks, testArtists))
	if tr, ok := ref.Track(11); !ok || tr.Title != "Low Tide" {
		t.Errorf("unexpected track %+v", tr)
	}
	if got := ref.ArtistName(2); got != "Glass Harbor" {
		t.Errorf("expected Glass Harbor, got %q", got)
	}
}

func TestParseTrackID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr error
	}{
		{"42", 42, nil},
		{"", 0, shared.ErrMissingArgument},
		{"abc", 0, shared.ErrInvalidArgument},
		{"0", 0, shared.ErrInvalidArgument},
		{"-3", 0, shared.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTrackID(tt.in)
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Fatalf("parseTrackID(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseTrackID(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestCatalogCommands(t *testing.T) {
	tr := newTestRunner(t)

	t.Run("trending as JSON", func(t *testing.T) {
		out, err := tr.run(t, "catalog", "trending", "--json", "--pretty=false")
		if err != nil {
			t.Fatalf("command failed: %v", err)
		}

		var tracks []models.Track
		if err := json.Unmarshal([]byte(out), &tracks); err != nil {
			t.Fatalf("invalid JSON %q: %v", out, err)
		}
		var ids []int64
		for _, track := range tracks {
			ids = append(ids, track.ID)
		}
		if fmt.Sprint(ids) != "[11 12 10]" {
			t.Errorf("expected most played first, got %v", ids)
		}
	})

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "songs filtered by query",
			args: []string{"catalog", "songs", "--query", "harbor"},
			want: []string{"Low Tide - Glass Harbor", "Harbor Lights - Glass Harbor", "Page 1 of 1 • 2 items"},
		},
		{
			name: "songs by artist",
			args: []string{"catalog", "songs", "--artist", "1"},
			want: []string{"Night Drive - Neon Tide", "3:20", "Page 1 of 1 • 1 items"},
		},
		{
			name: "artists with stats",
			args: []string{"catalog", "artists", "--genre", "Ambient"},
			want: []string{"[2] Glass Harbor", "2 songs • 150 plays", "Page 1 of 1 • 1 items"},
		},
		{
			name: "stats",
			args: []string{"catalog", "stats"},
			want: []string{"Songs:    3", "Users:    7"},
		},
		{
			name: "no matches",
			args: []string{"catalog", "songs", "--query", "polka"},
			want: []string{"No songs found."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tr.run(t, tt.args...)
			if err != nil {
				t.Fatalf("command failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, out)
				}
			}
		})
	}
}

func TestLikesCommands(t *testing.T) {
	tr := newTestRunner(t)

	out, err := tr.run(t, "likes", "toggle", "11")
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !strings.Contains(out, "Low Tide - Glass Harbor") {
		t.Errorf("unexpected toggle output %q", out)
	}

	out, err = tr.run(t, "likes", "list", "--json", "--pretty=false")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var liked []models.Track
	if err := json.Unmarshal([]byte(out), &liked); err != nil || len(liked) != 1 || liked[0].ID != 11 {
		t.Fatalf("expected track 11 to be liked, got %q (%v)", out, err)
	}

	t.Run("export", func(t *testing.T) {
		dir := filepath.Join(tr.dir, "exports")
		out, err := tr.run(t, "likes", "export", "--format", "csv", "--output", dir, "--name", "Favourites")
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if !strings.Contains(out, "Exported 1 liked songs") {
			t.Errorf("unexpected export output %q", out)
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) == 0 {
			t.Errorf("expected export files in %s, got %v (%v)", dir, entries, err)
		}
	})

	t.Run("export rejects unknown format", func(t *testing.T) {
		if _, err := tr.run(t, "likes", "export", "--format", "xml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	if _, err := tr.run(t, "likes", "toggle", "11"); err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if got := fmt.Sprint(tr.service.Toggles()); got != "[11:true 11:false]" {
		t.Errorf("expected like then unlike to reach the data service, got %s", got)
	}

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name string
			args []string
			want error
		}{
			{"unknown track", []string{"likes", "toggle", "99"}, shared.ErrTrackNotFound},
			{"bad id", []string{"likes", "toggle", "eleven"}, shared.ErrInvalidArgument},
			{"missing id", []string{"likes", "toggle"}, shared.ErrMissingArgument},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := tr.run(t, tt.args...); !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})
}

func TestDownloadCommand(t *testing.T) {
	t.Run("single track", func(t *testing.T) {
		tr := newTestRunner(t)
		dir := filepath.Join(tr.dir, "single")

		out, err := tr.run(t, "download", "--output", dir, "10")
		if err != nil {
			t.Fatalf("download failed: %v", err)
		}
		if !strings.Contains(out, "✓ Saved") {
			t.Errorf("unexpected output %q", out)
		}
		data := tu.MustReadFile(t, filepath.Join(dir, "Night Drive - Neon Tide.mp3"))
		if !strings.Contains(data, "10.mp3") {
			t.Errorf("unexpected file contents %q", data)
		}
	})

	t.Run("liked tracks", func(t *testing.T) {
		tr := newTestRunner(t)
		for _, id := range []string{"11", "12"} {
			if _, err := tr.run(t, "likes", "toggle", id); err != nil {
				t.Fatalf("toggle failed: %v", err)
			}
		}

		out, err := tr.run(t, "download", "--liked", "--rate", "50")
		if err != nil {
			t.Fatalf("bulk download failed: %v", err)
		}
		if !strings.Contains(out, "Downloaded 2 of 2 songs") {
			t.Errorf("unexpected output %q", out)
		}
		tu.AssertFileExists(t, filepath.Join(tr.config.Player.DownloadDir, "download_manifest.json"))
	})

	t.Run("nothing liked", func(t *testing.T) {
		tr := newTestRunner(t)
		out, err := tr.run(t, "download", "--liked")
		if err != nil || !strings.Contains(out, "No liked songs") {
			t.Errorf("expected nothing to download, got %q (%v)", out, err)
		}
	})

	t.Run("unknown track", func(t *testing.T) {
		tr := newTestRunner(t)
		if _, err := tr.run(t, "download", "404"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})
}

func TestAuthCommands(t *testing.T) {
	tr := newTestRunner(t)

	out, err := tr.run(t, "auth", "status")
	if err != nil || !strings.Contains(out, "Not logged in") {
		t.Fatalf("expected logged out status, got %q (%v)", out, err)
	}

	t.Run("login errors", func(t *testing.T) {
		tests := []struct {
			name string
			args []string
			want error
		}{
			{"missing credentials", []string{"auth", "login"}, shared.ErrMissingArgument},
			{"wrong password", []string{"auth", "login", "-e", "ada@example.com", "-p", "nope"}, shared.ErrAuthFailed},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := tr.run(t, tt.args...); !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})

	out, err = tr.run(t, "auth", "login", "--email", "ada@example.com", "--password", "secret")
	if err != nil || !strings.Contains(out, "Logged in as ada") {
		t.Fatalf("expected login to succeed, got %q (%v)", out, err)
	}

	out, err = tr.run(t, "auth", "status", "--json", "--pretty=false")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	var status struct {
		LoggedIn bool                 `json:"logged_in"`
		Session  models.SessionMarker `json:"session"`
	}
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if !status.LoggedIn || status.Session.Username != "ada" || status.Session.UserID != 5 {
		t.Errorf("unexpected status %+v", status)
	}

	if _, err := tr.run(t, "auth", "logout"); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	out, _ = tr.run(t, "auth", "status")
	if !strings.Contains(out, "Not logged in") {
		t.Errorf("expected logged out status after logout, got %q", out)
	}
}

func TestSetupCommands(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		tr := newTestRunner(t)
		path := filepath.Join(tr.dir, "config.toml")

		if _, err := tr.run(t, "setup", "config", path); err != nil {
			t.Fatalf("setup config failed: %v", err)
		}
		tu.AssertFileExists(t, path)
		if _, err := shared.LoadConfig(path); err != nil {
			t.Errorf("written config does not load: %v", err)
		}

		if _, err := tr.run(t, "setup", "config", path); err == nil {
			t.Error("expected an error when the config already exists")
		}
	})

	t.Run("database", func(t *testing.T) {
		tr := newTestRunner(t)
		t.Chdir(tr.dir)

		out, err := tr.run(t, "setup", "database", "--config", "fresh.toml")
		if err != nil {
			t.Fatalf("setup database failed: %v", err)
		}
		if !strings.Contains(out, "Database ready") {
			t.Errorf("unexpected output %q", out)
		}
		tu.AssertFileExists(t, filepath.Join(tr.dir, "fresh.toml"))
		tu.AssertFileExists(t, filepath.Join(tr.dir, "jukebox.db"))
	})

	t.Run("rollback", func(t *testing.T) {
		tr := newTestRunner(t)
		store, err := tr.openStorage(context.Background())
		if err != nil {
			t.Fatalf("openStorage failed: %v", err)
		}
		store.Close()

		out, err := tr.run(t, "setup", "rollback")
		if err != nil {
			t.Fatalf("rollback failed: %v", err)
		}
		if !strings.Contains(out, "Rolled back") {
			t.Errorf("unexpected output %q", out)
		}
	})
}

type fakeNavigator struct {
	err   error
	calls int
}

func (n *fakeNavigator) Login(context.Context) error {
	n.calls++
	return n.err
}

func TestResumeAfterLogin(t *testing.T) {
	ctx := context.Background()
	tr := newTestRunner(t)
	store, err := tr.openStorage(ctx)
	if err != nil {
		t.Fatalf("openStorage failed: %v", err)
	}
	defer store.Close()

	lib := catalog.New(testTracks, testArtists)
	newPlayback := func() (*player.Engine, *session.Store) {
		media := tu.NewFakeMedia()
		engine := player.NewEngine(player.EngineOpts{Media: media, Resolver: lib, Volume: 1})
		media.Bind(engine)
		return engine, session.NewStore(store.slots, engine, lib, nil)
	}
	saveState := func() {
		state := models.PlaybackState{Playlist: models.Playlist{10, 11, 12}, CurrentIndex: 1, ElapsedSeconds: 30}
		if err := repositories.Write(ctx, store.slots, repositories.PlaybackStateKey, state); err != nil {
			t.Fatalf("failed to save state: %v", err)
		}
	}

	t.Run("resumes the saved state", func(t *testing.T) {
		saveState()
		engine, playback := newPlayback()
		nav := &fakeNavigator{}

		if err := (resumeAfterLogin{login: nav, playback: playback, logger: tr.logger}).Login(ctx); err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if nav.calls != 1 {
			t.Errorf("expected one navigation, got %d", nav.calls)
		}
		if track, ok := engine.Current(); !ok || track.ID != 11 {
			t.Errorf("expected track 11 to resume, got %+v", track)
		}
	})

	t.Run("login failure leaves the state", func(t *testing.T) {
		saveState()
		engine, playback := newPlayback()
		nav := &fakeNavigator{err: shared.ErrTimeout}

		err := (resumeAfterLogin{login: nav, playback: playback, logger: tr.logger}).Login(ctx)
		if !errors.Is(err, shared.ErrTimeout) {
			t.Fatalf("expected ErrTimeout, got %v", err)
		}
		if _, ok := engine.Current(); ok {
			t.Error("expected nothing to play")
		}
		if _, ok, _ := repositories.Read(ctx, store.slots, repositories.PlaybackStateKey); !ok {
			t.Error("expected the saved state to survive a failed login")
		}
	})
}

func TestStartupResume(t *testing.T) {
	ctx := context.Background()
	tr := newTestRunner(t)
	store, err := tr.openStorage(ctx)
	if err != nil {
		t.Fatalf("openStorage failed: %v", err)
	}
	defer store.Close()

	ref := &libraryRef{}
	media := tu.NewFakeMedia()
	engine := player.NewEngine(player.EngineOpts{Media: media, Resolver: ref, Volume: 1})
	media.Bind(engine)
	resume := &startupResume{playback: session.NewStore(store.slots, engine, ref, nil), logger: tr.logger}

	first := models.PlaybackState{Playlist: models.Playlist{10, 11, 12}, CurrentIndex: 2, ElapsedSeconds: 30}
	if err := repositories.Write(ctx, store.slots, repositories.PlaybackStateKey, first); err != nil {
		t.Fatalf("failed to save state: %v", err)
	}

	ref.Set(catalog.New(testTracks, testArtists))
	resume.run(ctx)
	if track, ok := engine.Current(); !ok || track.ID != 12 {
		t.Fatalf("expected track 12 to resume once the library loaded, got %+v", track)
	}

	second := models.PlaybackState{Playlist: models.Playlist{10, 11, 12}, CurrentIndex: 0, ElapsedSeconds: 5}
	if err := repositories.Write(ctx, store.slots, repositories.PlaybackStateKey, second); err != nil {
		t.Fatalf("failed to save state: %v", err)
	}
	resume.run(ctx)
	if track, _ := engine.Current(); track.ID != 12 {
		t.Errorf("later library loads should not resume again, now playing %d", track.ID)
	}
	if _, ok, _ := repositories.Read(ctx, store.slots, repositories.PlaybackStateKey); !ok {
		t.Error("expected the later state to stay in its slot")
	}
}
