package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jukebox/internal/catalog"
	"github.com/desertthunder/jukebox/internal/models"
	"github.com/desertthunder/jukebox/internal/repositories"
	"github.com/desertthunder/jukebox/internal/services"
	"github.com/desertthunder/jukebox/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	catalog    *services.CatalogService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Catalog    *services.CatalogService
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
//
// Without a Catalog, one is built from the [api] section of the config.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.API.Timeout()}
	}
	if opts.Catalog == nil {
		svc, err := services.NewCatalogService(opts.Config.API.BaseURL, opts.HTTPClient, opts.Config.API.RequestsPerSecond)
		if err != nil {
			opts.Logger.Warn("catalog service unavailable", "base_url", opts.Config.API.BaseURL, "error", err)
		} else {
			opts.Catalog = svc
		}
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		catalog:    opts.Catalog,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the logger used by subsequent commands.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, catalogCommand, likesCommand, downloadCommand, authCommand, playCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) requireCatalog() error {
	if r.catalog == nil {
		return fmt.Errorf("%w: catalog service not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

// loadLibrary fetches the catalog once for the current command.
func (r *Runner) loadLibrary(ctx context.Context) (*catalog.Library, error) {
	if err := r.requireCatalog(); err != nil {
		return nil, err
	}
	lib, err := catalog.Load(ctx, r.catalog)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("catalog loaded", "tracks", lib.Len(), "artists", len(lib.Artists()))
	return lib, nil
}

// storage is an opened slot store with the connections behind it.
type storage struct {
	slots   repositories.SlotStore
	session string
	closers []io.Closer
}

// Close releases the connections behind the slot store.
func (s *storage) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// openStorage opens the configured slot store and joins the current session, starting a new one
// when the previous session went idle.
func (r *Runner) openStorage(ctx context.Context) (*storage, error) {
	switch driver := strings.ToLower(r.config.Storage.Driver); driver {
	case "", "sqlite":
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return nil, err
		}
		sess, err := repositories.NewSessionRepository(db).Open(ctx, r.config.Session.IdleTimeout())
		if err != nil {
			db.Close()
			return nil, err
		}
		r.logger.Debug("session opened", "driver", "sqlite", "session", sess.ID, "sequence", sess.Sequence)
		return &storage{
			slots:   repositories.NewSQLiteSlotStore(db, sess.ID),
			session: sess.ID,
			closers: []io.Closer{db},
		}, nil
	case "redis":
		client, err := repositories.NewRedisClient(ctx, r.config.Redis)
		if err != nil {
			return nil, err
		}
		ttl := r.config.Session.IdleTimeout()
		id, err := repositories.OpenRedisSession(ctx, client, r.config.Redis.Prefix, ttl)
		if err != nil {
			client.Close()
			return nil, err
		}
		r.logger.Debug("session opened", "driver", "redis", "session", id)
		return &storage{
			slots:   repositories.NewRedisSlotStore(client, r.config.Redis.Prefix, id, ttl),
			session: id,
			closers: []io.Closer{client},
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q (sqlite, redis)", shared.ErrInvalidConfig, driver)
	}
}

// libraryRef shares the most recently loaded library between the player, the bridge and the TUI.
//
// Before a library is loaded every track lookup misses.
type libraryRef struct {
	mu  sync.RWMutex
	lib *catalog.Library
}

func (l *libraryRef) Set(lib *catalog.Library) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lib = lib
}

func (l *libraryRef) Get() *catalog.Library {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lib
}

func (l *libraryRef) Track(id int64) (models.Track, bool) {
	lib := l.Get()
	if lib == nil {
		return models.Track{}, false
	}
	return lib.Track(id)
}

func (l *libraryRef) ArtistName(id int64) string {
	lib := l.Get()
	if lib == nil {
		return catalog.UnknownArtist
	}
	return lib.ArtistName(id)
}

func parseTrackID(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: track id %q", shared.ErrInvalidArgument, s)
	}
	return id, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
