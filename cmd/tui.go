package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/jukebox/internal/bridge"
	"github.com/desertthunder/jukebox/internal/catalog"
	"github.com/desertthunder/jukebox/internal/media"
	"github.com/desertthunder/jukebox/internal/player"
	"github.com/desertthunder/jukebox/internal/repositories"
	"github.com/desertthunder/jukebox/internal/session"
	"github.com/desertthunder/jukebox/internal/shared"
	"github.com/desertthunder/jukebox/internal/tasks"
	"github.com/desertthunder/jukebox/internal/ui"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/urfave/cli/v3"
)

const (
	busBuffer   = 8
	saveTimeout = 5 * time.Second
)

// Play launches the interactive player, resuming the playback state saved in this session.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, closer, err := shared.NewFileLogger(r.config.Log)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer closer.Close()
	r.SetLogger(fileLogger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := r.openStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	logger := shared.WithLogger(r.logger, "session", store.session)

	lib := &libraryRef{}
	if loaded, err := r.loadLibrary(ctx); err != nil {
		logger.Warn("catalog unavailable at startup", "error", err)
	} else {
		lib.Set(loaded)
	}

	bar := ui.NewBar()
	engine, element := r.newEngine(lib, bar, logger)
	defer element.Close()

	playback := session.NewStore(store.slots, engine, lib, shared.WithLogger(logger, "component", "session"))
	resume := &startupResume{playback: playback, logger: logger}
	markers := repositories.NewMarkerStore(store.slots, r.config.Session.Secret)
	likes := tasks.NewLikeSync(store.slots, r.catalog, shared.WithLogger(logger, "component", "likes"))
	prompts := ui.NewConfirmer()
	bus := bridge.NewBus(busBuffer)
	defer bus.Close()

	opts := bridge.Options{
		Bus:      bus,
		Player:   engine,
		Tracks:   lib,
		Session:  markers,
		Prompter: prompts,
		Saver:    playback,
		Logger:   shared.WithLogger(logger, "component", "bridge"),
	}
	if login, err := r.browserLogin(markers, logger); err != nil {
		logger.Warn("browser login unavailable", "error", err)
	} else {
		opts.Navigator = resumeAfterLogin{login: login, playback: playback, logger: logger}
	}

	model := ui.NewModel(ctx, ui.Options{
		Source:      r.catalog,
		Library:     lib.Get(),
		Bus:         bus,
		Transport:   engine,
		Session:     playback,
		Likes:       likes,
		Downloads:   tasks.NewDownloader(r.catalog, lib, logger),
		DownloadDir: r.config.Player.DownloadDir,
		Bar:         bar,
		Prompts:     prompts,
		Logger:      shared.WithLogger(logger, "component", "ui"),
		OnLoad: func(loaded *catalog.Library) {
			lib.Set(loaded)
			go resume.run(ctx)
		},
	})
	likes.SetView(model.LikeView())

	if lib.Get() != nil {
		resume.run(ctx)
	}

	go func() {
		if err := bridge.New(opts).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("bridge stopped", "error", err)
		}
	}()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := p.Run()

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()
	if err := playback.Save(saveCtx); err != nil {
		logger.Error("failed to save playback state", "error", err)
	}

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("error running TUI: %w", runErr)
	}
	return nil
}

// newEngine creates the player engine over an audio element fetching from the catalog service.
func (r *Runner) newEngine(lib *libraryRef, display player.Display, logger *log.Logger) (*player.Engine, *media.Element) {
	actx := audio.NewContext(r.config.Player.SampleRate)
	element := media.NewElement(actx, r.catalog, media.ElementOpts{
		Logger: shared.WithLogger(logger, "component", "media"),
		Tick:   r.config.Player.Tick(),
	})

	engine := player.NewEngine(player.EngineOpts{
		Media:      element,
		Resolver:   lib,
		Display:    display,
		Logger:     shared.WithLogger(logger, "component", "player"),
		ResolveURL: r.catalog.ResolveURL,
		Volume:     r.config.Player.Volume,
	})
	element.SetListener(engine)
	return engine, element
}

// resumeAfterLogin logs in, then restores the playback state saved before leaving.
type resumeAfterLogin struct {
	login    bridge.Navigator
	playback *session.Store
	logger   *log.Logger
}

func (n resumeAfterLogin) Login(ctx context.Context) error {
	if err := n.login.Login(ctx); err != nil {
		return err
	}
	if _, err := n.playback.Load(ctx); err != nil {
		n.logger.Warn("failed to resume playback after login", "error", err)
	}
	return nil
}

// startupResume restores the saved playback state the first time a library is available.
//
// The catalog may only load after a retry in the UI, so the resume waits for it.
type startupResume struct {
	once     sync.Once
	playback *session.Store
	logger   *log.Logger
}

func (r *startupResume) run(ctx context.Context) {
	r.once.Do(func() {
		if resumed, err := r.playback.Load(ctx); err != nil {
			r.logger.Warn("failed to resume playback", "error", err)
		} else if resumed {
			r.logger.Info("resumed playback")
		}
	})
}
