package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/jukebox/internal/bridge"
	"github.com/desertthunder/jukebox/internal/repositories"
	"github.com/desertthunder/jukebox/internal/server"
	"github.com/desertthunder/jukebox/internal/session"
	"github.com/desertthunder/jukebox/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the player without a terminal UI and accepts play requests over HTTP.
//
// Requests arriving without a logged in session are dropped, since there is nobody to ask.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.loadLibrary(ctx)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := r.openStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	logger := shared.WithLogger(r.logger, "session", store.session)

	ref := &libraryRef{}
	ref.Set(lib)
	engine, element := r.newEngine(ref, nil, logger)
	defer element.Close()

	playback := session.NewStore(store.slots, engine, ref, shared.WithLogger(logger, "component", "session"))
	if resumed, err := playback.Load(ctx); err != nil {
		logger.Warn("failed to resume playback", "error", err)
	} else if resumed {
		logger.Info("resumed playback")
	}

	bus := bridge.NewBus(busBuffer)
	defer bus.Close()

	opts := bridge.Options{
		Bus:    bus,
		Player: engine,
		Tracks: ref,
		Saver:  playback,
		Logger: shared.WithLogger(logger, "component", "bridge"),
	}
	if !cmd.Bool("no-auth") {
		opts.Session = repositories.NewMarkerStore(store.slots, r.config.Session.Secret)
	}
	go func() {
		if err := bridge.New(opts).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("bridge stopped", "error", err)
		}
	}()

	httpLogger := shared.WithLogger(logger, "component", "http")
	router := server.NewBasicRouter()
	router.Use(server.RequestID(), server.Logging(httpLogger), server.Recover(httpLogger))
	router.Handler(server.NewIntakeHandler(bus, engine, httpLogger))

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}
	r.writePlain("Listening on http://%s (POST /api/play, GET /api/now-playing)\n", addr)

	err = server.Serve(ctx, addr, router, httpLogger)

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()
	if saveErr := playback.Save(saveCtx); saveErr != nil {
		logger.Error("failed to save playback state", "error", saveErr)
	}
	return err
}
