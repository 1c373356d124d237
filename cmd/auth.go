package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jukebox/internal/models"
	"github.com/desertthunder/jukebox/internal/repositories"
	"github.com/desertthunder/jukebox/internal/server"
	"github.com/desertthunder/jukebox/internal/services"
	"github.com/desertthunder/jukebox/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin stores a session marker for the account.
//
// With --browser the authorization code flow runs through a temporary callback server;
// otherwise the email and password are checked against the data service.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	store, err := r.openStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	markers := repositories.NewMarkerStore(store.slots, r.config.Session.Secret)

	var user *models.User
	if cmd.Bool("browser") {
		login, err := r.browserLogin(markers, r.logger)
		if err != nil {
			return err
		}
		r.writePlain("Opening the login page in your browser...\n")
		if user, err = login.LoginUser(ctx); err != nil {
			return err
		}
	} else {
		email, password := cmd.String("email"), cmd.String("password")
		if email == "" || password == "" {
			return fmt.Errorf("%w: --email and --password (or --browser)", shared.ErrMissingArgument)
		}
		if user, err = r.catalog.Login(ctx, email, password); err != nil {
			return err
		}
		if err := markers.Save(ctx, models.NewSessionMarker(*user, r.config.Session.MarkerTTL())); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
	}

	r.logger.Info("logged in", "user", user.Username)
	return r.writePlain("✓ Logged in as %s\n", user.Username)
}

// AuthStatus prints the account of the stored session marker.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	marker, ok, err := repositories.NewMarkerStore(store.slots, r.config.Session.Secret).Load(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		status := map[string]any{"logged_in": ok}
		if ok {
			status["session"] = marker
		}
		return r.writeJSON(status, cmd.Bool("pretty"))
	}

	if !ok {
		return r.writePlain("Not logged in. Run 'jukebox auth login' to log in.\n")
	}
	r.writePlain("✓ Logged in as %s", marker.Username)
	if marker.Email != "" {
		r.writePlain(" <%s>", marker.Email)
	}
	r.writePlain("\n")
	if !marker.ExpiresAt.IsZero() {
		r.writePlain("  Session expires %s\n", marker.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

// AuthLogout removes the stored session marker.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := repositories.NewMarkerStore(store.slots, r.config.Session.Secret).Clear(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Logged out\n")
}

// browserLogin builds the browser flow from the [auth] config.
func (r *Runner) browserLogin(markers server.MarkerSaver, logger *log.Logger) (*server.BrowserLogin, error) {
	config, err := services.NewOAuthConfig(r.config.Auth)
	if err != nil {
		return nil, err
	}
	return server.NewBrowserLogin(server.BrowserLoginOpts{
		Config:  config,
		Users:   r.catalog,
		Markers: markers,
		TTL:     r.config.Session.MarkerTTL(),
		Logger:  logger,
	}), nil
}
