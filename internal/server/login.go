package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jukebox/internal/models"
	"github.com/desertthunder/jukebox/internal/services"
	"github.com/desertthunder/jukebox/internal/shared"
	"golang.org/x/oauth2"
)

const defaultLoginTimeout = 5 * time.Minute

// UserFetcher returns the account behind an access token. [services.CatalogService] implements it.
type UserFetcher interface {
	Me(ctx context.Context, accessToken string) (*models.User, error)
}

// MarkerSaver stores the session marker. [repositories.MarkerStore] implements it.
type MarkerSaver interface {
	Save(ctx context.Context, marker models.SessionMarker) error
}

// LoginResult contains the result of a login callback.
type LoginResult struct {
	User   *models.User
	Marker models.SessionMarker
	Token  *oauth2.Token
	err    error
}

func (r *LoginResult) Error() error {
	return r.err
}

// LoginHandler handles the OAuth2 callback of the browser login.
// Implements the Handler interface for registration with a Router.
type LoginHandler struct {
	config      *oauth2.Config
	state       string
	users       UserFetcher
	markers     MarkerSaver
	ttl         time.Duration
	resultChan  chan LoginResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewLoginHandler creates a login callback handler for state.
// The state token should be random; it guards the callback against forged requests.
func NewLoginHandler(config *oauth2.Config, state string, users UserFetcher, markers MarkerSaver, ttl time.Duration) *LoginHandler {
	return &LoginHandler{
		config:     config,
		state:      state,
		users:      users,
		markers:    markers,
		ttl:        ttl,
		resultChan: make(chan LoginResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *LoginHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP handles the OAuth callback request.
//
// Validates the state, exchanges the code, fetches the account and saves a session marker. The
// outcome is sent through the result channel.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	query := r.URL.Query()
	if query.Get("state") != h.state {
		h.Send(LoginResult{err: fmt.Errorf("%w: invalid state parameter", shared.ErrAuthFailed)})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		err := fmt.Errorf("%w: %s - %s", shared.ErrAuthFailed, query.Get("error"), query.Get("error_description"))
		if query.Get("error") == "access_denied" {
			err = fmt.Errorf("%w: %v", shared.ErrLoginDeclined, err)
		}
		h.Send(LoginResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.config.Exchange(r.Context(), code)
	if err != nil {
		h.Send(LoginResult{err: fmt.Errorf("%w: token exchange failed: %v", shared.ErrAuthFailed, err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	user, err := h.users.Me(r.Context(), token.AccessToken)
	if err != nil {
		h.Send(LoginResult{Token: token, err: err})
		http.Error(w, "Could not load account", http.StatusBadGateway)
		return
	}

	marker := models.NewSessionMarker(*user, h.ttl)
	if err := h.markers.Save(r.Context(), marker); err != nil {
		h.Send(LoginResult{User: user, Token: token, err: fmt.Errorf("failed to save session: %w", err)})
		http.Error(w, "Could not save session", http.StatusInternalServerError)
		return
	}

	h.Send(LoginResult{User: user, Marker: marker, Token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `
<!DOCTYPE html>
<html>
<head>
    <title>Logged In</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #111; }
        .container { text-align: center; background: #1c1c1c; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.4); }
        h1 { color: #e0a526; margin: 0 0 1rem 0; }
        p { color: #aaa; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Logged in as %s</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`, template.HTMLEscapeString(user.Username))
}

// Send sends the login result through the channel (only once).
func (h *LoginHandler) Send(result LoginResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving login completion.
//
// Channel will receive exactly one result and then be closed.
func (h *LoginHandler) Result() <-chan LoginResult {
	return h.resultChan
}

// BrowserLoginOpts configures a [BrowserLogin].
type BrowserLoginOpts struct {
	Config  *oauth2.Config
	Users   UserFetcher
	Markers MarkerSaver
	TTL     time.Duration
	// Open shows the consent page; defaults to [shared.OpenBrowser].
	Open    func(url string) error
	Timeout time.Duration
	Logger  *log.Logger
}

// BrowserLogin runs the authorization code flow against a temporary callback server.
type BrowserLogin struct {
	opts BrowserLoginOpts
}

// NewBrowserLogin creates a [BrowserLogin].
func NewBrowserLogin(opts BrowserLoginOpts) *BrowserLogin {
	if opts.Open == nil {
		opts.Open = shared.OpenBrowser
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultLoginTimeout
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	return &BrowserLogin{opts: opts}
}

// Login blocks until the callback stores a session marker, ctx is done or the flow times out.
func (b *BrowserLogin) Login(ctx context.Context) error {
	_, err := b.LoginUser(ctx)
	return err
}

// LoginUser is [BrowserLogin.Login] returning the account that logged in.
func (b *BrowserLogin) LoginUser(ctx context.Context) (*models.User, error) {
	redirect, err := url.Parse(b.opts.Config.RedirectURL)
	if err != nil || redirect.Host == "" {
		return nil, fmt.Errorf("%w: bad redirect_uri %q", shared.ErrInvalidConfig, b.opts.Config.RedirectURL)
	}

	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", redirect.Host, err)
	}

	state := shared.GenerateID()
	handler := NewLoginHandler(b.opts.Config, state, b.opts.Users, b.opts.Markers, b.opts.TTL)
	router := NewBasicRouter()
	router.Use(Recover(b.opts.Logger), Logging(b.opts.Logger))
	router.Handler(handler)

	srv := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			b.opts.Logger.Error("callback server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	authURL := services.AuthURL(b.opts.Config, state)
	b.opts.Logger.Info("opening login page", "url", authURL)
	if err := b.opts.Open(authURL); err != nil {
		b.opts.Logger.Warn("could not open browser, visit the login page manually", "url", authURL, "error", err)
	}

	timer := time.NewTimer(b.opts.Timeout)
	defer timer.Stop()

	select {
	case res := <-handler.Result():
		if err := res.Error(); err != nil {
			return nil, err
		}
		b.opts.Logger.Info("logged in", "user", res.User.Username)
		return res.User, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: no login callback after %s", shared.ErrTimeout, b.opts.Timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
