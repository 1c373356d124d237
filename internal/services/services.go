// package services implements the HTTP client for the label's catalog data service
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/jukebox/internal/models"
	"github.com/desertthunder/jukebox/internal/shared"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "http://localhost:5000"

// Stats holds the catalog counters served by the data service.
type Stats struct {
	SongCount   int `json:"song_count"`
	TotalPlays  int `json:"total_plays"`
	ArtistCount int `json:"artist_count"`
	UserCount   int `json:"user_count"`
}

// CatalogService reads artists and songs from the data service and mirrors like toggles to it.
//
// Every request waits on a shared rate limiter.
type CatalogService struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewCatalogService creates a catalog client for baseURL.
//
// A nil client uses [http.DefaultClient]; a non-positive rps disables rate limiting.
func NewCatalogService(baseURL string, client *http.Client, rps float64) (*CatalogService, error) {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: bad api base url %q", shared.ErrInvalidConfig, baseURL)
	}
	if client == nil {
		client = http.DefaultClient
	}

	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}

	return &CatalogService{
		baseURL:    u,
		httpClient: client,
		limiter:    rate.NewLimiter(limit, 1),
	}, nil
}

// BaseURL returns the data service root.
func (s *CatalogService) BaseURL() string { return s.baseURL.String() }

// ResolveURL turns an artwork or audio path from a record into an absolute URL under the base URL.
//
// Absolute references are returned unchanged; empty references stay empty.
func (s *CatalogService) ResolveURL(ref string) string {
	if ref == "" {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}
	return s.baseURL.String() + "/" + strings.TrimLeft(ref, "/")
}

// GetSongs fetches every song record.
func (s *CatalogService) GetSongs(ctx context.Context) ([]models.Track, error) {
	var tracks []models.Track
	if err := s.doRequest(ctx, http.MethodGet, "/api/songs", nil, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// GetArtists fetches every artist record.
func (s *CatalogService) GetArtists(ctx context.Context) ([]models.Artist, error) {
	var artists []models.Artist
	if err := s.doRequest(ctx, http.MethodGet, "/api/artists", nil, &artists); err != nil {
		return nil, err
	}
	return artists, nil
}

// GetStats fetches the catalog counters.
func (s *CatalogService) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := s.doRequest(ctx, http.MethodGet, "/api/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ToggleLike increments or decrements the like counter of a song. The response body is not consumed.
func (s *CatalogService) ToggleLike(ctx context.Context, id int64, increment bool) error {
	body := struct {
		Increment bool `json:"increment"`
	}{increment}
	return s.doRequest(ctx, http.MethodPost, fmt.Sprintf("/api/songs/%d/toggle-like", id), body, nil)
}

// Login exchanges credentials for the account record.
func (s *CatalogService) Login(ctx context.Context, email, password string) (*models.User, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}

	var user models.User
	if err := s.doRequest(ctx, http.MethodPost, "/api/auth/login", body, &user); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return &user, nil
}

// Me returns the account that owns an OAuth2 access token.
func (s *CatalogService) Me(ctx context.Context, accessToken string) (*models.User, error) {
	var user models.User
	err := s.doRequest(ctx, http.MethodGet, "/api/auth/me", nil, &user, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+accessToken)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return &user, nil
}

// OpenAudio starts streaming the audio at ref. The caller closes the body.
//
// The returned length is -1 when the server does not report one.
func (s *CatalogService) OpenAudio(ctx context.Context, ref string) (io.ReadCloser, int64, error) {
	if ref == "" {
		return nil, 0, fmt.Errorf("%w: empty audio reference", shared.ErrInvalidArgument)
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.ResolveURL(ref), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, 0, responseError(resp)
	}
	return resp.Body, resp.ContentLength, nil
}

func (s *CatalogService) doRequest(ctx context.Context, method, endpoint string, body, result any, opts ...func(*http.Request)) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL.String()+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return responseError(resp)
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
		}
	}
	return nil
}

// responseError builds an error from a non-2xx response, using the {"error": "..."} body when present.
func responseError(resp *http.Response) error {
	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&errResp); err == nil && errResp.Error != "" {
		return fmt.Errorf("%w (status %d): %s", shared.ErrAPIRequest, resp.StatusCode, errResp.Error)
	}
	if resp.StatusCode == http.StatusServiceUnavailable {
		return fmt.Errorf("%w: %w (status %d)", shared.ErrAPIRequest, shared.ErrServiceUnavailable, resp.StatusCode)
	}
	return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
}
