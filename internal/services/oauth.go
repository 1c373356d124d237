package services

import (
	"fmt"

	"github.com/desertthunder/jukebox/internal/shared"
	"golang.org/x/oauth2"
)

// NewOAuthConfig builds the OAuth2 authorization-code config for browser login.
func NewOAuthConfig(c shared.AuthConfig) (*oauth2.Config, error) {
	if c.ClientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrInvalidConfig)
	}
	if c.AuthURL == "" || c.TokenURL == "" {
		return nil, fmt.Errorf("%w: missing auth_url or token_url", shared.ErrInvalidConfig)
	}

	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURI,
		Scopes:       []string{"profile", "email"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.AuthURL,
			TokenURL: c.TokenURL,
		},
	}, nil
}

// AuthURL returns the consent page URL for state.
func AuthURL(config *oauth2.Config, state string) string {
	return config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}
