package repositories

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/jukebox/internal/models"
	"github.com/desertthunder/jukebox/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

const markerIssuer = "jukebox"

type markerClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// MarkerStore keeps the authenticated-session marker as an HS256-signed token in a durable slot.
//
// A token that is expired, badly signed or malformed reads as no session.
type MarkerStore struct {
	store  SlotStore
	secret []byte
	now    func() time.Time
}

// NewMarkerStore creates a [MarkerStore] signing with secret.
func NewMarkerStore(store SlotStore, secret string) *MarkerStore {
	return &MarkerStore{store: store, secret: []byte(secret), now: time.Now}
}

// Save signs and stores the marker.
func (m *MarkerStore) Save(ctx context.Context, marker models.SessionMarker) error {
	token, err := m.Sign(marker)
	if err != nil {
		return err
	}
	return Write(ctx, m.store, SessionMarkerKey, token)
}

// Load returns the stored marker. ok is false when there is no valid session.
func (m *MarkerStore) Load(ctx context.Context) (marker models.SessionMarker, ok bool, err error) {
	token, ok, err := Read(ctx, m.store, SessionMarkerKey)
	if err != nil || !ok {
		return marker, false, err
	}

	marker, err = m.Parse(token)
	if err != nil {
		return marker, false, nil
	}
	return marker, true, nil
}

// Clear removes the marker.
func (m *MarkerStore) Clear(ctx context.Context) error {
	return Clear(ctx, m.store, SessionMarkerKey)
}

// LoggedIn reports whether a valid marker is present.
func (m *MarkerStore) LoggedIn(ctx context.Context) (bool, error) {
	_, ok, err := m.Load(ctx)
	return ok, err
}

// Sign encodes marker as a signed token.
func (m *MarkerStore) Sign(marker models.SessionMarker) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("%w: session secret is empty", shared.ErrInvalidConfig)
	}

	claims := markerClaims{
		Username: marker.Username,
		Email:    marker.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   markerIssuer,
			Subject:  strconv.FormatInt(marker.UserID, 10),
			IssuedAt: jwt.NewNumericDate(marker.IssuedAt),
		},
	}
	if !marker.ExpiresAt.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(marker.ExpiresAt)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session marker: %w", err)
	}
	return token, nil
}

// Parse verifies a signed token and returns its marker.
func (m *MarkerStore) Parse(token string) (models.SessionMarker, error) {
	var claims markerClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(markerIssuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return models.SessionMarker{}, fmt.Errorf("%w: %v", shared.ErrInvalidSession, err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return models.SessionMarker{}, fmt.Errorf("%w: bad subject %q", shared.ErrInvalidSession, claims.Subject)
	}

	marker := models.SessionMarker{UserID: id, Username: claims.Username, Email: claims.Email}
	if claims.IssuedAt != nil {
		marker.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		marker.ExpiresAt = claims.ExpiresAt.Time
	}
	return marker, nil
}
