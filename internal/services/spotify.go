// Spotify API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/auxq/internal/models"
	"github.com/desertthunder/auxq/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	defaultSearchRate = 5.0 // requests per second
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
	URI    string   `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ReleaseDate string         `json:"release_date"`
	Images      []SpotifyImage `json:"images"`
	URI         string         `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Popularity int             `json:"popularity"`
	PreviewURL string          `json:"preview_url"`
	URI        string          `json:"uri"`
}

// SpotifySearchResult represents the tracks portion of a search response.
type SpotifySearchResult struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
		Total int            `json:"total"`
	} `json:"tracks"`
}

// SpotifyDevice represents a playback device.
type SpotifyDevice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsActive bool   `json:"is_active"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Product     string `json:"product"` // premium, free, etc.
}

// SpotifyService implements the [Catalog] interface for Spotify API interactions.
// Uses [oauth2] for authentication; search calls share a rate limiter so
// parallel resolutions stay inside the API's request budget.
type SpotifyService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://127.0.0.1:8888/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"user-read-playback-state",
			"user-modify-playback-state",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		baseURL:    spotifyBaseURL,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(defaultSearchRate), 1),
	}, nil
}

// SetRateLimit replaces the search rate limiter (requests per second).
func (s *SpotifyService) SetRateLimit(perSecond float64) {
	if perSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// Authenticate wires a token into the service. Expects an "access_token"
// and/or "refresh_token" in credentials; when a refresh token is present the
// [oauth2] client refreshes expired access tokens transparently.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	accessToken := credentials["access_token"]
	refreshToken := credentials["refresh_token"]

	if accessToken == "" && refreshToken == "" {
		return fmt.Errorf("%w: missing access_token or refresh_token", shared.ErrMissingCredentials)
	}

	s.token = &oauth2.Token{AccessToken: accessToken, RefreshToken: refreshToken}
	if refreshToken != "" && accessToken == "" {
		// Force the token source to refresh on first use.
		s.token.Expiry = time.Now().Add(-time.Minute)
	}
	s.httpClient = s.config.Client(ctx, s.token)
	return nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// doRequest performs an authenticated HTTP request to the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	apiURL := s.baseURL + endpoint

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: spotify returned 401", shared.ErrAuthExpired)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: status 404", shared.ErrNoActiveDevice)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", shared.ErrCatalogUnavailable, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("spotify API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Search queries the catalog for tracks matching the free-text query and
// returns up to limit ranked candidates.
func (s *SpotifyService) Search(ctx context.Context, query string, limit int) ([]models.ResolvedTrack, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("search cancelled: %w", err)
	}

	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=%d", url.QueryEscape(query), limit)

	var result SpotifySearchResult
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &result); err != nil {
		return nil, err
	}

	tracks := make([]models.ResolvedTrack, 0, len(result.Tracks.Items))
	for _, item := range result.Tracks.Items {
		tracks = append(tracks, item.toResolvedTrack())
	}

	return tracks, nil
}

// AddToQueue appends a track to the user's active playback device queue.
//
// Spotify returns 404 when no device is active; this surfaces as
// [shared.ErrNoActiveDevice].
func (s *SpotifyService) AddToQueue(ctx context.Context, trackURI string) error {
	if trackURI == "" {
		return fmt.Errorf("%w: empty track URI", shared.ErrInvalidInput)
	}

	endpoint := fmt.Sprintf("/me/player/queue?uri=%s", url.QueryEscape(trackURI))
	if err := s.doRequest(ctx, http.MethodPost, endpoint, nil, nil); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrQueueFailed, err)
	}
	return nil
}

// RemoveFromQueue always fails: the Spotify player API has no primitive for
// removing an arbitrary queued track.
func (s *SpotifyService) RemoveFromQueue(ctx context.Context, trackURI string) error {
	return fmt.Errorf("%w: spotify queue removal", shared.ErrNotImplemented)
}

// Devices lists the user's playback devices.
func (s *SpotifyService) Devices(ctx context.Context) ([]SpotifyDevice, error) {
	var result struct {
		Devices []SpotifyDevice `json:"devices"`
	}
	if err := s.doRequest(ctx, http.MethodGet, "/me/player/devices", nil, &result); err != nil {
		return nil, err
	}
	return result.Devices, nil
}

// ActiveDevice returns the active playback device, falling back to the first
// available one. Returns nil when no devices exist.
func (s *SpotifyService) ActiveDevice(ctx context.Context) (*Device, error) {
	devices, err := s.Devices(ctx)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, nil
	}

	pick := devices[0]
	for _, d := range devices {
		if d.IsActive {
			pick = d
			break
		}
	}

	return &Device{ID: pick.ID, Name: pick.Name, Type: pick.Type, Active: pick.IsActive}, nil
}

// ActivateDevice transfers playback to the given device without starting playback.
func (s *SpotifyService) ActivateDevice(ctx context.Context, deviceID string) error {
	body := map[string]any{"device_ids": []string{deviceID}, "play": false}
	if err := s.doRequest(ctx, http.MethodPut, "/me/player", body, nil); err != nil {
		return fmt.Errorf("failed to activate device: %w", err)
	}
	return nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (t SpotifyTrack) toResolvedTrack() models.ResolvedTrack {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}

	imageURL := ""
	if len(t.Album.Images) > 0 {
		imageURL = t.Album.Images[0].URL
	}

	return models.ResolvedTrack{
		ID:         t.ID,
		Name:       t.Name,
		Artists:    artists,
		Album:      t.Album.Name,
		URI:        t.URI,
		Popularity: t.Popularity,
		PreviewURL: t.PreviewURL,
		ImageURL:   imageURL,
	}
}
