package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/auxq/internal/shared"
)

func newTestSpotify(t *testing.T, handler http.Handler) (*SpotifyService, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	if err := srv.Authenticate(context.Background(), map[string]string{"access_token": "test_token"}); err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}

	srv.baseURL = server.URL
	return srv, server
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(map[string]string{
				"client_id":     "test_client_id",
				"client_secret": "test_client_secret",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_secret": "s"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_id": "c"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("Authenticate", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		t.Run("With Access Token", func(t *testing.T) {
			err := srv.Authenticate(context.Background(), map[string]string{"access_token": "tok"})
			if err != nil {
				t.Errorf("expected no error with access token, got %v", err)
			}
		})

		t.Run("Without Tokens", func(t *testing.T) {
			err := srv.Authenticate(context.Background(), map[string]string{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("Not Authenticated", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		_, err = srv.Search(context.Background(), "anything", 10)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Search", func(t *testing.T) {
		t.Run("Maps Results", func(t *testing.T) {
			srv, _ := newTestSpotify(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if !strings.HasPrefix(r.URL.Path, "/search") {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if got := r.URL.Query().Get("q"); got != "blinding lights" {
					t.Errorf("unexpected query %q", got)
				}
				if got := r.URL.Query().Get("limit"); got != "10" {
					t.Errorf("unexpected limit %q", got)
				}

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{
					"tracks": {"items": [{
						"id": "0VjIjW4GlUZAMYd2vXMi3b",
						"name": "Blinding Lights",
						"artists": [{"name": "The Weeknd"}],
						"album": {"name": "After Hours", "images": [{"url": "https://img/1"}]},
						"popularity": 92,
						"uri": "spotify:track:0VjIjW4GlUZAMYd2vXMi3b"
					}], "total": 1}
				}`))
			}))

			tracks, err := srv.Search(context.Background(), "blinding lights", 10)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 1 {
				t.Fatalf("expected 1 track, got %d", len(tracks))
			}

			track := tracks[0]
			if track.Name != "Blinding Lights" {
				t.Errorf("expected name Blinding Lights, got %s", track.Name)
			}
			if len(track.Artists) != 1 || track.Artists[0] != "The Weeknd" {
				t.Errorf("unexpected artists %v", track.Artists)
			}
			if track.Album != "After Hours" {
				t.Errorf("expected album After Hours, got %s", track.Album)
			}
			if track.ImageURL != "https://img/1" {
				t.Errorf("expected first album image, got %s", track.ImageURL)
			}
		})

		t.Run("Expired Token", func(t *testing.T) {
			srv, _ := newTestSpotify(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}))

			_, err := srv.Search(context.Background(), "anything", 10)
			if !errors.Is(err, shared.ErrAuthExpired) {
				t.Errorf("expected ErrAuthExpired, got %v", err)
			}
		})

		t.Run("Server Error", func(t *testing.T) {
			srv, _ := newTestSpotify(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}))

			_, err := srv.Search(context.Background(), "anything", 10)
			if !errors.Is(err, shared.ErrCatalogUnavailable) {
				t.Errorf("expected ErrCatalogUnavailable, got %v", err)
			}
		})
	})

	t.Run("AddToQueue", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			var gotURI string
			srv, _ := newTestSpotify(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				gotURI = r.URL.Query().Get("uri")
				w.WriteHeader(http.StatusNoContent)
			}))

			if err := srv.AddToQueue(context.Background(), "spotify:track:abc"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if gotURI != "spotify:track:abc" {
				t.Errorf("expected uri spotify:track:abc, got %s", gotURI)
			}
		})

		t.Run("No Active Device", func(t *testing.T) {
			srv, _ := newTestSpotify(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))

			err := srv.AddToQueue(context.Background(), "spotify:track:abc")
			if !errors.Is(err, shared.ErrQueueFailed) {
				t.Errorf("expected ErrQueueFailed, got %v", err)
			}
			if !errors.Is(err, shared.ErrNoActiveDevice) {
				t.Errorf("expected ErrNoActiveDevice in chain, got %v", err)
			}
		})

		t.Run("Empty URI", func(t *testing.T) {
			srv, _ := newTestSpotify(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

			if err := srv.AddToQueue(context.Background(), ""); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	})

	t.Run("RemoveFromQueue", func(t *testing.T) {
		srv, _ := newTestSpotify(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("removal must not hit the API")
		}))

		err := srv.RemoveFromQueue(context.Background(), "spotify:track:abc")
		if !errors.Is(err, shared.ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented, got %v", err)
		}
	})

	t.Run("ActiveDevice", func(t *testing.T) {
		t.Run("Prefers Active", func(t *testing.T) {
			srv, _ := newTestSpotify(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"devices": [
					{"id": "d1", "name": "Desktop", "is_active": false},
					{"id": "d2", "name": "Phone", "is_active": true}
				]}`))
			}))

			device, err := srv.ActiveDevice(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if device == nil || device.ID != "d2" {
				t.Errorf("expected active device d2, got %+v", device)
			}
		})

		t.Run("Falls Back To First", func(t *testing.T) {
			srv, _ := newTestSpotify(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"devices": [{"id": "d1", "name": "Desktop", "is_active": false}]}`))
			}))

			device, err := srv.ActiveDevice(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if device == nil || device.ID != "d1" {
				t.Errorf("expected fallback device d1, got %+v", device)
			}
		})

		t.Run("No Devices", func(t *testing.T) {
			srv, _ := newTestSpotify(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"devices": []}`))
			}))

			device, err := srv.ActiveDevice(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if device != nil {
				t.Errorf("expected nil device, got %+v", device)
			}
		})
	})

	t.Run("UserProfile", func(t *testing.T) {
		srv, _ := newTestSpotify(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Write([]byte(`{"id": "user1", "display_name": "Test User", "product": "premium"}`))
		}))

		user, err := srv.UserProfile(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.ID != "user1" || user.Product != "premium" {
			t.Errorf("unexpected profile %+v", user)
		}
	})
}
