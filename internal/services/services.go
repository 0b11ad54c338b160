// package services defines interfaces for the external collaborators of the
// recommendation pipeline
//
// Spotify (catalog/search/queue), Gemini (generative AI)
package services

import (
	"context"

	"github.com/desertthunder/auxq/internal/models"
)

// Catalog defines the interface for the music catalog and playback-queue
// service. The pipeline never reads queue state back; it only searches and
// appends.
type Catalog interface {
	// Authenticate performs OAuth or token authentication with the service.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// Search returns up to limit ranked track candidates for a free-text query.
	Search(ctx context.Context, query string, limit int) ([]models.ResolvedTrack, error)

	// AddToQueue appends a track to the user's active playback device queue.
	AddToQueue(ctx context.Context, trackURI string) error

	// RemoveFromQueue is unsupported by the playback service and always
	// returns an error; it exists so callers get an explicit failure instead
	// of a silent no-op.
	RemoveFromQueue(ctx context.Context, trackURI string) error

	// ActiveDevice returns the user's active playback device, or the first
	// available one, or nil when none exist.
	ActiveDevice(ctx context.Context) (*Device, error)

	// ActivateDevice transfers playback to the given device.
	ActivateDevice(ctx context.Context, deviceID string) error

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// Generator defines the interface for the generative-AI service used for the
// suggestion and verification rounds.
type Generator interface {
	// Suggest requests count candidate songs similar to the seed. The
	// returned order seeds all downstream indices.
	Suggest(ctx context.Context, seed models.SeedTrack, count int) ([]models.Suggestion, error)

	// Verify scores how well a resolved track matches the seed across the
	// weighted verification criteria.
	Verify(ctx context.Context, seed models.SeedTrack, suggestion models.Suggestion, track models.ResolvedTrack) (models.VerificationResult, error)

	// Name returns the name of the service (e.g., "Gemini")
	Name() string
}

// Device represents a playback device known to the catalog service.
type Device struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Active bool   `json:"is_active"`
}
