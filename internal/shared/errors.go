package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrAuthExpired      = fmt.Errorf("access token expired")

	// Fatal pipeline errors
	ErrSeedNotFound     = fmt.Errorf("seed track not found")
	ErrGenerationFailed = fmt.Errorf("suggestion generation failed")

	// Per-item pipeline errors, absorbed as skip events or rejected counts
	ErrTrackNotFound      = fmt.Errorf("track not found")
	ErrDuplicateTrack     = fmt.Errorf("duplicate track")
	ErrVerificationFailed = fmt.Errorf("verification failed")

	// Playback queue errors
	ErrQueueFailed    = fmt.Errorf("queue request failed")
	ErrNoActiveDevice = fmt.Errorf("no active playback device")

	// Transient service errors, retried per call-site policy
	ErrCatalogUnavailable = fmt.Errorf("catalog service unavailable")
	ErrAIUnavailable      = fmt.Errorf("generative AI service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
