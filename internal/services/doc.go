// Package services implements clients for the external collaborators of the
// recommendation pipeline: the [Catalog] (Spotify Web API) and the
// [Generator] (Gemini via the Generative Language REST API).
//
// # Catalog implementation
//
// [SpotifyService] uses OAuth2 for authentication; when a refresh token is
// supplied, the [oauth2] client refreshes expired access tokens
// transparently. Search calls go through a shared [rate.Limiter] so parallel
// track resolutions stay inside the API request budget.
//
// Queue operations append to the user's active playback device. Spotify has
// no primitive for removing an arbitrary queued track, so RemoveFromQueue
// always returns [shared.ErrNotImplemented].
//
// # Generator implementation
//
// [GeminiService] makes two kinds of generateContent calls: the suggestion
// round (one call per run, returning a JSON song list) and the verification
// round (one call per resolved track, returning per-criterion scores whose
// weighted sum becomes the confidence score).
//
// # Error handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrAuthExpired] : token expired, caller must re-authenticate
//   - [shared.ErrCatalogUnavailable] / [shared.ErrAIUnavailable] : transient transport or 429/5xx failures
//   - [shared.ErrNoActiveDevice] : queue request with no active playback device
//   - [shared.ErrGenerationFailed] : suggestion retries exhausted
package services
