// Package models defines the entities flowing through the recommendation
// pipeline and the typed stream events delivered to callers.
//
// All entities are scoped to a single pipeline run (one seed request); none
// persist beyond the run except the external playback queue's state, which
// the system only appends to.
//
// Key types:
//   - [SeedTrack] : the canonical catalog entry for the user's seed text
//   - [Suggestion] : one AI-generated candidate
//   - [ResolvedTrack] : a catalog match for a Suggestion
//   - [VerificationResult] : AI verdict on seed similarity
//   - [RecommendationRecord] : a Suggestion with its resolution, queueing and verification state
//   - [StreamEvent] : tagged progress event, append-only within a run
package models
