// Package pipeline orchestrates the recommendation run from seed text to
// queued tracks with real-time event reporting.
//
// # Core Operations
//
// The [Recommender] interface defines two operations:
//
//  1. [Recommender.Recommend] : Synchronous aggregate run
//     - Resolves the seed text to a canonical catalog track
//     - Requests AI suggestions and resolves each against the catalog
//     - Verifies every resolved track before queueing
//     - Queues only verified-valid tracks; returns one aggregate result
//
//  2. [Recommender.Stream] : Incremental event stream
//     - Same stages, delivered as ordered [models.StreamEvent] values
//     - Tracks are queued optimistically on resolution, before verification
//     - Verification runs in the background; its verdicts arrive as events
//     - The terminal complete event waits for all in-flight verifications
//
// # Event Ordering
//
// A stream emits seed exactly once before any track event. Track and skip
// events preserve suggestion order even though resolutions race; verification
// events are unordered relative to each other but always follow their own
// track event. Every stream ends with exactly one complete or error event,
// unless the consumer cancels first.
//
// # Resolution Caching
//
// The optional [ResolutionCache] interface persists accepted catalog matches
// across runs, keyed by normalized query. Cache errors are ignored so a cold
// or broken cache never disrupts a run.
//
// # Implementation
//
// [Engine] implements [Recommender] with dependencies on:
//   - [services.Catalog] : Music catalog search and playback queue
//   - [services.Generator] : Generative-AI suggestion and verification calls
//   - [ResolutionCache] : Optional persistence layer (repositories.ResolutionRepository)
package pipeline
