// package pipeline implements the recommendation pipeline: seed resolution,
// AI suggestion, per-suggestion catalog resolution, verification, and playback
// queueing.
//
// The core abstraction is Engine, which orchestrates both the synchronous
// aggregate operation and the incremental event stream. Stream emits ordered
// StreamEvent values via a channel for non-blocking delivery to CLI/HTTP layers.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/auxq/internal/models"
	"github.com/desertthunder/auxq/internal/services"
	"github.com/desertthunder/auxq/internal/shared"
	"golang.org/x/sync/errgroup"
)

// Recommender defines the two pipeline operations exposed to CLI/HTTP layers.
type Recommender interface {
	// Recommend runs the full pipeline synchronously: verification completes
	// before queueing, and only verified-valid tracks are enqueued.
	Recommend(ctx context.Context, req models.Request) (*models.RecommendationResult, error)

	// Stream runs the pipeline incrementally, queueing each track on
	// resolution and emitting ordered events. The returned channel is closed
	// after exactly one terminal event, or without one if ctx is cancelled.
	Stream(ctx context.Context, req models.Request) <-chan models.StreamEvent
}

// ResolutionCache persists accepted catalog resolutions across runs.
// This abstraction allows for easier testing and decoupling from concrete implementation.
type ResolutionCache interface {
	Get(queryKey string) (*models.ResolvedTrack, error)
	Put(queryKey string, track models.ResolvedTrack, score float64) error
}

// Engine implements Recommender.
// Contains dependencies on the catalog, the generative-AI service, and an
// optional resolution cache.
type Engine struct {
	catalog   services.Catalog
	generator services.Generator
	cache     ResolutionCache
	config    shared.PipelineConfig
	logger    *log.Logger
}

// NewEngine creates a new Engine with the provided services. The cache may be
// nil, in which case every resolution hits the catalog.
func NewEngine(catalog services.Catalog, generator services.Generator, cache ResolutionCache, config shared.PipelineConfig, logger *log.Logger) *Engine {
	if config.Count <= 0 {
		config.Count = 5
	}
	if config.SearchLimit <= 0 {
		config.SearchLimit = 10
	}
	if config.MatchThreshold <= 0 {
		config.MatchThreshold = 0.6
	}
	if config.MaxInFlight <= 0 {
		config.MaxInFlight = 5
	}
	if config.MaxInFlight > 10 {
		config.MaxInFlight = 10
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Engine{
		catalog:   catalog,
		generator: generator,
		cache:     cache,
		config:    config,
		logger:    logger,
	}
}

// runState tracks per-run dedupe and queue bookkeeping. All entities live for
// one seed request only; nothing here outlives the run.
type runState struct {
	mu     sync.Mutex
	seen   map[string]bool // canonical track ids resolved or queued this run
	queued int
}

func newRunState(seedID string) *runState {
	seen := make(map[string]bool)
	if seedID != "" {
		seen[seedID] = true
	}
	return &runState{seen: seen}
}

// claim marks a track id as resolved in this run. Returns false if the id was
// already claimed, in which case the caller treats the resolution as a duplicate.
func (s *runState) claim(trackID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[trackID] {
		return false
	}
	s.seen[trackID] = true
	return true
}

func (s *runState) markQueued() {
	s.mu.Lock()
	s.queued++
	s.mu.Unlock()
}

func (s *runState) queuedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queued
}

// Recommend runs the synchronous pipeline: resolve the seed, generate
// suggestions, resolve them against the catalog, verify each resolved track,
// then enqueue only the tracks that passed. A queue failure is fatal here;
// the partial result is returned alongside the error.
func (e *Engine) Recommend(ctx context.Context, req models.Request) (*models.RecommendationResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog service not initialized", shared.ErrCatalogUnavailable)
	}
	if e.generator == nil {
		return nil, fmt.Errorf("%w: generator service not initialized", shared.ErrAIUnavailable)
	}

	count := req.Count
	if count <= 0 {
		count = e.config.Count
	}
	logger := shared.WithLogger(e.logger, "run_id", shared.GenerateID())

	seed, err := e.ResolveSeed(ctx, req.SeedText)
	if err != nil {
		return nil, err
	}
	logger.Debug("resolved seed", "track", seed.Name, "id", seed.ID)

	suggestions, err := e.generator.Suggest(ctx, *seed, count)
	if err != nil {
		return nil, err
	}

	result := &models.RecommendationResult{
		SeedTrack:       *seed,
		Recommendations: make([]models.RecommendationRecord, 0, len(suggestions)),
	}

	state := newRunState(seed.ID)
	resolutions := e.resolveAll(ctx, suggestions, state)

	// An expired token mid-run aborts rather than degrading every remaining
	// suggestion into a skip.
	for _, res := range resolutions {
		if errors.Is(res.err, shared.ErrAuthExpired) {
			return nil, res.err
		}
	}

	records := make([]models.RecommendationRecord, len(suggestions))
	for i, res := range resolutions {
		records[i] = models.RecommendationRecord{Suggestion: suggestions[i]}
		if res.err != nil {
			continue
		}
		records[i].Track = res.track
		records[i].VerificationPending = req.Verify
		result.TotalFound++
	}

	if req.Verify {
		e.verifyAll(ctx, *seed, records)
		for i := range records {
			if records[i].Verification == nil {
				continue
			}
			if records[i].Verification.Valid {
				result.TotalVerified++
			} else {
				result.TotalRejected++
			}
		}
	}

	// Queue only after verification settles. With verify off, every resolved
	// track is eligible.
	eligible := func(i int) bool {
		if records[i].Track == nil {
			return false
		}
		if req.Verify && (records[i].Verification == nil || !records[i].Verification.Valid) {
			return false
		}
		return true
	}

	anyEligible := false
	for i := range records {
		if eligible(i) {
			anyEligible = true
			break
		}
	}

	if anyEligible {
		if err := e.preflightDevice(ctx); err != nil {
			result.Recommendations = records
			return result, err
		}
	}

	for i := range records {
		if !eligible(i) {
			continue
		}

		if err := e.catalog.AddToQueue(ctx, records[i].Track.URI); err != nil {
			result.Recommendations = records
			result.AddedToQueue = state.queuedCount()
			return result, fmt.Errorf("%w: %v", shared.ErrQueueFailed, err)
		}
		records[i].Queued = true
		state.markQueued()
	}

	result.Recommendations = records
	result.AddedToQueue = state.queuedCount()
	logger.Info("recommendation run complete",
		"found", result.TotalFound, "verified", result.TotalVerified,
		"rejected", result.TotalRejected, "queued", result.AddedToQueue)
	return result, nil
}

// verifyAll runs the verification round concurrently across all resolved
// records. Verification failures degrade to invalid results inside
// verifyTrack and never abort the run.
func (e *Engine) verifyAll(ctx context.Context, seed models.SeedTrack, records []models.RecommendationRecord) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.MaxInFlight)

	for i := range records {
		if records[i].Track == nil {
			continue
		}
		rec := &records[i]
		g.Go(func() error {
			v := e.verifyTrack(gctx, seed, rec.Suggestion, *rec.Track)
			rec.Verification = &v
			rec.VerificationPending = false
			return nil
		})
	}

	g.Wait()
}

// verifyTrack wraps the generator's verification call, degrading persistent
// failure to an invalid result with a diagnostic reason.
func (e *Engine) verifyTrack(ctx context.Context, seed models.SeedTrack, suggestion models.Suggestion, track models.ResolvedTrack) models.VerificationResult {
	v, err := e.generator.Verify(ctx, seed, suggestion, track)
	if err != nil {
		e.logger.Warn("verification failed", "track", track.Name, "error", err)
		return models.VerificationResult{
			Valid:      false,
			Confidence: 0,
			Reason:     fmt.Sprintf("verification unavailable: %v", err),
		}
	}
	return v
}

// preflightDevice checks for an active playback device before the synchronous
// queueing pass, activating the first available device if none is active.
func (e *Engine) preflightDevice(ctx context.Context) error {
	device, err := e.catalog.ActiveDevice(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrQueueFailed, err)
	}
	if device == nil {
		return fmt.Errorf("%w: open a playback client and try again", shared.ErrNoActiveDevice)
	}
	if !device.Active {
		// Best effort; the enqueue call surfaces the real failure if this
		// did not take.
		if err := e.catalog.ActivateDevice(ctx, device.ID); err != nil {
			e.logger.Warn("failed to activate device", "device", device.Name, "error", err)
		}
	}
	return nil
}
