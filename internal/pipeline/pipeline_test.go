package pipeline

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/auxq/internal/models"
	"github.com/desertthunder/auxq/internal/services"
	"github.com/desertthunder/auxq/internal/shared"
	tu "github.com/desertthunder/auxq/internal/testing"
)

var (
	seedTrack = models.ResolvedTrack{
		ID:         "seed1",
		Name:       "Blinding Lights",
		Artists:    []string{"The Weeknd"},
		Album:      "After Hours",
		URI:        "spotify:track:seed1",
		Popularity: 92,
	}
	trackOne = models.ResolvedTrack{
		ID:         "t1",
		Name:       "Save Your Tears",
		Artists:    []string{"The Weeknd"},
		Album:      "After Hours",
		URI:        "spotify:track:t1",
		Popularity: 90,
	}
	trackTwo = models.ResolvedTrack{
		ID:         "t2",
		Name:       "Physical",
		Artists:    []string{"Dua Lipa"},
		Album:      "Future Nostalgia",
		URI:        "spotify:track:t2",
		Popularity: 80,
	}
)

func testSuggestions() []models.Suggestion {
	return []models.Suggestion{
		{Title: "Save Your Tears", Artists: []string{"The Weeknd"}, Genre: "synth-pop", Reason: "same artist and era"},
		{Title: "Physical", Artists: []string{"Dua Lipa"}, Genre: "dance-pop", Reason: "matching retro energy"},
	}
}

func newTestCatalog() *tu.MockCatalog {
	return &tu.MockCatalog{
		Tracks: []models.ResolvedTrack{seedTrack, trackOne, trackTwo},
		Device: &services.Device{ID: "d1", Name: "Desktop", Type: "Computer", Active: true},
	}
}

func newTestEngine(catalog services.Catalog, generator services.Generator, cache ResolutionCache) *Engine {
	logger := log.New(io.Discard)
	return NewEngine(catalog, generator, cache, shared.PipelineConfig{}, logger)
}

// fakeCache is an in-memory ResolutionCache for resolver tests.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]models.ResolvedTrack
	puts    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]models.ResolvedTrack)}
}

func (c *fakeCache) Get(queryKey string) (*models.ResolvedTrack, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	track, ok := c.entries[queryKey]
	if !ok {
		return nil, shared.ErrTrackNotFound
	}
	return &track, nil
}

func (c *fakeCache) Put(queryKey string, track models.ResolvedTrack, score float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[queryKey] = track
	c.puts++
	return nil
}

// expiringCatalog succeeds for the first search (the seed) and returns an
// auth expiry for every search after it.
type expiringCatalog struct {
	*tu.MockCatalog
	mu       sync.Mutex
	searches int
}

func (c *expiringCatalog) Search(ctx context.Context, query string, limit int) ([]models.ResolvedTrack, error) {
	c.mu.Lock()
	c.searches++
	expired := c.searches > 1
	c.mu.Unlock()

	if expired {
		return nil, shared.ErrAuthExpired
	}
	return c.MockCatalog.Search(ctx, query, limit)
}

func TestResolveSeed(t *testing.T) {
	t.Run("FreeformWithArtist", func(t *testing.T) {
		engine := newTestEngine(newTestCatalog(), &tu.MockGenerator{}, nil)

		seed, err := engine.ResolveSeed(context.Background(), "Blinding Lights by The Weeknd")
		if err != nil {
			t.Fatalf("failed to resolve seed: %v", err)
		}

		if seed.ID != "seed1" {
			t.Errorf("expected seed id seed1, got %s", seed.ID)
		}
		if seed.Name != "Blinding Lights" {
			t.Errorf("expected Blinding Lights, got %s", seed.Name)
		}
	})

	t.Run("TitleOnly", func(t *testing.T) {
		engine := newTestEngine(newTestCatalog(), &tu.MockGenerator{}, nil)

		seed, err := engine.ResolveSeed(context.Background(), "Blinding Lights")
		if err != nil {
			t.Fatalf("failed to resolve seed: %v", err)
		}

		if seed.ID != "seed1" {
			t.Errorf("expected seed id seed1, got %s", seed.ID)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		engine := newTestEngine(newTestCatalog(), &tu.MockGenerator{}, nil)

		_, err := engine.ResolveSeed(context.Background(), "Completely Unknown Song")
		if !errors.Is(err, shared.ErrSeedNotFound) {
			t.Errorf("expected ErrSeedNotFound, got %v", err)
		}
	})

	t.Run("EmptyText", func(t *testing.T) {
		engine := newTestEngine(newTestCatalog(), &tu.MockGenerator{}, nil)

		_, err := engine.ResolveSeed(context.Background(), "   ")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("CatalogError", func(t *testing.T) {
		catalog := newTestCatalog()
		catalog.SearchErr = shared.ErrCatalogUnavailable
		engine := newTestEngine(catalog, &tu.MockGenerator{}, nil)

		_, err := engine.ResolveSeed(context.Background(), "Blinding Lights")
		if !errors.Is(err, shared.ErrCatalogUnavailable) {
			t.Errorf("expected ErrCatalogUnavailable, got %v", err)
		}
	})
}

func TestResolveCatalog(t *testing.T) {
	t.Run("CacheHitSkipsSearch", func(t *testing.T) {
		catalog := newTestCatalog()
		cache := newFakeCache()
		cache.entries[shared.NormalizeTrackKey("Blinding Lights", "The Weeknd")] = seedTrack
		engine := newTestEngine(catalog, &tu.MockGenerator{}, cache)

		track, err := engine.resolveCatalog(context.Background(), "Blinding Lights", "The Weeknd")
		if err != nil {
			t.Fatalf("failed to resolve: %v", err)
		}

		if track.ID != "seed1" {
			t.Errorf("expected cached track seed1, got %s", track.ID)
		}
		if catalog.SearchCalls != 0 {
			t.Errorf("expected no search calls on cache hit, got %d", catalog.SearchCalls)
		}
	})

	t.Run("AcceptedResolutionPopulatesCache", func(t *testing.T) {
		cache := newFakeCache()
		engine := newTestEngine(newTestCatalog(), &tu.MockGenerator{}, cache)

		_, err := engine.resolveCatalog(context.Background(), "Physical", "Dua Lipa")
		if err != nil {
			t.Fatalf("failed to resolve: %v", err)
		}

		if cache.puts != 1 {
			t.Errorf("expected 1 cache write, got %d", cache.puts)
		}
	})

	t.Run("HighConfidenceStopsLadder", func(t *testing.T) {
		catalog := newTestCatalog()
		engine := newTestEngine(catalog, &tu.MockGenerator{}, nil)

		_, err := engine.resolveCatalog(context.Background(), "Blinding Lights", "The Weeknd")
		if err != nil {
			t.Fatalf("failed to resolve: %v", err)
		}

		if catalog.SearchCalls != 1 {
			t.Errorf("expected early stop after 1 search, got %d", catalog.SearchCalls)
		}
	})

	t.Run("BelowThreshold", func(t *testing.T) {
		engine := newTestEngine(newTestCatalog(), &tu.MockGenerator{}, nil)

		_, err := engine.resolveCatalog(context.Background(), "No Such Tune", "Nobody")
		if !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})
}

func TestRecommend(t *testing.T) {
	t.Run("VerifiedRun", func(t *testing.T) {
		catalog := newTestCatalog()
		generator := &tu.MockGenerator{Suggestions: testSuggestions()}
		engine := newTestEngine(catalog, generator, nil)

		result, err := engine.Recommend(context.Background(), models.Request{SeedText: "Blinding Lights", Count: 5, Verify: true})
		if err != nil {
			t.Fatalf("failed to recommend: %v", err)
		}

		if result.SeedTrack.ID != "seed1" {
			t.Errorf("expected seed seed1, got %s", result.SeedTrack.ID)
		}
		if result.TotalFound != 2 {
			t.Errorf("expected 2 found, got %d", result.TotalFound)
		}
		if result.TotalVerified != 2 {
			t.Errorf("expected 2 verified, got %d", result.TotalVerified)
		}
		if result.TotalRejected != 0 {
			t.Errorf("expected 0 rejected, got %d", result.TotalRejected)
		}
		if result.AddedToQueue != 2 {
			t.Errorf("expected 2 queued, got %d", result.AddedToQueue)
		}

		queued := catalog.Queued()
		if len(queued) != 2 {
			t.Fatalf("expected 2 queue calls, got %d", len(queued))
		}
	})

	t.Run("RejectedNeverQueued", func(t *testing.T) {
		catalog := newTestCatalog()
		generator := &tu.MockGenerator{
			Suggestions: testSuggestions(),
			VerifyFunc: func(seed models.SeedTrack, s models.Suggestion, track models.ResolvedTrack) models.VerificationResult {
				if track.ID == "t2" {
					return models.VerificationResult{Valid: false, Confidence: 0.3, Reason: "different vibe"}
				}
				return models.VerificationResult{Valid: true, Confidence: 0.8, Reason: "close match"}
			},
		}
		engine := newTestEngine(catalog, generator, nil)

		result, err := engine.Recommend(context.Background(), models.Request{SeedText: "Blinding Lights", Count: 5, Verify: true})
		if err != nil {
			t.Fatalf("failed to recommend: %v", err)
		}

		if result.TotalVerified != 1 || result.TotalRejected != 1 {
			t.Errorf("expected 1 verified / 1 rejected, got %d / %d", result.TotalVerified, result.TotalRejected)
		}
		if result.AddedToQueue != 1 {
			t.Errorf("expected 1 queued, got %d", result.AddedToQueue)
		}

		for _, uri := range catalog.Queued() {
			if uri == "spotify:track:t2" {
				t.Error("rejected track should never be queued")
			}
		}
	})

	t.Run("VerifyDisabledQueuesAllResolved", func(t *testing.T) {
		catalog := newTestCatalog()
		generator := &tu.MockGenerator{Suggestions: testSuggestions()}
		engine := newTestEngine(catalog, generator, nil)

		result, err := engine.Recommend(context.Background(), models.Request{SeedText: "Blinding Lights", Count: 5, Verify: false})
		if err != nil {
			t.Fatalf("failed to recommend: %v", err)
		}

		if generator.VerifyCalls != 0 {
			t.Errorf("expected no verification calls, got %d", generator.VerifyCalls)
		}
		if result.AddedToQueue != 2 {
			t.Errorf("expected 2 queued, got %d", result.AddedToQueue)
		}
		for _, rec := range result.Recommendations {
			if rec.VerificationPending {
				t.Error("no record should be pending verification")
			}
			if rec.Verification != nil {
				t.Error("no record should carry a verification result")
			}
		}
	})

	t.Run("SeedNotFoundIsFatal", func(t *testing.T) {
		generator := &tu.MockGenerator{Suggestions: testSuggestions()}
		engine := newTestEngine(newTestCatalog(), generator, nil)

		_, err := engine.Recommend(context.Background(), models.Request{SeedText: "Completely Unknown Song", Count: 5})
		if !errors.Is(err, shared.ErrSeedNotFound) {
			t.Errorf("expected ErrSeedNotFound, got %v", err)
		}
		if generator.SuggestCalls != 0 {
			t.Errorf("no suggestions should be requested without a seed, got %d calls", generator.SuggestCalls)
		}
	})

	t.Run("GenerationFailedIsFatal", func(t *testing.T) {
		generator := &tu.MockGenerator{SuggestErr: shared.ErrGenerationFailed}
		engine := newTestEngine(newTestCatalog(), generator, nil)

		_, err := engine.Recommend(context.Background(), models.Request{SeedText: "Blinding Lights", Count: 5})
		if !errors.Is(err, shared.ErrGenerationFailed) {
			t.Errorf("expected ErrGenerationFailed, got %v", err)
		}
	})

	t.Run("AuthExpiredMidRunIsFatal", func(t *testing.T) {
		catalog := &expiringCatalog{MockCatalog: newTestCatalog()}
		generator := &tu.MockGenerator{Suggestions: testSuggestions()}
		engine := newTestEngine(catalog, generator, nil)

		_, err := engine.Recommend(context.Background(), models.Request{SeedText: "Blinding Lights", Count: 5})
		if !errors.Is(err, shared.ErrAuthExpired) {
			t.Errorf("expected ErrAuthExpired, got %v", err)
		}
	})

	t.Run("QueueErrorIsFatal", func(t *testing.T) {
		catalog := newTestCatalog()
		catalog.QueueErr = errors.New("queue rejected")
		generator := &tu.MockGenerator{Suggestions: testSuggestions()}
		engine := newTestEngine(catalog, generator, nil)

		result, err := engine.Recommend(context.Background(), models.Request{SeedText: "Blinding Lights", Count: 5, Verify: true})
		if !errors.Is(err, shared.ErrQueueFailed) {
			t.Errorf("expected ErrQueueFailed, got %v", err)
		}
		if result == nil {
			t.Fatal("partial result should be returned alongside the error")
		}
	})

	t.Run("NoActiveDeviceIsFatal", func(t *testing.T) {
		catalog := newTestCatalog()
		catalog.Device = nil
		generator := &tu.MockGenerator{Suggestions: testSuggestions()}
		engine := newTestEngine(catalog, generator, nil)

		_, err := engine.Recommend(context.Background(), models.Request{SeedText: "Blinding Lights", Count: 5, Verify: true})
		if !errors.Is(err, shared.ErrNoActiveDevice) {
			t.Errorf("expected ErrNoActiveDevice, got %v", err)
		}
	})

	t.Run("DuplicateSuggestionsResolveOnce", func(t *testing.T) {
		catalog := newTestCatalog()
		generator := &tu.MockGenerator{
			Suggestions: []models.Suggestion{
				{Title: "Save Your Tears", Artists: []string{"The Weeknd"}},
				{Title: "Save Your Tears", Artists: []string{"The Weeknd"}},
			},
		}
		engine := newTestEngine(catalog, generator, nil)

		result, err := engine.Recommend(context.Background(), models.Request{SeedText: "Blinding Lights", Count: 5})
		if err != nil {
			t.Fatalf("failed to recommend: %v", err)
		}

		if result.TotalFound != 1 {
			t.Errorf("expected duplicate collapsed to 1 resolution, got %d", result.TotalFound)
		}
		if result.AddedToQueue != 1 {
			t.Errorf("expected 1 queued, got %d", result.AddedToQueue)
		}
	})
}
