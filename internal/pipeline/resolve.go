package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/auxq/internal/models"
	"github.com/desertthunder/auxq/internal/shared"
	"golang.org/x/sync/errgroup"
)

// highConfidence stops the search ladder early: a candidate scoring at or
// above this never improves enough with a looser query to be worth the call.
const highConfidence = 0.75

// resolution is the per-suggestion outcome of the catalog round. Exactly one
// of track or err is set; skipReason is set when err wraps a per-item sentinel.
type resolution struct {
	track      *models.ResolvedTrack
	err        error
	skipReason string
}

// ResolveSeed turns freeform seed text into a canonical catalog track.
// "Lahore by Guru Randhawa" and "Song - Artist" forms feed an artist hint to
// the search ladder; plain text searches as-is.
func (e *Engine) ResolveSeed(ctx context.Context, text string) (*models.SeedTrack, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: seed text is empty", shared.ErrInvalidInput)
	}

	title, artists := shared.ParseSeedText(text)
	artist := strings.Join(artists, " ")

	track, err := e.resolveCatalog(ctx, title, artist)
	if err != nil {
		if errors.Is(err, shared.ErrTrackNotFound) {
			return nil, fmt.Errorf("%w: no catalog match for %q", shared.ErrSeedNotFound, text)
		}
		return nil, err
	}

	return &models.SeedTrack{
		ID:         track.ID,
		Name:       track.Name,
		Artists:    track.Artists,
		Album:      track.Album,
		URI:        track.URI,
		Popularity: track.Popularity,
		PreviewURL: track.PreviewURL,
		ImageURL:   track.ImageURL,
	}, nil
}

// resolveAll fans out suggestion resolution with bounded concurrency and
// returns per-index outcomes, preserving the suggestion order regardless of
// completion order. Duplicate claims happen at completion time so at most one
// resolution per canonical id survives the run.
func (e *Engine) resolveAll(ctx context.Context, suggestions []models.Suggestion, state *runState) []resolution {
	results := make([]resolution, len(suggestions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.MaxInFlight)

	for i, suggestion := range suggestions {
		g.Go(func() error {
			results[i] = e.resolveSuggestion(gctx, suggestion, state)
			return nil
		})
	}

	g.Wait()
	return results
}

// resolveSuggestion resolves one AI suggestion against the catalog. Tracks
// already resolved in this run come back as duplicates.
func (e *Engine) resolveSuggestion(ctx context.Context, suggestion models.Suggestion, state *runState) resolution {
	track, err := e.resolveCatalog(ctx, suggestion.Title, suggestion.Artist())
	if err != nil {
		if errors.Is(err, shared.ErrTrackNotFound) {
			return resolution{err: err, skipReason: "not found on catalog"}
		}
		return resolution{err: err, skipReason: "catalog unavailable"}
	}

	if !state.claim(track.ID) {
		return resolution{
			err:        fmt.Errorf("%w: %s already resolved this run", shared.ErrDuplicateTrack, track.ID),
			skipReason: "duplicate",
		}
	}

	return resolution{track: track}
}

// resolveCatalog resolves a title (plus optional artist hint) to the
// best-scoring catalog candidate, walking a narrowing-to-widening query
// ladder and stopping early on a high-confidence hit. Accepted resolutions
// populate the cache.
func (e *Engine) resolveCatalog(ctx context.Context, title, artist string) (*models.ResolvedTrack, error) {
	cacheKey := shared.NormalizeTrackKey(title, artist)
	if e.cache != nil {
		if track, err := e.cache.Get(cacheKey); err == nil {
			return track, nil
		}
	}

	var best *models.ResolvedTrack
	var bestScore float64

	for _, query := range buildQueryLadder(title, artist) {
		candidates, err := e.catalog.Search(ctx, query, e.config.SearchLimit)
		if err != nil {
			return nil, err
		}

		for i := range candidates {
			score := e.scoreCandidate(candidates[i], title, artist)
			if score > bestScore || (score == bestScore && best != nil && candidates[i].Popularity > best.Popularity) {
				best = &candidates[i]
				bestScore = score
			}
		}

		if bestScore >= highConfidence {
			break
		}
	}

	if best == nil || bestScore < e.config.MatchThreshold {
		return nil, fmt.Errorf("%w: no candidate scored above %.2f for %q", shared.ErrTrackNotFound, e.config.MatchThreshold, title)
	}

	if e.cache != nil {
		if err := e.cache.Put(cacheKey, *best, bestScore); err != nil {
			e.logger.Debug("failed to cache resolution", "key", cacheKey, "error", err)
		}
	}
	return best, nil
}

// scoreCandidate computes the weighted fuzzy match score in [0,1]:
// title similarity 50%, artist similarity 30%, normalized popularity 20%.
// Without an artist hint, title carries the artist weight too.
func (e *Engine) scoreCandidate(candidate models.ResolvedTrack, title, artist string) float64 {
	titleSim := shared.TokenSetRatio(candidate.Name, title)
	popularity := float64(candidate.Popularity) / 100

	if artist == "" {
		return 0.8*titleSim + 0.2*popularity
	}

	artistSim := 0.0
	for _, a := range candidate.Artists {
		if sim := shared.TokenSetRatio(a, artist); sim > artistSim {
			artistSim = sim
		}
	}
	if sim := shared.TokenSetRatio(strings.Join(candidate.Artists, " "), artist); sim > artistSim {
		artistSim = sim
	}

	return 0.5*titleSim + 0.3*artistSim + 0.2*popularity
}

// buildQueryLadder orders search queries from most to least specific. Field
// filters find exact catalog entries fast; the raw concatenation catches
// titles the filters miss (translations, alternate spellings).
func buildQueryLadder(title, artist string) []string {
	if artist == "" {
		return []string{fmt.Sprintf("track:%q", title), title}
	}
	return []string{
		fmt.Sprintf("track:%q artist:%q", title, artist),
		fmt.Sprintf("track:%q", title),
		title + " " + artist,
	}
}
