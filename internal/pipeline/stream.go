package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/desertthunder/auxq/internal/models"
	"github.com/desertthunder/auxq/internal/shared"
	"golang.org/x/sync/errgroup"
)

// Stream runs the pipeline incrementally. Tracks are queued optimistically on
// resolution, before verification completes; a record's queued flag never
// reverts even if verification later fails.
//
// The returned channel carries the run's ordered event sequence: seed exactly
// once before any track, track/skip in suggestion order, verification events
// unordered but always after their own track. The channel is unbuffered so a
// slow consumer backpressures the run, and it closes after exactly one
// terminal event. If ctx is cancelled the channel closes without a terminal
// event and in-flight work winds down.
func (e *Engine) Stream(ctx context.Context, req models.Request) <-chan models.StreamEvent {
	events := make(chan models.StreamEvent)
	go e.runStream(ctx, req, events)
	return events
}

func (e *Engine) runStream(ctx context.Context, req models.Request, events chan<- models.StreamEvent) {
	defer close(events)

	emit := func(ev models.StreamEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if e.catalog == nil {
		emit(errorEvent(fmt.Errorf("%w: catalog service not initialized", shared.ErrCatalogUnavailable)))
		return
	}
	if e.generator == nil {
		emit(errorEvent(fmt.Errorf("%w: generator service not initialized", shared.ErrAIUnavailable)))
		return
	}

	count := req.Count
	if count <= 0 {
		count = e.config.Count
	}
	logger := shared.WithLogger(e.logger, "run_id", shared.GenerateID())

	if !emit(statusEvent("Finding your song...")) {
		return
	}

	seed, err := e.ResolveSeed(ctx, req.SeedText)
	if err != nil {
		emit(errorEvent(err))
		return
	}

	if !emit(seedEvent(*seed)) {
		return
	}
	if !emit(statusEvent(fmt.Sprintf("Asking %s for %d similar songs...", e.generator.Name(), count))) {
		return
	}

	suggestions, err := e.generator.Suggest(ctx, *seed, count)
	if err != nil {
		emit(errorEvent(err))
		return
	}

	if !emit(statusEvent(fmt.Sprintf("Matching %d suggestions on %s...", len(suggestions), e.catalog.Name()))) {
		return
	}

	state := newRunState(seed.ID)

	// Resolutions race across suggestions but land in per-index slots; the
	// consumer loop below drains the slots in suggestion order so emission
	// order never depends on network completion order.
	slots := make([]chan resolution, len(suggestions))
	for i := range slots {
		slots[i] = make(chan resolution, 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.MaxInFlight)
	for i, suggestion := range suggestions {
		g.Go(func() error {
			slots[i] <- e.resolveSuggestion(gctx, suggestion, state)
			return nil
		})
	}

	var verifyWG sync.WaitGroup
	var rejected atomic.Int64
	queueAttempts := 0
	queueFailures := 0

	for i, suggestion := range suggestions {
		var res resolution
		select {
		case res = <-slots[i]:
		case <-ctx.Done():
			g.Wait()
			verifyWG.Wait()
			return
		}

		if res.err != nil {
			if errors.Is(res.err, shared.ErrAuthExpired) {
				emit(errorEvent(res.err))
				g.Wait()
				verifyWG.Wait()
				return
			}
			if !emit(skipEvent(i, suggestion.Title, res.skipReason)) {
				break
			}
			continue
		}

		track := *res.track

		queueAttempts++
		queued := true
		if err := e.catalog.AddToQueue(ctx, track.URI); err != nil {
			queued = false
			queueFailures++
			logger.Warn("failed to queue track", "track", track.Name, "error", err)
			if !emit(statusEvent(fmt.Sprintf("Could not queue %s: %v", track.Name, err))) {
				break
			}
		} else {
			state.markQueued()
		}

		if !emit(trackEvent(i, suggestion, track, queued, req.Verify)) {
			break
		}

		if req.Verify {
			verifyWG.Add(1)
			go func() {
				defer verifyWG.Done()
				v := e.verifyTrack(ctx, *seed, suggestion, track)
				if !v.Valid {
					rejected.Add(1)
				}
				emit(verificationEvent(track.ID, v))
			}()
		}
	}

	g.Wait()

	if ctx.Err() != nil {
		verifyWG.Wait()
		return
	}

	// The terminal event waits for every in-flight verification, so a
	// consumer that reads until complete has seen all verification verdicts.
	verifyWG.Wait()

	if queueAttempts > 0 && queueFailures == queueAttempts {
		emit(errorEvent(fmt.Errorf("%w: no tracks could be queued", shared.ErrQueueFailed)))
		return
	}

	logger.Info("stream complete", "queued", state.queuedCount(), "rejected", rejected.Load())
	emit(completeEvent(state.queuedCount(), int(rejected.Load())))
}
