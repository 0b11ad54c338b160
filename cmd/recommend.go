package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/auxq/internal/formatter"
	"github.com/desertthunder/auxq/internal/models"
	"github.com/desertthunder/auxq/internal/shared"
	"github.com/urfave/cli/v3"
)

// Recommend runs the synchronous pipeline and renders the aggregate result.
func (r *Runner) Recommend(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	seed := strings.TrimSpace(cmd.StringArg("seed"))
	if seed == "" {
		return fmt.Errorf("%w: seed song is required", shared.ErrMissingArgument)
	}

	req := models.Request{
		SeedText: seed,
		Count:    int(cmd.Int("count")),
		Verify:   cmd.Bool("verify"),
	}

	r.logger.Info("starting recommendation run", "seed", seed, "count", req.Count, "verify", req.Verify)
	r.writePlain("Finding songs similar to %q...\n\n", seed)

	result, err := r.engine.Recommend(ctx, req)
	if err != nil {
		return err
	}

	format := cmd.String("format")
	if outputPath := cmd.String("output"); outputPath != "" {
		if err := formatter.WriteExport(result, format, outputPath); err != nil {
			return err
		}
		r.writePlain("✓ Result written to %s\n", outputPath)
		return nil
	}

	data, err := formatter.Export(result, format)
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}

// Stream runs the pipeline incrementally, rendering each event as it arrives.
func (r *Runner) Stream(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	seed := strings.TrimSpace(cmd.StringArg("seed"))
	if seed == "" {
		return fmt.Errorf("%w: seed song is required", shared.ErrMissingArgument)
	}

	req := models.Request{
		SeedText: seed,
		Count:    int(cmd.Int("count")),
		Verify:   cmd.Bool("verify"),
	}
	rawJSON := cmd.Bool("json")

	r.logger.Info("starting recommendation stream", "seed", seed, "count", req.Count, "verify", req.Verify)

	var streamErr error
	for event := range r.engine.Stream(ctx, req) {
		if rawJSON {
			if err := r.writeJSON(event, false); err != nil {
				return err
			}
			if event.Type == models.EventError {
				streamErr = errors.New(event.Error)
			}
			continue
		}

		if err := r.renderEvent(event); err != nil {
			return err
		}
		if event.Type == models.EventError {
			streamErr = errors.New(event.Error)
		}
	}

	return streamErr
}

// renderEvent pretty-prints one stream event for terminal consumption.
func (r *Runner) renderEvent(event models.StreamEvent) error {
	switch event.Type {
	case models.EventStatus:
		return r.writePlain("… %s\n", event.Message)

	case models.EventSeed:
		seed, ok := event.Data.(models.SeedTrack)
		if !ok {
			return r.writePlain("✓ %s\n", event.Message)
		}
		return r.writePlain("✓ Seed: %s - %s\n", seed.Name, strings.Join(seed.Artists, ", "))

	case models.EventTrack:
		track, ok := event.Data.(models.TrackPayload)
		if !ok {
			return nil
		}
		marker := " "
		if track.Queued {
			marker = "♪"
		}
		line := fmt.Sprintf("%s %s - %s", marker, track.Name, strings.Join(track.Artists, ", "))
		if track.Album != "" {
			line += fmt.Sprintf(" (%s)", track.Album)
		}
		return r.writePlain("%s\n", line)

	case models.EventVerification:
		v, ok := event.Data.(models.VerificationPayload)
		if !ok {
			return nil
		}
		if v.Valid {
			return r.writePlain("  ✓ verified %s (%.0f%%)\n", v.TrackID, v.Confidence*100)
		}
		return r.writePlain("  ✗ low match %s: %s\n", v.TrackID, shared.Truncate(v.Reason, 60))

	case models.EventSkip:
		return r.writePlain("  - %s\n", event.Message)

	case models.EventComplete:
		payload, ok := event.Data.(models.CompletePayload)
		if !ok {
			return r.writePlain("\n%s\n", event.Message)
		}
		r.writePlain("\n═══════════════════════════════════════\n")
		r.writePlain("Queued %d tracks", payload.AddedToQueue)
		if payload.Rejected > 0 {
			r.writePlain(" (%d low matches)", payload.Rejected)
		}
		return r.writePlain("\n═══════════════════════════════════════\n")

	case models.EventError:
		return r.writePlain("✗ %s\n", event.Error)
	}

	return nil
}
