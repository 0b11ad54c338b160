package pipeline

import (
	"fmt"

	"github.com/desertthunder/auxq/internal/models"
)

func statusEvent(message string) models.StreamEvent {
	return models.StreamEvent{
		Type:    models.EventStatus,
		Message: message,
	}
}

func seedEvent(seed models.SeedTrack) models.StreamEvent {
	return models.StreamEvent{
		Type:    models.EventSeed,
		Message: fmt.Sprintf("Found: %s - %s", seed.Name, joinArtists(seed.Artists)),
		Data:    seed,
	}
}

func trackEvent(index int, suggestion models.Suggestion, track models.ResolvedTrack, queued, pending bool) models.StreamEvent {
	return models.StreamEvent{
		Type: models.EventTrack,
		Data: models.TrackPayload{
			Index:               index,
			ID:                  track.ID,
			Name:                track.Name,
			Artists:             track.Artists,
			Album:               track.Album,
			URI:                 track.URI,
			Popularity:          track.Popularity,
			PreviewURL:          track.PreviewURL,
			ImageURL:            track.ImageURL,
			Genre:               suggestion.Genre,
			Reason:              suggestion.Reason,
			Queued:              queued,
			VerificationPending: pending,
		},
	}
}

func verificationEvent(trackID string, v models.VerificationResult) models.StreamEvent {
	return models.StreamEvent{
		Type: models.EventVerification,
		Data: models.VerificationPayload{
			TrackID:    trackID,
			Valid:      v.Valid,
			Confidence: v.Confidence,
			Reason:     v.Reason,
		},
	}
}

func skipEvent(index int, title, reason string) models.StreamEvent {
	return models.StreamEvent{
		Type:    models.EventSkip,
		Message: fmt.Sprintf("Skipped %s: %s", title, reason),
		Data: models.SkipPayload{
			Index:  index,
			Title:  title,
			Reason: reason,
		},
	}
}

func completeEvent(added, rejected int) models.StreamEvent {
	return models.StreamEvent{
		Type:    models.EventComplete,
		Message: fmt.Sprintf("Added %d tracks to your queue", added),
		Data: models.CompletePayload{
			AddedToQueue: added,
			Rejected:     rejected,
		},
	}
}

func errorEvent(err error) models.StreamEvent {
	return models.StreamEvent{
		Type:  models.EventError,
		Error: err.Error(),
	}
}

func joinArtists(artists []string) string {
	out := ""
	for i, a := range artists {
		if i > 0 {
			out += ", "
		}
		out += a
	}
	return out
}
