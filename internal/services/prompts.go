package services

import (
	"fmt"
	"strings"

	"github.com/desertthunder/auxq/internal/models"
)

const suggestSystemPrompt = `You are an expert music recommendation assistant.

You will receive a seed song with its verified catalog title, artist(s) and,
when available, genre. Analyze the seed's core genre and cultural context,
its energy and vibe, and its vocal style. Then identify high-confidence
matches: prioritize the most popular, sonically similar tracks by the exact
seed artist first, followed by closely associated artists within the same
genre and cultural context. Only suggest well-known titles that are
guaranteed to resolve on Spotify. Never suggest the seed song itself, and
never suggest duplicates.

Respond with clean, valid JSON only, matching this schema:
{
  "songs": [
    {
      "title": "exact song title as it appears on Spotify",
      "artists": ["exact artist name(s) as on Spotify"],
      "genre": "specific genre label",
      "reason": "1-2 lines explaining the direct sonic match"
    }
  ]
}`

const verifySystemPrompt = `You are a music quality verifier. Score how well a
recommended song matches a seed song on five criteria, each in [0.0, 1.0]:

- artist_match: same artist, or a closely related artist in the same scene
- genre_match: same genre and cultural context (Punjabi stays Punjabi, folk
  stays within its regional tradition, and so on)
- energy_match: similar energy, tempo and mood
- popularity_match: well-known, high-quality track likely to be on Spotify
- sonic_match: would flow well after the seed in a playlist

Respond with clean, valid JSON only, matching this schema:
{
  "artist_match": 0.0,
  "genre_match": 0.0,
  "energy_match": 0.0,
  "popularity_match": 0.0,
  "sonic_match": 0.0,
  "reason": "one sentence explaining the verdict"
}`

func buildSuggestPrompt(seed models.SeedTrack, count int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Seed Song: %q\n", seed.Name)
	if len(seed.Artists) > 0 {
		fmt.Fprintf(&sb, "Artist: %s\n", strings.Join(seed.Artists, ", "))
	}
	if seed.Genre != "" {
		fmt.Fprintf(&sb, "Genre: %s\n", seed.Genre)
	}
	fmt.Fprintf(&sb, "\nProvide EXACTLY %d song recommendations. Not less, not more.\n", count)

	return sb.String()
}

func buildVerifyPrompt(seed models.SeedTrack, suggestion models.Suggestion, track models.ResolvedTrack) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Seed Song:\n- Title: %s\n- Artist: %s\n", seed.Name, strings.Join(seed.Artists, ", "))
	if seed.Genre != "" {
		fmt.Fprintf(&sb, "- Genre: %s\n", seed.Genre)
	}

	fmt.Fprintf(&sb, "\nRecommended Song:\n- Title: %s\n- Artist: %s\n", suggestion.Title, suggestion.Artist())
	if suggestion.Genre != "" {
		fmt.Fprintf(&sb, "- Genre: %s\n", suggestion.Genre)
	}
	if suggestion.Reason != "" {
		fmt.Fprintf(&sb, "- AI Reason: %s\n", suggestion.Reason)
	}
	fmt.Fprintf(&sb, "- Spotify Artist: %s\n", strings.Join(track.Artists, ", "))
	fmt.Fprintf(&sb, "- Spotify Popularity: %d/100\n", track.Popularity)

	sb.WriteString("\nScore this recommendation against the seed song.")

	return sb.String()
}
