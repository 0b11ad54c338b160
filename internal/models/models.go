// package models defines the data model for the recommendation pipeline
package models

// SeedTrack is the canonical catalog entry resolved from the user's seed
// text. Created once per pipeline run and immutable thereafter.
type SeedTrack struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album"`
	URI        string   `json:"uri"`
	Popularity int      `json:"popularity"` // 0-100
	PreviewURL string   `json:"preview_url,omitempty"`
	ImageURL   string   `json:"image_url,omitempty"`
	Genre      string   `json:"genre,omitempty"`
}

// Suggestion is one AI-generated candidate. Not guaranteed to exist on the
// catalog.
type Suggestion struct {
	Title   string   `json:"title"`
	Artists []string `json:"artists"`
	Genre   string   `json:"genre,omitempty"`
	Reason  string   `json:"reason,omitempty"`
}

// Artist returns the suggestion's artists as a single display string.
func (s Suggestion) Artist() string {
	out := ""
	for i, a := range s.Artists {
		if i > 0 {
			out += ", "
		}
		out += a
	}
	return out
}

// ResolvedTrack is a catalog entry matched to a Suggestion. A Suggestion maps
// to at most one ResolvedTrack.
type ResolvedTrack struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album"`
	URI        string   `json:"uri"`
	Popularity int      `json:"popularity"`
	PreviewURL string   `json:"preview_url,omitempty"`
	ImageURL   string   `json:"image_url,omitempty"`
}

// VerificationResult is the verdict of the AI verification pass for one
// resolved track.
type VerificationResult struct {
	Valid      bool    `json:"is_valid"`
	Confidence float64 `json:"confidence_score"` // [0,1]
	Reason     string  `json:"reason"`
}

// RecommendationRecord groups one Suggestion with its resolution, queueing
// and verification state. Queued is monotonic: once true it never reverts,
// even if verification later fails.
type RecommendationRecord struct {
	Suggestion          Suggestion          `json:"suggestion"`
	Track               *ResolvedTrack      `json:"track,omitempty"`
	Verification        *VerificationResult `json:"verification,omitempty"`
	Queued              bool                `json:"queued"`
	VerificationPending bool                `json:"verification_pending"`
}

// RecommendationResult is the aggregate (non-streaming) pipeline output.
type RecommendationResult struct {
	SeedTrack       SeedTrack              `json:"seed_track"`
	Recommendations []RecommendationRecord `json:"recommendations"`
	TotalFound      int                    `json:"total_found"`
	TotalVerified   int                    `json:"total_verified"`
	TotalRejected   int                    `json:"total_rejected"`
	AddedToQueue    int                    `json:"added_to_queue"`
}

// Request is the input to both pipeline operations.
type Request struct {
	SeedText string `json:"seed_song"`
	Count    int    `json:"count"`
	Verify   bool   `json:"verify"`
}
