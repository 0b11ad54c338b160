package repositories

import (
	"database/sql"
	"encoding/json"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/auxq/internal/models"
	"github.com/desertthunder/auxq/internal/shared"
)

//go:embed schema.sql
var schema string

// Migrate applies the resolution cache schema. Safe to run repeatedly.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// ResolutionRepository caches accepted catalog resolutions keyed by the
// normalized search query, so repeat seeds and recurring AI suggestions skip
// the search round-trip entirely.
type ResolutionRepository struct {
	db *sql.DB
}

// NewResolutionRepository creates a new ResolutionRepository with the given database connection
func NewResolutionRepository(db *sql.DB) *ResolutionRepository {
	return &ResolutionRepository{db: db}
}

// Get retrieves a cached resolution by normalized query key.
// Returns [shared.ErrTrackNotFound] on a cache miss.
func (r *ResolutionRepository) Get(queryKey string) (*models.ResolvedTrack, error) {
	query := `
		SELECT track_id, name, artists, album, uri, popularity, preview_url, image_url
		FROM resolutions
		WHERE query_key = ?
	`

	var track models.ResolvedTrack
	var artists string

	err := r.db.QueryRow(query, queryKey).Scan(
		&track.ID,
		&track.Name,
		&artists,
		&track.Album,
		&track.URI,
		&track.Popularity,
		&track.PreviewURL,
		&track.ImageURL,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no cached resolution for key", shared.ErrTrackNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query resolution: %w", err)
	}

	if err := json.Unmarshal([]byte(artists), &track.Artists); err != nil {
		return nil, fmt.Errorf("failed to decode cached artists: %w", err)
	}

	return &track, nil
}

// Put caches an accepted resolution. Duplicate query keys are silently
// ignored (UNIQUE constraint), matching at-most-once cache semantics.
func (r *ResolutionRepository) Put(queryKey string, track models.ResolvedTrack, score float64) error {
	artists, err := json.Marshal(track.Artists)
	if err != nil {
		return fmt.Errorf("failed to encode artists: %w", err)
	}

	query := `
		INSERT INTO resolutions (id, query_key, track_id, name, artists, album, uri, popularity, preview_url, image_url, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		shared.GenerateID(),
		queryKey,
		track.ID,
		track.Name,
		string(artists),
		track.Album,
		track.URI,
		track.Popularity,
		track.PreviewURL,
		track.ImageURL,
		score,
		time.Now().UTC(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache resolution: %w", err)
	}

	return nil
}

// Count returns the number of cached resolutions.
func (r *ResolutionRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM resolutions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count resolutions: %w", err)
	}
	return count, nil
}

// Purge deletes all cached resolutions and returns the number removed.
func (r *ResolutionRepository) Purge() (int, error) {
	result, err := r.db.Exec("DELETE FROM resolutions")
	if err != nil {
		return 0, fmt.Errorf("failed to purge resolutions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged rows: %w", err)
	}
	return int(n), nil
}
