package formatter

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/auxq/internal/models"
	"github.com/desertthunder/auxq/internal/shared"
	th "github.com/desertthunder/auxq/internal/testing"
)

func sampleResult() *models.RecommendationResult {
	return &models.RecommendationResult{
		SeedTrack: models.SeedTrack{
			ID:      "seed1",
			Name:    "Blinding Lights",
			Artists: []string{"The Weeknd"},
			Album:   "After Hours",
			URI:     "spotify:track:seed1",
		},
		Recommendations: []models.RecommendationRecord{
			{
				Suggestion: models.Suggestion{Title: "Save Your Tears", Artists: []string{"The Weeknd"}, Reason: "same artist and era"},
				Track: &models.ResolvedTrack{
					ID:         "t1",
					Name:       "Save Your Tears",
					Artists:    []string{"The Weeknd"},
					Album:      "After Hours",
					URI:        "spotify:track:t1",
					Popularity: 90,
				},
				Verification: &models.VerificationResult{Valid: true, Confidence: 0.85, Reason: "close match"},
				Queued:       true,
			},
			{
				Suggestion: models.Suggestion{Title: "Physical", Artists: []string{"Dua Lipa"}},
				Track: &models.ResolvedTrack{
					ID:         "t2",
					Name:       "Physical",
					Artists:    []string{"Dua Lipa"},
					Album:      "Future Nostalgia",
					URI:        "spotify:track:t2",
					Popularity: 80,
				},
				Verification: &models.VerificationResult{Valid: false, Confidence: 0.4, Reason: "different vibe"},
			},
			{
				Suggestion: models.Suggestion{Title: "Ghost Song", Artists: []string{"Nobody"}},
			},
		},
		TotalFound:    2,
		TotalVerified: 1,
		TotalRejected: 1,
		AddedToQueue:  1,
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleResult())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "ID,Title,Artists,Album,Popularity,Queued,Valid,Confidence") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "Save Your Tears") {
			t.Errorf("CSV missing resolved track title")
		}
		if !strings.Contains(output, "0.85") {
			t.Errorf("CSV missing confidence score")
		}
		if strings.Contains(output, "Ghost Song") {
			t.Errorf("CSV should omit unresolved suggestions")
		}

		lines := strings.Split(strings.TrimSpace(output), "\n")
		if len(lines) != 3 {
			t.Errorf("expected header + 2 records, got %d lines", len(lines))
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleResult())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "# Recommendations for Blinding Lights - The Weeknd") {
			t.Errorf("markdown missing heading, got: %s", output)
		}
		if !strings.Contains(output, "**Queued**: 1") {
			t.Errorf("markdown missing queued count")
		}
		if !strings.Contains(output, "1. The Weeknd - Save Your Tears (After Hours) [queued, match 85%]") {
			t.Errorf("markdown missing first track line, got: %s", output)
		}
		if !strings.Contains(output, "same artist and era") {
			t.Errorf("markdown missing suggestion reason")
		}
		if !strings.Contains(output, "low match") {
			t.Errorf("markdown missing rejected marker")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleResult())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Seed: Blinding Lights - The Weeknd") {
			t.Errorf("text missing seed line, got: %s", output)
		}
		if !strings.Contains(output, "Found: 2") {
			t.Errorf("text missing found count")
		}
		if !strings.Contains(output, "Ghost Song - unresolved") {
			t.Errorf("text should list unresolved suggestions")
		}
	})

	t.Run("ToJSON", func(t *testing.T) {
		data, err := ToJSON(sampleResult())
		if err != nil {
			t.Fatalf("ToJSON failed: %v", err)
		}

		var decoded models.RecommendationResult
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("JSON output does not round-trip: %v", err)
		}
		if decoded.SeedTrack.ID != "seed1" {
			t.Errorf("expected seed id seed1, got %s", decoded.SeedTrack.ID)
		}
		if len(decoded.Recommendations) != 3 {
			t.Errorf("expected 3 records, got %d", len(decoded.Recommendations))
		}
	})
}

func TestExport(t *testing.T) {
	t.Run("FormatDispatch", func(t *testing.T) {
		result := sampleResult()

		for _, format := range []string{"json", "csv", "markdown", "md", "txt", "text", ""} {
			if _, err := Export(result, format); err != nil {
				t.Errorf("Export(%q) failed: %v", format, err)
			}
		}
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		_, err := Export(sampleResult(), "yaml")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("WriteExport", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "result.csv")

		if err := WriteExport(sampleResult(), "csv", path); err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}

		th.AssertFileExists(t, path)

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read export: %v", err)
		}
		if !strings.Contains(string(content), "Save Your Tears") {
			t.Errorf("export file missing track data")
		}
	})
}
