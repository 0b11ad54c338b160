// package formatter renders recommendation results to various formats (text, CSV, Markdown, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/auxq/internal/models"
	"github.com/desertthunder/auxq/internal/shared"
)

// ExportToCSV converts a RecommendationResult to CSV format with columns: ID, Title, Artists, Album, Popularity, Queued, Valid, Confidence
func ExportToCSV(result *models.RecommendationResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artists", "Album", "Popularity", "Queued", "Valid", "Confidence"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, rec := range result.Recommendations {
		if rec.Track == nil {
			continue
		}

		valid, confidence := "", ""
		if rec.Verification != nil {
			valid = strconv.FormatBool(rec.Verification.Valid)
			confidence = strconv.FormatFloat(rec.Verification.Confidence, 'f', 2, 64)
		}

		record := []string{
			rec.Track.ID,
			rec.Track.Name,
			strings.Join(rec.Track.Artists, "; "),
			rec.Track.Album,
			strconv.Itoa(rec.Track.Popularity),
			strconv.FormatBool(rec.Queued),
			valid,
			confidence,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a RecommendationResult to Markdown format
func ExportToMarkdown(result *models.RecommendationResult) ([]byte, error) {
	var buf bytes.Buffer

	seed := result.SeedTrack
	buf.WriteString(fmt.Sprintf("# Recommendations for %s - %s\n\n", seed.Name, strings.Join(seed.Artists, ", ")))

	buf.WriteString(fmt.Sprintf("**Found**: %d\n", result.TotalFound))
	if result.TotalVerified > 0 || result.TotalRejected > 0 {
		buf.WriteString(fmt.Sprintf("**Verified**: %d\n", result.TotalVerified))
		buf.WriteString(fmt.Sprintf("**Rejected**: %d\n", result.TotalRejected))
	}
	buf.WriteString(fmt.Sprintf("**Queued**: %d\n\n", result.AddedToQueue))

	buf.WriteString("## Tracks\n\n")
	n := 0
	for _, rec := range result.Recommendations {
		if rec.Track == nil {
			continue
		}
		n++

		markers := trackMarkers(rec)
		albumPart := ""
		if rec.Track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", rec.Track.Album)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s%s\n", n, strings.Join(rec.Track.Artists, ", "), rec.Track.Name, albumPart, markers))
		if rec.Suggestion.Reason != "" {
			buf.WriteString(fmt.Sprintf("   - %s\n", rec.Suggestion.Reason))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a RecommendationResult to plain text format
func ExportToText(result *models.RecommendationResult) ([]byte, error) {
	var buf bytes.Buffer

	seed := result.SeedTrack
	buf.WriteString(fmt.Sprintf("Seed: %s - %s\n", seed.Name, strings.Join(seed.Artists, ", ")))
	buf.WriteString(fmt.Sprintf("Found: %d", result.TotalFound))
	if result.TotalVerified > 0 || result.TotalRejected > 0 {
		buf.WriteString(fmt.Sprintf("  Verified: %d  Rejected: %d", result.TotalVerified, result.TotalRejected))
	}
	buf.WriteString(fmt.Sprintf("  Queued: %d\n\n", result.AddedToQueue))

	n := 0
	for _, rec := range result.Recommendations {
		if rec.Track == nil {
			buf.WriteString(fmt.Sprintf("   %s - unresolved\n", rec.Suggestion.Title))
			continue
		}
		n++
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s\n", n, strings.Join(rec.Track.Artists, ", "), rec.Track.Name, trackMarkers(rec)))
	}

	return buf.Bytes(), nil
}

// ToJSON generates an indented JSON representation of the full result
func ToJSON(result *models.RecommendationResult) ([]byte, error) {
	return shared.MarshalJSON(result, true)
}

// trackMarkers renders the queue/verification state suffix for one record.
func trackMarkers(rec models.RecommendationRecord) string {
	var markers []string
	if rec.Queued {
		markers = append(markers, "queued")
	}
	if rec.Verification != nil {
		if rec.Verification.Valid {
			markers = append(markers, fmt.Sprintf("match %.0f%%", rec.Verification.Confidence*100))
		} else {
			markers = append(markers, "low match")
		}
	} else if rec.VerificationPending {
		markers = append(markers, "verifying")
	}

	if len(markers) == 0 {
		return ""
	}
	return " [" + strings.Join(markers, ", ") + "]"
}

// Export renders the result in the requested format: json, csv, markdown, or
// text (the default).
func Export(result *models.RecommendationResult, format string) ([]byte, error) {
	switch format {
	case "json":
		return ToJSON(result)
	case "csv":
		return ExportToCSV(result)
	case "markdown", "md":
		return ExportToMarkdown(result)
	case "txt", "text", "":
		return ExportToText(result)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// WriteExport renders the result and writes it to filepath.
func WriteExport(result *models.RecommendationResult, format, filepath string) error {
	data, err := Export(result, format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
