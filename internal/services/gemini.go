// Gemini API implementation of [Generator]
//
// Communicates with the Generative Language REST API (generateContent).
// One call produces the suggestion list, a second call per resolved track
// produces the verification scores.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/auxq/internal/models"
	"github.com/desertthunder/auxq/internal/shared"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.0-flash"

	suggestAttempts = 3
	verifyAttempts  = 2
	initialBackoff  = time.Second

	defaultPassThreshold = 0.55
)

// Verification criteria weights. The weighted sum of the per-criterion
// scores becomes the confidence score.
const (
	weightArtist     = 0.30
	weightGenre      = 0.30
	weightEnergy     = 0.20
	weightPopularity = 0.10
	weightSonic      = 0.10
)

// GeminiService implements the [Generator] interface against the Generative
// Language API.
type GeminiService struct {
	apiKey        string
	model         string
	baseURL       string
	httpClient    *http.Client
	passThreshold float64
	backoff       time.Duration
}

// GeminiOption customizes a GeminiService.
type GeminiOption func(*GeminiService)

// WithGeminiBaseURL overrides the API base URL (used in tests).
func WithGeminiBaseURL(baseURL string) GeminiOption {
	return func(g *GeminiService) { g.baseURL = baseURL }
}

// WithGeminiHTTPClient overrides the HTTP client.
func WithGeminiHTTPClient(client *http.Client) GeminiOption {
	return func(g *GeminiService) { g.httpClient = client }
}

// WithPassThreshold overrides the confidence threshold above which a
// verification is considered valid.
func WithPassThreshold(threshold float64) GeminiOption {
	return func(g *GeminiService) {
		if threshold > 0 && threshold <= 1 {
			g.passThreshold = threshold
		}
	}
}

// NewGeminiService creates a new Gemini service with the given API key and model.
func NewGeminiService(apiKey, model string, opts ...GeminiOption) (*GeminiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing gemini api_key", shared.ErrMissingCredentials)
	}
	if model == "" {
		model = defaultGeminiModel
	}

	g := &GeminiService{
		apiKey:        apiKey,
		model:         model,
		baseURL:       defaultGeminiBaseURL,
		httpClient:    http.DefaultClient,
		passThreshold: defaultPassThreshold,
		backoff:       initialBackoff,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

func (g *GeminiService) Name() string {
	return "Gemini"
}

// Generative Language API wire types

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"topP,omitempty"`
	TopK             int     `json:"topK,omitempty"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent          `json:"system_instruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// suggestionPayload is the schema the model is instructed to return for the
// suggestion round. Items failing structural validation are dropped, not
// failed.
type suggestionPayload struct {
	Songs []struct {
		Title   string   `json:"title"`
		Artists []string `json:"artists"`
		Genre   string   `json:"genre"`
		Reason  string   `json:"reason"`
	} `json:"songs"`
}

// verificationPayload is the schema for the verification round: one score in
// [0,1] per criterion plus a one-line justification.
type verificationPayload struct {
	ArtistMatch     float64 `json:"artist_match"`
	GenreMatch      float64 `json:"genre_match"`
	EnergyMatch     float64 `json:"energy_match"`
	PopularityMatch float64 `json:"popularity_match"`
	SonicMatch      float64 `json:"sonic_match"`
	Reason          string  `json:"reason"`
}

// Suggest requests count candidate songs similar to the seed. Transient
// failures are retried with exponential backoff; after exhaustion the run
// fails with [shared.ErrGenerationFailed].
func (g *GeminiService) Suggest(ctx context.Context, seed models.SeedTrack, count int) ([]models.Suggestion, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: count must be >= 1", shared.ErrInvalidInput)
	}

	req := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: suggestSystemPrompt}}},
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: buildSuggestPrompt(seed, count)}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      0.6,
			TopP:             0.95,
			TopK:             40,
			ResponseMIMEType: "application/json",
		},
	}

	var lastErr error
	for attempt := 0; attempt < suggestAttempts; attempt++ {
		if attempt > 0 {
			if err := g.sleepBackoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		text, err := g.generate(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}

		var payload suggestionPayload
		if err := json.Unmarshal(extractJSON(text), &payload); err != nil {
			lastErr = fmt.Errorf("failed to parse suggestions: %w", err)
			continue
		}

		suggestions := make([]models.Suggestion, 0, len(payload.Songs))
		for _, song := range payload.Songs {
			if song.Title == "" || len(song.Artists) == 0 || song.Artists[0] == "" {
				continue // malformed item, drop
			}
			suggestions = append(suggestions, models.Suggestion{
				Title:   song.Title,
				Artists: song.Artists,
				Genre:   song.Genre,
				Reason:  song.Reason,
			})
		}

		if len(suggestions) == 0 {
			lastErr = fmt.Errorf("model returned no usable suggestions")
			continue
		}

		// The model is asked for exactly count songs but may over-return;
		// callers rely on never receiving more than they requested.
		if len(suggestions) > count {
			suggestions = suggestions[:count]
		}

		return suggestions, nil
	}

	return nil, fmt.Errorf("%w: after %d attempts: %v", shared.ErrGenerationFailed, suggestAttempts, lastErr)
}

// Verify scores the resolved track against the seed across the weighted
// criteria. Transient failures are retried once; persistent failure surfaces
// as an error for the caller to degrade.
func (g *GeminiService) Verify(ctx context.Context, seed models.SeedTrack, suggestion models.Suggestion, track models.ResolvedTrack) (models.VerificationResult, error) {
	req := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: verifySystemPrompt}}},
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: buildVerifyPrompt(seed, suggestion, track)}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      0.3,
			TopP:             0.8,
			TopK:             20,
			ResponseMIMEType: "application/json",
		},
	}

	var lastErr error
	for attempt := 0; attempt < verifyAttempts; attempt++ {
		if attempt > 0 {
			if err := g.sleepBackoff(ctx, attempt); err != nil {
				return models.VerificationResult{}, err
			}
		}

		text, err := g.generate(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}

		var payload verificationPayload
		if err := json.Unmarshal(extractJSON(text), &payload); err != nil {
			lastErr = fmt.Errorf("failed to parse verification: %w", err)
			continue
		}

		confidence := weightArtist*clamp01(payload.ArtistMatch) +
			weightGenre*clamp01(payload.GenreMatch) +
			weightEnergy*clamp01(payload.EnergyMatch) +
			weightPopularity*clamp01(payload.PopularityMatch) +
			weightSonic*clamp01(payload.SonicMatch)

		return models.VerificationResult{
			Valid:      confidence >= g.passThreshold,
			Confidence: confidence,
			Reason:     payload.Reason,
		}, nil
	}

	return models.VerificationResult{}, fmt.Errorf("%w: %v", shared.ErrVerificationFailed, lastErr)
}

// generate performs one generateContent call and returns the concatenated
// candidate text.
func (g *GeminiService) generate(ctx context.Context, payload geminiRequest) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, url.QueryEscape(g.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAIUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", fmt.Errorf("%w: status %d", shared.ErrAIUnavailable, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini API error: status %d", resp.StatusCode)
	}

	var result geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}

	return text, nil
}

// extractJSON strips markdown code fences and, failing a direct parse
// candidate, falls back to the outermost brace-delimited object. Models
// occasionally wrap JSON output despite the response MIME type.
func extractJSON(raw string) []byte {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		var kept []string
		for _, line := range strings.Split(text, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				continue
			}
			kept = append(kept, line)
		}
		text = strings.TrimSpace(strings.Join(kept, "\n"))
	}

	if json.Valid([]byte(text)) {
		return []byte(text)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return []byte(text[start : end+1])
	}

	return []byte(text)
}

func (g *GeminiService) sleepBackoff(ctx context.Context, attempt int) error {
	timer := time.NewTimer(g.backoff << (attempt - 1))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
