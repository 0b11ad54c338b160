// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/auxq/internal/models"
	"github.com/desertthunder/auxq/internal/services"
	"github.com/desertthunder/auxq/internal/shared"
)

// MockCatalog is a configurable test double for [services.Catalog].
// Zero value behaves as an empty but healthy catalog.
type MockCatalog struct {
	mu sync.Mutex

	// Tracks is the fake catalog. Search matches candidates whose name or
	// artists appear in the query (case-insensitive substring).
	Tracks []models.ResolvedTrack

	// SearchErr, QueueErr, DeviceErr force the corresponding calls to fail.
	SearchErr error
	QueueErr  error
	DeviceErr error

	// Device is returned by ActiveDevice; nil means no devices available.
	Device *services.Device

	// QueuedURIs records AddToQueue calls in order.
	QueuedURIs []string

	SearchCalls int
}

func (m *MockCatalog) Authenticate(ctx context.Context, credentials map[string]string) error {
	return nil
}

func (m *MockCatalog) Search(ctx context.Context, query string, limit int) ([]models.ResolvedTrack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SearchCalls++

	if m.SearchErr != nil {
		return nil, m.SearchErr
	}

	q := strings.ToLower(query)
	var out []models.ResolvedTrack
	for _, track := range m.Tracks {
		if len(out) >= limit {
			break
		}
		if strings.Contains(q, strings.ToLower(track.Name)) {
			out = append(out, track)
			continue
		}
		for _, artist := range track.Artists {
			if strings.Contains(q, strings.ToLower(artist)) {
				out = append(out, track)
				break
			}
		}
	}
	return out, nil
}

func (m *MockCatalog) AddToQueue(ctx context.Context, trackURI string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QueueErr != nil {
		return m.QueueErr
	}
	m.QueuedURIs = append(m.QueuedURIs, trackURI)
	return nil
}

func (m *MockCatalog) RemoveFromQueue(ctx context.Context, trackURI string) error {
	return fmt.Errorf("%w: queue removal", shared.ErrNotImplemented)
}

func (m *MockCatalog) ActiveDevice(ctx context.Context) (*services.Device, error) {
	if m.DeviceErr != nil {
		return nil, m.DeviceErr
	}
	return m.Device, nil
}

func (m *MockCatalog) ActivateDevice(ctx context.Context, deviceID string) error {
	return nil
}

func (m *MockCatalog) Name() string { return "mock catalog" }

// Queued returns a snapshot of the URIs queued so far.
func (m *MockCatalog) Queued() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.QueuedURIs...)
}

// MockGenerator is a configurable test double for [services.Generator].
type MockGenerator struct {
	mu sync.Mutex

	// Suggestions is returned by Suggest, truncated to the requested count.
	Suggestions []models.Suggestion

	// SuggestErr and VerifyErr force the corresponding calls to fail.
	SuggestErr error
	VerifyErr  error

	// VerifyFunc overrides the default all-valid verification verdict.
	VerifyFunc func(seed models.SeedTrack, suggestion models.Suggestion, track models.ResolvedTrack) models.VerificationResult

	SuggestCalls int
	VerifyCalls  int
}

func (m *MockGenerator) Suggest(ctx context.Context, seed models.SeedTrack, count int) ([]models.Suggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SuggestCalls++

	if m.SuggestErr != nil {
		return nil, m.SuggestErr
	}
	if count < len(m.Suggestions) {
		return m.Suggestions[:count], nil
	}
	return m.Suggestions, nil
}

func (m *MockGenerator) Verify(ctx context.Context, seed models.SeedTrack, suggestion models.Suggestion, track models.ResolvedTrack) (models.VerificationResult, error) {
	m.mu.Lock()
	m.VerifyCalls++
	fn := m.VerifyFunc
	err := m.VerifyErr
	m.mu.Unlock()

	if err != nil {
		return models.VerificationResult{}, err
	}
	if fn != nil {
		return fn(seed, suggestion, track), nil
	}
	return models.VerificationResult{Valid: true, Confidence: 0.9, Reason: "mock verdict"}, nil
}

func (m *MockGenerator) Name() string { return "mock generator" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

