package models

// EventType enumerates the tags of the pipeline's stream events.
type EventType string

const (
	EventStatus       EventType = "status"
	EventSeed         EventType = "seed"
	EventTrack        EventType = "track"
	EventVerification EventType = "verification"
	EventSkip         EventType = "skip"
	EventComplete     EventType = "complete"
	EventError        EventType = "error"
)

// StreamEvent is one entry in a run's append-only event sequence. Exactly one
// terminal event (complete or error) ends every stream.
type StreamEvent struct {
	Type    EventType `json:"type"`
	Message string    `json:"message,omitempty"` // status payload
	Error   string    `json:"error,omitempty"`   // error payload
	Data    any       `json:"data,omitempty"`    // tag-specific payload
}

// Terminal reports whether the event ends the stream.
func (e StreamEvent) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}

// TrackPayload is the data carried by a track event. Index ties the event
// back to the originating suggestion regardless of resolution arrival order.
type TrackPayload struct {
	Index               int      `json:"index"`
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Artists             []string `json:"artists"`
	Album               string   `json:"album"`
	URI                 string   `json:"uri"`
	Popularity          int      `json:"popularity"`
	PreviewURL          string   `json:"preview_url,omitempty"`
	ImageURL            string   `json:"image_url,omitempty"`
	Genre               string   `json:"genre,omitempty"`
	Reason              string   `json:"reason,omitempty"`
	Queued              bool     `json:"added_to_queue"`
	VerificationPending bool     `json:"verification_pending"`
}

// VerificationPayload is the data carried by a verification event.
type VerificationPayload struct {
	TrackID    string  `json:"track_id"`
	Valid      bool    `json:"valid"`
	Confidence float64 `json:"confidence,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

// SkipPayload is the data carried by a skip event.
type SkipPayload struct {
	Index  int    `json:"index"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// CompletePayload is the data carried by the terminal complete event.
type CompletePayload struct {
	AddedToQueue int `json:"added_to_queue"`
	Rejected     int `json:"rejected"`
}
