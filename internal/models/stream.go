package models

const (
	EventChunk = "chunk"
	EventError = "error"
	EventDone  = "done"
)

// StreamEvent is one line of an application/x-ndjson gateway response.
// A well-formed stream is zero or more chunk events followed by exactly one
// error or done event.
type StreamEvent struct {
	Type     string `json:"type"`
	StreamID int64  `json:"stream_id"`
	Seq      int64  `json:"seq"`
	Text     string `json:"text,omitempty"`
	Error    string `json:"error,omitempty"`
}
