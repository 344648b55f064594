package models

import "time"

// InboundMessage is a single chat message delivered by the transport.
// It is owned by the handler invocation that receives it and discarded
// after processing.
type InboundMessage struct {
	UpdateID   int64
	ChatID     string
	Text       string
	Caption    string
	ReceivedAt time.Time
}

// Body returns the message text, falling back to the media caption.
func (m *InboundMessage) Body() string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}

// ForwardResult is the synchronous outcome of one forward attempt.
type ForwardResult struct {
	Success bool
	Err     error
}

// Signal is a matched message prepared for fan-out to downstream consumers.
type Signal struct {
	SourceChat string
	TargetChat string
	Raw        string
	Forwarded  string
	MatchedAt  time.Time
}
