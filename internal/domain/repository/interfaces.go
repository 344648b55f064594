package repository

import (
	"context"

	"SignalRelay/internal/domain/models"
)

// Transport is the chat transport the supervisor owns. Connect performs
// the startup handshake; Read delivers inbound messages until a fatal
// transport error is pushed on the error channel, after which the
// receive loop is dead and the supervisor decides what happens next.
type Transport interface {
	Connect(ctx context.Context) error
	Send(ctx context.Context, chatID, text string) error
	Read(ctx context.Context) (<-chan *models.InboundMessage, <-chan error)
	Close() error
	IsConnected() bool
}

// Sender is the narrow send-only view of the transport used by the
// relay handler.
type Sender interface {
	Send(ctx context.Context, chatID, text string) error
}

// Publisher fans matched signals out to downstream consumers. Optional;
// a nil Publisher disables fan-out.
type Publisher interface {
	Publish(ctx context.Context, s *models.Signal) error
	Close() error
}

// OffsetStore persists the transport's last processed update offset so
// restart cycles resume instead of replaying.
type OffsetStore interface {
	Load(ctx context.Context) (int64, error)
	Store(ctx context.Context, offset int64) error
	Close() error
}

// StatusSource exposes the supervisor state to the health surface.
type StatusSource interface {
	Snapshot() models.StatusSnapshot
}

type Metrics interface {
	RecordMessageReceived()
	RecordSignalMatched()
	RecordForward(result string)
	RecordError(kind string)
	RecordRestart()
	RecordConnected(up bool)
}
