package relay

import (
	"context"
	"fmt"
	"time"

	"SignalRelay/internal/domain/models"
	drepo "SignalRelay/internal/domain/repository"
	xlogger "SignalRelay/pkg/logger"
)

// Handler receives inbound message events, classifies them against the
// rule set and forwards matches to the target chat. All per-message
// failures are absorbed here; nothing propagates into the transport's
// receive loop.
type Handler struct {
	sourceChat string
	targetChat string
	rules      *RuleSet
	sender     drepo.Sender
	publisher  drepo.Publisher
	metrics    drepo.Metrics
	logger     *xlogger.Logger
}

// NewHandler creates a relay handler. publisher may be nil to disable
// downstream fan-out.
func NewHandler(
	sourceChat, targetChat string,
	rules *RuleSet,
	sender drepo.Sender,
	publisher drepo.Publisher,
	metrics drepo.Metrics,
	logger *xlogger.Logger,
) *Handler {
	return &Handler{
		sourceChat: sourceChat,
		targetChat: targetChat,
		rules:      rules,
		sender:     sender,
		publisher:  publisher,
		metrics:    metrics,
		logger:     logger,
	}
}

// OnMessage processes one inbound event. It always returns normally;
// at most one outbound send is issued per event.
func (h *Handler) OnMessage(ctx context.Context, msg *models.InboundMessage) {
	defer func() {
		if r := recover(); r != nil {
			h.metrics.RecordError("handler_panic")
			h.logger.Error("handler panic recovered", xlogger.Any("panic", r))
		}
	}()

	if msg == nil || msg.ChatID != h.sourceChat {
		return
	}
	h.metrics.RecordMessageReceived()

	text := msg.Body()
	if !h.rules.Matches(text) {
		h.logger.Debug("no signal match", xlogger.String("text", Truncate(text, 50)))
		return
	}

	h.metrics.RecordSignalMatched()
	h.logger.Info("trading signal detected", xlogger.String("text", Truncate(text, 100)))
	h.forward(ctx, text)
}

func (h *Handler) forward(ctx context.Context, raw string) models.ForwardResult {
	now := time.Now()
	formatted := FormatAlert(raw, now)

	if err := h.sender.Send(ctx, h.targetChat, formatted); err != nil {
		h.metrics.RecordForward("error")
		h.metrics.RecordError("forward")
		h.logger.Error("signal forward failed", xlogger.Error(err))
		return models.ForwardResult{Err: fmt.Errorf("forward signal: %w", err)}
	}

	h.metrics.RecordForward("ok")
	h.logger.Info("signal forwarded", xlogger.String("text", Truncate(raw, 50)))

	if h.publisher != nil {
		sig := &models.Signal{
			SourceChat: h.sourceChat,
			TargetChat: h.targetChat,
			Raw:        raw,
			Forwarded:  formatted,
			MatchedAt:  now,
		}
		if err := h.publisher.Publish(ctx, sig); err != nil {
			h.metrics.RecordError("publish")
			h.logger.Warn("signal fan-out failed", xlogger.Error(err))
		}
	}
	return models.ForwardResult{Success: true}
}
