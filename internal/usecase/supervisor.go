package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SignalRelay/internal/domain/models"
	drepo "SignalRelay/internal/domain/repository"
	xlogger "SignalRelay/pkg/logger"
)

const startupNotice = "🤖 Bot deployed and running!"

// MessageHandler consumes inbound message events one at a time.
type MessageHandler interface {
	OnMessage(ctx context.Context, msg *models.InboundMessage)
}

// Supervisor owns the transport lifecycle: connect, run the receive
// loop, detect fatal failure, tear down and restart after a fixed
// backoff. Restarts are unbounded; Stopped is reached only through
// context cancellation.
type Supervisor struct {
	transport  drepo.Transport
	handler    MessageHandler
	metrics    drepo.Metrics
	logger     *xlogger.Logger
	backoff    time.Duration
	targetChat string
	notice     bool

	mu        sync.RWMutex
	state     models.RunState
	startedAt time.Time
	lastErr   error
	restarts  int64
}

// NewSupervisor creates a supervisor. backoff is the fixed wait between
// a restart decision and the next connection attempt.
func NewSupervisor(
	transport drepo.Transport,
	handler MessageHandler,
	metrics drepo.Metrics,
	logger *xlogger.Logger,
	backoff time.Duration,
	targetChat string,
	notice bool,
) *Supervisor {
	return &Supervisor{
		transport:  transport,
		handler:    handler,
		metrics:    metrics,
		logger:     logger,
		backoff:    backoff,
		targetChat: targetChat,
		notice:     notice,
		state:      models.StateStarting,
	}
}

// Run drives the recovery cycle until ctx is cancelled. It always
// returns nil: transport failures are absorbed by the restart policy.
func (s *Supervisor) Run(ctx context.Context) error {
	s.mu.Lock()
	s.startedAt = time.Now()
	s.mu.Unlock()

	for {
		s.transition(models.StateStarting, nil)

		if err := s.transport.Connect(ctx); err != nil {
			if ctx.Err() != nil {
				return s.stop()
			}
			s.logger.Error("transport connect failed", xlogger.Error(err))
			s.metrics.RecordError("connect")
			if !s.restart(ctx, err) {
				return s.stop()
			}
			continue
		}

		// Soft-check: verify the target chat is reachable. Failure is
		// logged but does not block entry to Running.
		if s.notice {
			if err := s.transport.Send(ctx, s.targetChat, startupNotice); err != nil {
				s.metrics.RecordError("startup_notice")
				s.logger.Warn("target chat not reachable", xlogger.Error(err))
			} else {
				s.logger.Info("target chat reachable")
			}
		}

		s.transition(models.StateRunning, nil)
		s.metrics.RecordConnected(true)
		s.logger.Info("relay running")

		msgs, errs := s.transport.Read(ctx)
		fatal := s.serve(ctx, msgs, errs)

		s.metrics.RecordConnected(false)
		s.teardown()

		if ctx.Err() != nil {
			return s.stop()
		}

		s.logger.Error("fatal transport error", xlogger.Error(fatal), xlogger.Duration("backoff", s.backoff))
		s.metrics.RecordError("transport")
		if !s.restart(ctx, fatal) {
			return s.stop()
		}
	}
}

// serve pumps the receive loop until cancellation or a fatal transport
// error. Per-message failures never reach this level; the handler
// absorbs them.
func (s *Supervisor) serve(ctx context.Context, msgs <-chan *models.InboundMessage, errs <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				return fmt.Errorf("transport receive loop terminated")
			}
			if err != nil {
				return err
			}
		case m, ok := <-msgs:
			if !ok {
				// drained; the error channel reports why
				msgs = nil
				continue
			}
			if m != nil {
				s.handler.OnMessage(ctx, m)
			}
		}
	}
}

// restart records the failure, waits the fixed backoff and reports
// whether the next cycle should begin. A cancellation during the wait
// aborts the cycle.
func (s *Supervisor) restart(ctx context.Context, cause error) bool {
	s.transition(models.StateRestarting, cause)
	s.metrics.RecordRestart()

	t := time.NewTimer(s.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (s *Supervisor) teardown() {
	if err := s.transport.Close(); err != nil {
		s.logger.Warn("transport close failed", xlogger.Error(err))
	}
}

// stop finalizes the Stopped transition. Teardown has already happened
// on every path that leads here.
func (s *Supervisor) stop() error {
	s.transition(models.StateStopped, nil)
	s.logger.Info("relay stopped")
	return nil
}

func (s *Supervisor) transition(state models.RunState, cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	if cause != nil {
		s.lastErr = cause
	}
	if state == models.StateRestarting {
		s.restarts++
	}
}

// Snapshot returns a read-only copy of the supervisor state for the
// health surface. Safe for concurrent use at any point of the cycle.
func (s *Supervisor) Snapshot() models.StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := models.StatusSnapshot{
		State:     s.state,
		Running:   s.state == models.StateRunning,
		StartedAt: s.startedAt,
		Restarts:  s.restarts,
	}
	if !s.startedAt.IsZero() {
		snap.Uptime = time.Since(s.startedAt)
	}
	if s.lastErr != nil {
		snap.LastError = s.lastErr.Error()
	}
	return snap
}
