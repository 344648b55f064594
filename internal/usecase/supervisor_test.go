package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"SignalRelay/internal/domain/models"
	xlogger "SignalRelay/pkg/logger"
)

type fakeTransport struct {
	mu          sync.Mutex
	connects    int
	closes      int
	reads       int
	failReads   int // first N Read cycles end with a fatal error
	connectErrs []error
	sendErr     error
	sends       []string
	deliver     []*models.InboundMessage
}

func (f *fakeTransport) Connect(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	if len(f.connectErrs) > 0 {
		err := f.connectErrs[0]
		f.connectErrs = f.connectErrs[1:]
		return err
	}
	return nil
}

func (f *fakeTransport) Send(_ context.Context, chatID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sends = append(f.sends, chatID+":"+text)
	return nil
}

func (f *fakeTransport) Read(ctx context.Context) (<-chan *models.InboundMessage, <-chan error) {
	f.mu.Lock()
	fail := f.reads < f.failReads
	f.reads++
	deliver := f.deliver
	f.deliver = nil
	f.mu.Unlock()

	msgs := make(chan *models.InboundMessage, len(deliver))
	errs := make(chan error, 1)
	go func() {
		defer close(msgs)
		defer close(errs)
		for _, m := range deliver {
			select {
			case msgs <- m:
			case <-ctx.Done():
				return
			}
		}
		if fail {
			errs <- fmt.Errorf("polling failed")
			return
		}
		<-ctx.Done()
	}()
	return msgs, errs
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

func (f *fakeTransport) IsConnected() bool { return true }

func (f *fakeTransport) stats() (connects, closes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects, f.closes
}

type recordingHandler struct {
	mu   sync.Mutex
	msgs []*models.InboundMessage
}

func (h *recordingHandler) OnMessage(_ context.Context, m *models.InboundMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, m)
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.msgs)
}

type nopMetrics struct{}

func (nopMetrics) RecordMessageReceived() {}
func (nopMetrics) RecordSignalMatched()   {}
func (nopMetrics) RecordForward(string)   {}
func (nopMetrics) RecordError(string)     {}
func (nopMetrics) RecordRestart()         {}
func (nopMetrics) RecordConnected(bool)   {}

func newTestSupervisor(tr *fakeTransport, h MessageHandler, notice bool) *Supervisor {
	if h == nil {
		h = &recordingHandler{}
	}
	return NewSupervisor(tr, h, nopMetrics{}, xlogger.Nop(), time.Millisecond, "200", notice)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not reached within deadline")
}

func TestSupervisorReachesRunning(t *testing.T) {
	tr := &fakeTransport{}
	s := newTestSupervisor(tr, nil, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()

	waitFor(t, func() bool { return s.Snapshot().Running })

	cancel()
	<-done

	snap := s.Snapshot()
	if snap.State != models.StateStopped {
		t.Fatalf("expected stopped after cancel, got %s", snap.State)
	}
	if _, closes := tr.stats(); closes == 0 {
		t.Fatalf("expected transport teardown on stop")
	}
}

func TestSupervisorRestartLiveness(t *testing.T) {
	const failures = 3
	tr := &fakeTransport{failReads: failures}
	s := newTestSupervisor(tr, nil, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()

	// after N fatal errors the supervisor must be Running again,
	// having performed N restart cycles
	waitFor(t, func() bool {
		snap := s.Snapshot()
		return snap.Running && snap.Restarts >= failures
	})

	snap := s.Snapshot()
	if snap.State == models.StateStopped {
		t.Fatalf("transport errors must never lead to Stopped")
	}
	if snap.LastError == "" {
		t.Fatalf("expected last error to be recorded")
	}

	cancel()
	<-done
	if got := s.Snapshot().State; got != models.StateStopped {
		t.Fatalf("expected stopped, got %s", got)
	}
}

func TestSupervisorConnectFailureRetries(t *testing.T) {
	tr := &fakeTransport{connectErrs: []error{fmt.Errorf("unauthorized")}}
	s := newTestSupervisor(tr, nil, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()

	waitFor(t, func() bool {
		snap := s.Snapshot()
		return snap.Running && snap.Restarts >= 1
	})

	connects, _ := tr.stats()
	if connects < 2 {
		t.Fatalf("expected reconnect after handshake failure, got %d connects", connects)
	}

	cancel()
	<-done
}

func TestSupervisorStartupNoticeSoftCheck(t *testing.T) {
	tr := &fakeTransport{sendErr: fmt.Errorf("chat not found")}
	s := newTestSupervisor(tr, nil, true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()

	// notice failure must not block entry to Running
	waitFor(t, func() bool { return s.Snapshot().Running })

	cancel()
	<-done
}

func TestSupervisorSendsStartupNotice(t *testing.T) {
	tr := &fakeTransport{}
	s := newTestSupervisor(tr, nil, true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()

	waitFor(t, func() bool { return s.Snapshot().Running })
	cancel()
	<-done

	tr.mu.Lock()
	defer tr.mu.Unlock()
	if len(tr.sends) == 0 {
		t.Fatalf("expected startup notice to target chat")
	}
}

func TestSupervisorDeliversMessages(t *testing.T) {
	h := &recordingHandler{}
	tr := &fakeTransport{deliver: []*models.InboundMessage{
		{ChatID: "100", Text: "Boom 1000 Index BUY Signal"},
		{ChatID: "100", Text: "just chatting"},
	}}
	s := newTestSupervisor(tr, h, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()

	waitFor(t, func() bool { return h.count() == 2 })

	cancel()
	<-done
}

func TestSupervisorCancelDuringBackoff(t *testing.T) {
	tr := &fakeTransport{failReads: 1 << 30} // always fail
	s := NewSupervisor(tr, &recordingHandler{}, nopMetrics{}, xlogger.Nop(), 200*time.Millisecond, "200", false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()

	waitFor(t, func() bool { return s.Snapshot().Restarts >= 1 })
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("cancellation not observed within backoff granularity")
	}
	if got := s.Snapshot().State; got != models.StateStopped {
		t.Fatalf("expected stopped, got %s", got)
	}
}

func TestSnapshotUptime(t *testing.T) {
	s := newTestSupervisor(&fakeTransport{}, nil, false)
	if s.Snapshot().Uptime != 0 {
		t.Fatalf("uptime must be zero before Run")
	}
}
