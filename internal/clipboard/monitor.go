package clipboard

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"clipreplace/internal/replace"
)

// Recorder persists rewrites performed by the monitor.
type Recorder interface {
	RecordReplacement(ctx context.Context, res replace.Result) error
}

// Monitor polls the clipboard and rewrites its text with a replacement table.
// At most one session runs at a time.
type Monitor struct {
	backend   Backend
	interval  time.Duration
	recorder  Recorder
	eventChan chan MonitorEvent

	mu      sync.Mutex
	session *session
}

type session struct {
	table    *replace.Table
	cancel   context.CancelFunc
	done     chan struct{}
	lastSeen string
}

// NewMonitor returns an idle monitor. recorder may be nil.
func NewMonitor(backend Backend, interval time.Duration, recorder Recorder) *Monitor {
	return &Monitor{
		backend:   backend,
		interval:  interval,
		recorder:  recorder,
		eventChan: make(chan MonitorEvent, 100),
	}
}

func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		return Running
	}
	return Idle
}

// Start begins a session with a snapshot of table. The session ends when
// Stop is called, ctx is cancelled, or the clipboard fails.
func (m *Monitor) Start(ctx context.Context, table *replace.Table) error {
	if table == nil || table.Len() == 0 {
		return errors.WithStack(replace.ErrNoPairs)
	}
	if m.interval <= 0 {
		return errors.Errorf("%w: %s", ErrInvalidInterval, m.interval)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		return errors.WithStack(ErrAlreadyRunning)
	}

	sctx, cancel := context.WithCancel(ctx)
	s := &session{
		table:  table,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	m.session = s

	zerolog.Ctx(ctx).Info().
		Int("pairs", table.Len()).
		Dur("interval", m.interval).
		Msg("clipboard monitor started")
	m.emit(ctx, MonitorEvent{Type: EventStarted})

	go m.monitorLoop(sctx, s)

	return nil
}

// Stop ends the running session, if any, and waits for the poll in flight to
// finish. No clipboard write happens after Stop returns.
func (m *Monitor) Stop() {
	m.mu.Lock()
	s := m.session
	m.session = nil
	m.mu.Unlock()

	if s == nil {
		return
	}

	s.cancel()
	<-s.done
}

// Toggle stops a running session, or builds a table and starts one.
func (m *Monitor) Toggle(ctx context.Context, build func() (*replace.Table, error)) (State, error) {
	if m.State() == Running {
		m.Stop()
		return Idle, nil
	}

	table, err := build()
	if err != nil {
		return Idle, err
	}

	if err := m.Start(ctx, table); err != nil {
		return m.State(), err
	}
	return Running, nil
}

func (m *Monitor) EventChannel() <-chan MonitorEvent {
	return m.eventChan
}

func (m *Monitor) monitorLoop(ctx context.Context, s *session) {
	var loopErr error
	defer func() {
		m.finish(ctx, s, loopErr)
	}()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return
		}

		if err := m.checkClipboard(ctx, s); err != nil {
			loopErr = err
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (m *Monitor) checkClipboard(ctx context.Context, s *session) error {
	current, err := m.backend.Read()
	if err != nil {
		return errors.WithStack(&AccessError{Op: "read", Err: err})
	}

	if current == s.lastSeen {
		return nil
	}

	res := s.table.Apply(current)
	if !res.Changed() {
		s.lastSeen = current
		return nil
	}

	if ctx.Err() != nil {
		return nil
	}

	if err := m.backend.Write(res.Text); err != nil {
		return errors.WithStack(&AccessError{Op: "write", Err: err})
	}
	s.lastSeen = res.Text

	zerolog.Ctx(ctx).Debug().
		Int("replacements", res.Replacements).
		Int("before", len(res.Original)).
		Int("after", len(res.Text)).
		Msg("clipboard rewritten")

	m.emit(ctx, MonitorEvent{Type: EventReplaced, Result: &res})

	if m.recorder != nil {
		if err := m.recorder.RecordReplacement(context.WithoutCancel(ctx), res); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to record replacement")
		}
	}

	return nil
}

func (m *Monitor) finish(ctx context.Context, s *session, loopErr error) {
	if loopErr != nil {
		zerolog.Ctx(ctx).Error().Err(loopErr).Msg("clipboard monitor stopped on error")
	} else {
		zerolog.Ctx(ctx).Info().Msg("clipboard monitor stopped")
	}

	m.mu.Lock()
	if m.session == s {
		m.session = nil
	}
	m.mu.Unlock()

	s.cancel()

	if loopErr != nil {
		m.emit(ctx, MonitorEvent{Type: EventError, Error: loopErr})
	}
	m.emit(ctx, MonitorEvent{Type: EventStopped})

	close(s.done)
}

func (m *Monitor) emit(ctx context.Context, ev MonitorEvent) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	select {
	case m.eventChan <- ev:
	default:
		zerolog.Ctx(ctx).Warn().Str("event", string(ev.Type)).Msg("monitor event dropped, channel full")
	}
}
