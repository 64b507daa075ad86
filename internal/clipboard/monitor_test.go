package clipboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"clipreplace/internal/replace"
)

const testInterval = 10 * time.Millisecond

type fakeBackend struct {
	mu       sync.Mutex
	text     string
	writes   []string
	readErr  error
	writeErr error
}

func (f *fakeBackend) Read() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return "", f.readErr
	}
	return f.text, nil
}

func (f *fakeBackend) Write(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.text = text
	f.writes = append(f.writes, text)
	return nil
}

func (f *fakeBackend) set(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
}

func (f *fakeBackend) get() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text
}

func (f *fakeBackend) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

type fakeRecorder struct {
	mu      sync.Mutex
	results []replace.Result
}

func (r *fakeRecorder) RecordReplacement(ctx context.Context, res replace.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
	return nil
}

func (r *fakeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
	return logger.WithContext(context.Background())
}

func mustTable(t *testing.T, pairs ...replace.Pair) *replace.Table {
	table, err := replace.BuildTable(pairs, 0)
	require.NoError(t, err)
	return table
}

func TestMonitor_RewritesClipboard(t *testing.T) {
	ctx := testContext(t)
	backend := &fakeBackend{text: "a cat"}
	recorder := &fakeRecorder{}
	m := NewMonitor(backend, testInterval, recorder)

	require.NoError(t, m.Start(ctx, mustTable(t,
		replace.Pair{Pattern: "a", Replacement: "b"},
		replace.Pair{Pattern: "b", Replacement: "c"},
	)))
	defer m.Stop()

	assert.Equal(t, Running, m.State())
	require.Eventually(t, func() bool {
		return backend.get() == "c cct"
	}, time.Second, testInterval)

	// The monitor's own write must not be treated as new content.
	time.Sleep(5 * testInterval)
	assert.Equal(t, 1, backend.writeCount())
	assert.Equal(t, 1, recorder.count())

	backend.set("another a")
	require.Eventually(t, func() bool {
		return backend.get() == "cnother c"
	}, time.Second, testInterval)
	assert.Equal(t, 2, backend.writeCount())
}

func TestMonitor_NoMatchNoWrite(t *testing.T) {
	ctx := testContext(t)
	backend := &fakeBackend{text: "hello"}
	m := NewMonitor(backend, testInterval, nil)

	require.NoError(t, m.Start(ctx, mustTable(t, replace.Pair{Pattern: "zzz", Replacement: "y"})))
	time.Sleep(5 * testInterval)
	m.Stop()

	assert.Equal(t, 0, backend.writeCount())
	assert.Equal(t, "hello", backend.get())
}

func TestMonitor_IdentityPairNoWrite(t *testing.T) {
	ctx := testContext(t)
	backend := &fakeBackend{text: "x"}
	m := NewMonitor(backend, testInterval, nil)

	require.NoError(t, m.Start(ctx, mustTable(t, replace.Pair{Pattern: "x", Replacement: "x"})))
	time.Sleep(5 * testInterval)
	m.Stop()

	assert.Equal(t, 0, backend.writeCount())
}

func TestMonitor_EmptyClipboard(t *testing.T) {
	ctx := testContext(t)
	backend := &fakeBackend{}
	m := NewMonitor(backend, testInterval, nil)

	require.NoError(t, m.Start(ctx, mustTable(t, replace.Pair{Pattern: "a", Replacement: "b"})))
	defer m.Stop()

	time.Sleep(3 * testInterval)
	assert.Equal(t, 0, backend.writeCount())

	backend.set("a")
	require.Eventually(t, func() bool {
		return backend.get() == "b"
	}, time.Second, testInterval)
}

func TestMonitor_NoWritesAfterStop(t *testing.T) {
	ctx := testContext(t)
	backend := &fakeBackend{text: "a"}
	m := NewMonitor(backend, testInterval, nil)

	require.NoError(t, m.Start(ctx, mustTable(t, replace.Pair{Pattern: "a", Replacement: "b"})))
	require.Eventually(t, func() bool {
		return backend.writeCount() == 1
	}, time.Second, testInterval)

	m.Stop()
	assert.Equal(t, Idle, m.State())

	backend.set("a")
	time.Sleep(5 * testInterval)
	assert.Equal(t, 1, backend.writeCount())
	assert.Equal(t, "a", backend.get())
}

func TestMonitor_StartWhileRunning(t *testing.T) {
	ctx := testContext(t)
	m := NewMonitor(&fakeBackend{}, testInterval, nil)
	table := mustTable(t, replace.Pair{Pattern: "a", Replacement: "b"})

	require.NoError(t, m.Start(ctx, table))
	defer m.Stop()

	err := m.Start(ctx, table)
	assert.True(t, errors.Is(err, ErrAlreadyRunning))
}

func TestMonitor_StartNilTable(t *testing.T) {
	m := NewMonitor(&fakeBackend{}, testInterval, nil)
	err := m.Start(testContext(t), nil)
	assert.True(t, errors.Is(err, replace.ErrNoPairs))
	assert.Equal(t, Idle, m.State())
}

func TestMonitor_StartNonPositiveInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		backend := &fakeBackend{text: "a"}
		m := NewMonitor(backend, interval, nil)

		err := m.Start(testContext(t), mustTable(t, replace.Pair{Pattern: "a", Replacement: "b"}))
		assert.True(t, errors.Is(err, ErrInvalidInterval), "interval %s", interval)
		assert.Equal(t, Idle, m.State())
		assert.Equal(t, "a", backend.text)
	}
}

func TestMonitor_Toggle(t *testing.T) {
	ctx := testContext(t)
	backend := &fakeBackend{text: "a"}
	m := NewMonitor(backend, testInterval, nil)

	build := func() (*replace.Table, error) {
		return replace.BuildTable([]replace.Pair{{Pattern: "a", Replacement: "b"}}, 0)
	}

	state, err := m.Toggle(ctx, build)
	require.NoError(t, err)
	assert.Equal(t, Running, state)

	state, err = m.Toggle(ctx, build)
	require.NoError(t, err)
	assert.Equal(t, Idle, state)
	assert.Equal(t, Idle, m.State())
}

func TestMonitor_ToggleValidationFailure(t *testing.T) {
	m := NewMonitor(&fakeBackend{}, testInterval, nil)

	state, err := m.Toggle(testContext(t), func() (*replace.Table, error) {
		return replace.BuildTable([]replace.Pair{{Pattern: "", Replacement: "x"}}, 0)
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, replace.ErrNoPairs))
	assert.Equal(t, Idle, state)
	assert.Equal(t, Idle, m.State())
}

func TestMonitor_ReadErrorStopsSession(t *testing.T) {
	ctx := testContext(t)
	backend := &fakeBackend{readErr: errors.New("no display")}
	m := NewMonitor(backend, testInterval, nil)

	require.NoError(t, m.Start(ctx, mustTable(t, replace.Pair{Pattern: "a", Replacement: "b"})))

	require.Eventually(t, func() bool {
		return m.State() == Idle
	}, time.Second, testInterval)

	var errEvent *MonitorEvent
	timeout := time.After(time.Second)
	for errEvent == nil {
		select {
		case ev := <-m.EventChannel():
			if ev.Type == EventError {
				errEvent = &ev
			}
		case <-timeout:
			t.Fatal("no error event received")
		}
	}

	var aerr *AccessError
	require.True(t, errors.As(errEvent.Error, &aerr))
	assert.Equal(t, "read", aerr.Op)

	// A new session may be started after a failure.
	backend.mu.Lock()
	backend.readErr = nil
	backend.mu.Unlock()
	require.NoError(t, m.Start(ctx, mustTable(t, replace.Pair{Pattern: "a", Replacement: "b"})))
	m.Stop()
}

func TestMonitor_WriteErrorStopsSession(t *testing.T) {
	ctx := testContext(t)
	backend := &fakeBackend{text: "a", writeErr: errors.New("denied")}
	m := NewMonitor(backend, testInterval, nil)

	require.NoError(t, m.Start(ctx, mustTable(t, replace.Pair{Pattern: "a", Replacement: "b"})))

	require.Eventually(t, func() bool {
		return m.State() == Idle
	}, time.Second, testInterval)
	assert.Equal(t, "a", backend.get())
}

func TestMonitor_ParentContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(testContext(t))
	m := NewMonitor(&fakeBackend{}, testInterval, nil)

	require.NoError(t, m.Start(ctx, mustTable(t, replace.Pair{Pattern: "a", Replacement: "b"})))
	cancel()

	require.Eventually(t, func() bool {
		return m.State() == Idle
	}, time.Second, testInterval)
}

func TestMonitor_Events(t *testing.T) {
	ctx := testContext(t)
	backend := &fakeBackend{text: "a"}
	m := NewMonitor(backend, testInterval, nil)

	require.NoError(t, m.Start(ctx, mustTable(t, replace.Pair{Pattern: "a", Replacement: "b"})))
	require.Eventually(t, func() bool {
		return backend.writeCount() == 1
	}, time.Second, testInterval)
	m.Stop()

	var types []EventType
	var replaced *replace.Result
	for len(m.EventChannel()) > 0 {
		ev := <-m.EventChannel()
		types = append(types, ev.Type)
		if ev.Type == EventReplaced {
			replaced = ev.Result
		}
	}

	assert.Equal(t, []EventType{EventStarted, EventReplaced, EventStopped}, types)
	require.NotNil(t, replaced)
	assert.Equal(t, "a", replaced.Original)
	assert.Equal(t, "b", replaced.Text)
}
