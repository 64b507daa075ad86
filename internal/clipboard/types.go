package clipboard

import (
	"time"

	"gitlab.com/tozd/go/errors"

	"clipreplace/internal/replace"
)

type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	default:
		return "idle"
	}
}

type EventType string

const (
	EventStarted  EventType = "started"
	EventReplaced EventType = "replaced"
	EventStopped  EventType = "stopped"
	EventError    EventType = "error"
)

type MonitorEvent struct {
	Type   EventType
	Result *replace.Result
	Error  error
	Time   time.Time
}

var (
	ErrAlreadyRunning  = errors.New("monitor is already running")
	ErrInvalidInterval = errors.New("poll interval must be positive")
)

// AccessError reports a clipboard backend that is unavailable or failed a
// read or write.
type AccessError struct {
	Op  string
	Err error
}

func (e *AccessError) Error() string {
	return "clipboard " + e.Op + ": " + e.Err.Error()
}

func (e *AccessError) Unwrap() error {
	return e.Err
}
