package clipboard

import (
	"runtime"
	"sync"

	atotto "github.com/atotto/clipboard"
	"gitlab.com/tozd/go/errors"
	design "golang.design/x/clipboard"
)

const (
	BackendSystem = "system"
	BackendAtotto = "atotto"
)

// Backend reads and writes plain text on the OS clipboard.
type Backend interface {
	Read() (string, error)
	Write(text string) error
}

// NewBackend returns the backend registered under name. An empty name
// selects BackendSystem.
func NewBackend(name string) (Backend, error) {
	switch name {
	case "", BackendSystem:
		return NewSystemBackend()
	case BackendAtotto:
		return NewAtottoBackend()
	default:
		return nil, errors.Errorf("unknown clipboard backend %q", name)
	}
}

var (
	designOnce sync.Once
	designErr  error
)

// SystemBackend uses golang.design/x/clipboard.
type SystemBackend struct{}

func NewSystemBackend() (*SystemBackend, error) {
	designOnce.Do(func() {
		designErr = design.Init()
	})
	if designErr != nil {
		return nil, errors.WithStack(&AccessError{Op: "init", Err: designErr})
	}
	return &SystemBackend{}, nil
}

func (b *SystemBackend) Read() (string, error) {
	return string(design.Read(design.FmtText)), nil
}

func (b *SystemBackend) Write(text string) error {
	design.Write(design.FmtText, []byte(text))
	return nil
}

// AtottoBackend uses github.com/atotto/clipboard, which shells out to the
// platform tools (xclip, xsel, wl-clipboard, pbcopy) where needed.
type AtottoBackend struct{}

func NewAtottoBackend() (*AtottoBackend, error) {
	if atotto.Unsupported {
		return nil, errors.WithStack(&AccessError{
			Op:  "init",
			Err: errors.Errorf("clipboard operations not supported on %s", runtime.GOOS),
		})
	}
	return &AtottoBackend{}, nil
}

func (b *AtottoBackend) Read() (string, error) {
	text, err := atotto.ReadAll()
	if err != nil {
		return "", errors.Errorf("reading clipboard: %w", err)
	}
	return text, nil
}

func (b *AtottoBackend) Write(text string) error {
	if err := atotto.WriteAll(text); err != nil {
		return errors.Errorf("writing clipboard: %w", err)
	}
	return nil
}
