package components

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const searchDelay = 300 * time.Millisecond

// debouncer runs only the last call made within delay.
type debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

func (d *debouncer) call(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

func (d *debouncer) cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// SearchBar filters the replacement history as the user types.
type SearchBar struct {
	onSearch  func(query string)
	entry     *widget.Entry
	clear     *widget.Button
	debounce  *debouncer
	container *fyne.Container
}

func NewSearchBar(onSearch func(query string)) *SearchBar {
	sb := &SearchBar{
		onSearch: onSearch,
		entry:    widget.NewEntry(),
		debounce: &debouncer{delay: searchDelay},
	}

	sb.entry.SetPlaceHolder("Search replacement history...")
	sb.entry.OnChanged = sb.changed
	sb.entry.OnSubmitted = sb.submit

	sb.clear = widget.NewButtonWithIcon("", theme.ContentClearIcon(), sb.Clear)
	sb.clear.Hide()

	return sb
}

func (sb *SearchBar) Create() fyne.CanvasObject {
	if sb.container == nil {
		sb.container = container.NewBorder(nil, nil, widget.NewIcon(theme.SearchIcon()), sb.clear, sb.entry)
	}
	return sb.container
}

func (sb *SearchBar) changed(text string) {
	if text == "" {
		sb.clear.Hide()
	} else {
		sb.clear.Show()
	}
	sb.debounce.call(func() {
		sb.onSearch(text)
	})
}

func (sb *SearchBar) submit(text string) {
	sb.debounce.cancel()
	sb.onSearch(text)
}

// Clear empties the entry, which triggers a search for everything.
func (sb *SearchBar) Clear() {
	sb.entry.SetText("")
}

func (sb *SearchBar) Query() string {
	return sb.entry.Text
}
