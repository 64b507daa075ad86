package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// ToolbarActions are the callbacks behind each toolbar control.
type ToolbarActions struct {
	OnToggle       func()
	OnClear        func()
	OnInvert       func()
	OnLoad         func()
	OnSave         func()
	OnShowSettings func()
	OnShowAbout    func()
	OnCheckUpdates func()
}

type Toolbar struct {
	toolbar      *widget.Toolbar
	toggleButton *widget.Button
	container    *fyne.Container
	actions      ToolbarActions
}

func NewToolbar(actions ToolbarActions) *Toolbar {
	tb := &Toolbar{
		actions: actions,
	}

	tb.createToolbar()
	return tb
}

func (tb *Toolbar) Create() fyne.CanvasObject {
	if tb.container == nil {
		tb.container = container.NewBorder(nil, nil, tb.toggleButton, nil, tb.toolbar)
	}
	return tb.container
}

func (tb *Toolbar) createToolbar() {
	tb.toggleButton = widget.NewButtonWithIcon("Start Monitoring", theme.MediaPlayIcon(), tb.actions.OnToggle)
	tb.toggleButton.Importance = widget.HighImportance

	tb.toolbar = widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), tb.actions.OnLoad),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), tb.actions.OnSave),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), tb.actions.OnInvert),
		widget.NewToolbarAction(theme.ContentClearIcon(), tb.actions.OnClear),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.DownloadIcon(), tb.actions.OnCheckUpdates),
		widget.NewToolbarAction(theme.SettingsIcon(), tb.actions.OnShowSettings),
		widget.NewToolbarAction(theme.InfoIcon(), tb.actions.OnShowAbout),
	)
}

// SetRunning switches the toggle button between its start and stop faces.
func (tb *Toolbar) SetRunning(running bool) {
	if running {
		tb.toggleButton.SetText("Stop Monitoring")
		tb.toggleButton.SetIcon(theme.MediaStopIcon())
		tb.toggleButton.Importance = widget.DangerImportance
	} else {
		tb.toggleButton.SetText("Start Monitoring")
		tb.toggleButton.SetIcon(theme.MediaPlayIcon())
		tb.toggleButton.Importance = widget.HighImportance
	}
	tb.toggleButton.Refresh()
}

func (tb *Toolbar) ToggleText() string {
	return tb.toggleButton.Text
}
