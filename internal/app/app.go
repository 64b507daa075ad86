package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"clipreplace/internal/clipboard"
	"clipreplace/internal/config"
	"clipreplace/internal/database"
	"clipreplace/internal/replace"
	"clipreplace/internal/tablefile"
	"clipreplace/internal/ui/components"
)

// Build-time variables, set with -ldflags.
var (
	Version   = "0.0.0-dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const (
	AppName = "ClipReplace"
	AppID   = "com.clipreplace.app"

	cleanupInterval = time.Hour

	statusClipboardError = "Monitoring stopped: clipboard error"
)

type ClipReplaceApp struct {
	fyneApp    fyne.App
	window     fyne.Window
	settings   *config.Store
	configDir  string
	configPath string
	repository *database.Repository

	monitorMu     sync.Mutex
	monitor       *clipboard.Monitor
	monitorConfig config.Config
	pumpCancel    context.CancelFunc

	// UI Components
	pairsForm   *components.PairsForm
	historyList *components.HistoryList
	searchBar   *components.SearchBar
	toolbar     *components.Toolbar
	statusBar   *widget.Label

	updateChecker *UpdateChecker
	cleanupOnce   sync.Once

	ctx        context.Context
	cancelFunc context.CancelFunc
}

// NewClipReplaceApp builds the window. An empty configPath selects
// ~/.clipreplace/config.json. A nil cfg is loaded from configPath.
func NewClipReplaceApp(ctx context.Context, configPath string, cfg *config.Config) (*ClipReplaceApp, error) {
	fyneApp := app.NewWithID(AppID)

	app.SetMetadata(fyne.AppMetadata{
		ID:      AppID,
		Name:    AppName,
		Version: Version,
		Build:   1,
	})

	ctx, cancel := context.WithCancel(ctx)

	a := &ClipReplaceApp{
		fyneApp:    fyneApp,
		configPath: configPath,
		ctx:        ctx,
		cancelFunc: cancel,
	}

	if err := a.initialize(cfg); err != nil {
		cancel()
		return nil, errors.Errorf("initializing application: %w", err)
	}

	return a, nil
}

func (a *ClipReplaceApp) initialize(cfg *config.Config) error {
	if err := a.initConfig(cfg); err != nil {
		return err
	}
	a.initDatabase()
	a.initUIComponents()
	a.restoreLastTable()

	a.updateChecker = NewUpdateChecker(a)

	a.createMainWindow()

	return nil
}

func (a *ClipReplaceApp) initConfig(cfg *config.Config) error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	a.configDir = dir

	if a.configPath == "" {
		a.configPath = filepath.Join(dir, "config.json")
	}

	if cfg == nil {
		cfg, err = config.Load(a.configPath)
		if err != nil {
			zerolog.Ctx(a.ctx).Warn().Err(err).Msg("creating default configuration")
			cfg = config.Default()
			if err := cfg.Save(a.configPath); err != nil {
				zerolog.Ctx(a.ctx).Warn().Err(err).Msg("failed to save config")
			}
		}
	}
	a.settings = config.NewStore(a.configPath, cfg)
	return nil
}

// initDatabase opens the history store. The app keeps working without it.
func (a *ClipReplaceApp) initDatabase() {
	repo, err := database.NewRepository(filepath.Join(a.configDir, "history.db"))
	if err != nil {
		zerolog.Ctx(a.ctx).Error().Err(err).Msg("history database unavailable")
		return
	}
	a.repository = repo
}

func (a *ClipReplaceApp) initUIComponents() {
	var store components.HistoryStore
	if a.repository != nil {
		store = a.repository
	}

	a.pairsForm = components.NewPairsForm(a.settings.Snapshot().MaxPairs)
	a.historyList = components.NewHistoryList(components.NewHistoryController(store), a)
	a.searchBar = components.NewSearchBar(a.historyList.Search)
	a.toolbar = components.NewToolbar(components.ToolbarActions{
		OnToggle:       a.toggleMonitoring,
		OnClear:        a.clearFields,
		OnInvert:       a.invertFields,
		OnLoad:         a.loadTable,
		OnSave:         a.saveTable,
		OnShowSettings: a.showSettings,
		OnShowAbout:    a.showAbout,
		OnCheckUpdates: a.checkForUpdates,
	})
	a.statusBar = widget.NewLabel("Idle")
}

func (a *ClipReplaceApp) restoreLastTable() {
	path := a.settings.Snapshot().LastTablePath
	if path == "" {
		return
	}

	pairs, err := tablefile.Load(path, a.pairsForm.Capacity())
	if err != nil {
		zerolog.Ctx(a.ctx).Warn().Err(err).Str("path", path).Msg("could not restore last table")
		return
	}
	a.pairsForm.SetPairs(pairs)
}

func (a *ClipReplaceApp) createMainWindow() {
	a.window = a.fyneApp.NewWindow(AppName)
	a.window.SetMaster()
	a.window.Resize(fyne.NewSize(760, 720))
	a.window.CenterOnScreen()

	a.window.SetContent(a.createMainContent())

	a.window.SetCloseIntercept(func() {
		a.cleanup()
		a.fyneApp.Quit()
	})

	a.showWelcomeIfFirstRun()
}

func (a *ClipReplaceApp) createMainContent() fyne.CanvasObject {
	history := container.NewBorder(
		container.NewVBox(widget.NewSeparator(), a.searchBar.Create()),
		nil, nil, nil,
		a.historyList.Create(),
	)

	split := container.NewVSplit(
		container.NewVScroll(container.NewPadded(a.pairsForm.Create())),
		history,
	)
	split.SetOffset(0.6)

	return container.NewBorder(
		container.NewVBox(
			a.toolbar.Create(),
			widget.NewSeparator(),
		),
		container.NewBorder(
			widget.NewSeparator(),
			nil, nil, nil,
			container.NewPadded(a.statusBar),
		),
		nil, nil,
		split,
	)
}

func (a *ClipReplaceApp) showWelcomeIfFirstRun() {
	firstRunFile := filepath.Join(a.configDir, ".first_run")

	if _, err := os.Stat(firstRunFile); os.IsNotExist(err) {
		if err := os.WriteFile(firstRunFile, []byte(""), 0644); err != nil {
			zerolog.Ctx(a.ctx).Warn().Err(err).Msg("could not write first run marker")
		}

		welcomeText := `ClipReplace rewrites the text you copy.

Fill in one or more "Replace / with" rows and press Start Monitoring.
Every time the clipboard changes, each row is applied in order and the
result is copied back for you to paste.

Rows are applied one after another, so a later row also sees the text
produced by earlier rows.`

		dialog.ShowCustom("Welcome to ClipReplace", "Get Started", widget.NewLabel(welcomeText), a.window)
	}
}

func (a *ClipReplaceApp) ShowAndRun() {
	go a.startCleanupRoutine()

	if a.settings.Snapshot().CheckUpdatesOnStartup {
		go func() {
			select {
			case <-a.ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			a.updateChecker.CheckForUpdates(a.ctx, false)
		}()
	}

	a.historyList.Refresh()

	zerolog.Ctx(a.ctx).Info().Str("version", Version).Msgf("%s started", AppName)

	a.window.Show()
	a.fyneApp.Run()

	a.cleanup()
}

func (a *ClipReplaceApp) cleanup() {
	a.cleanupOnce.Do(func() {
		zerolog.Ctx(a.ctx).Info().Msgf("shutting down %s", AppName)

		a.monitorMu.Lock()
		monitor := a.monitor
		a.monitorMu.Unlock()
		if monitor != nil {
			monitor.Stop()
		}

		a.cancelFunc()
		if a.repository != nil {
			if err := a.repository.Close(); err != nil {
				zerolog.Ctx(a.ctx).Warn().Err(err).Msg("closing history database")
			}
		}
	})
}

func (a *ClipReplaceApp) startCleanupRoutine() {
	if a.repository == nil {
		return
	}

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			cfg := a.settings.Snapshot()
			if err := a.repository.CleanupOldRecords(a.ctx, cfg.MaxHistoryDays, cfg.MaxHistoryItems); err != nil {
				zerolog.Ctx(a.ctx).Warn().Err(err).Msg("history cleanup failed")
			}
		}
	}
}

// ensureMonitor returns the monitor, rebuilding it when an idle monitor was
// created with settings other than cfg.
func (a *ClipReplaceApp) ensureMonitor(cfg config.Config) (*clipboard.Monitor, error) {
	a.monitorMu.Lock()
	defer a.monitorMu.Unlock()

	if a.monitor != nil {
		if a.monitor.State() == clipboard.Running || a.monitorConfig == cfg {
			return a.monitor, nil
		}
		a.pumpCancel()
	}

	backend, err := clipboard.NewBackend(cfg.ClipboardBackend)
	if err != nil {
		return nil, err
	}

	var recorder clipboard.Recorder
	if a.repository != nil && cfg.RecordHistory {
		recorder = a.repository
	}

	a.monitor = clipboard.NewMonitor(backend, cfg.Interval(), recorder)
	a.monitorConfig = cfg

	pumpCtx, cancel := context.WithCancel(a.ctx)
	a.pumpCancel = cancel
	go a.pumpEvents(pumpCtx, a.monitor)

	return a.monitor, nil
}

func (a *ClipReplaceApp) toggleMonitoring() {
	table, tableErr := a.pairsForm.Table()
	cfg := *a.settings.Snapshot()

	go func() {
		monitor, err := a.ensureMonitor(cfg)
		if err != nil {
			zerolog.Ctx(a.ctx).Error().Err(err).Msg("clipboard unavailable")
			fyne.Do(func() {
				a.statusBar.SetText("Clipboard unavailable")
				dialog.ShowError(errors.Errorf("clipboard access failed.\n\n%s needs access to your clipboard to work.\n\nError: %w", AppName, err), a.window)
			})
			return
		}

		state, err := monitor.Toggle(a.ctx, func() (*replace.Table, error) {
			return table, tableErr
		})

		fyne.Do(func() {
			a.toolbar.SetRunning(state == clipboard.Running)
			if err == nil {
				return
			}

			var verr *replace.ValidationError
			if errors.As(err, &verr) {
				dialog.ShowInformation("Attention", "Complete at least one replacement pair.", a.window)
				return
			}
			dialog.ShowError(err, a.window)
		})
	}()
}

func (a *ClipReplaceApp) pumpEvents(ctx context.Context, monitor *clipboard.Monitor) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-monitor.EventChannel():
			a.handleEvent(ev)
		}
	}
}

func (a *ClipReplaceApp) handleEvent(ev clipboard.MonitorEvent) {
	switch ev.Type {
	case clipboard.EventStarted:
		fyne.Do(func() {
			a.toolbar.SetRunning(true)
			a.statusBar.SetText("✓ Monitoring clipboard")
		})
	case clipboard.EventReplaced:
		fyne.Do(func() {
			a.statusBar.SetText(fmt.Sprintf("Replaced %d match(es) at %s", ev.Result.Replacements, ev.Time.Format("15:04:05")))
		})
		a.historyList.Refresh()
	case clipboard.EventError:
		fyne.Do(func() {
			a.toolbar.SetRunning(false)
			a.statusBar.SetText(statusClipboardError)
			dialog.ShowError(errors.Errorf("monitoring stopped.\n\nError: %w", ev.Error), a.window)
		})
	case clipboard.EventStopped:
		fyne.Do(func() {
			a.toolbar.SetRunning(false)
			if a.statusBar.Text != statusClipboardError {
				a.statusBar.SetText("Monitoring stopped")
			}
		})
	}
}

func (a *ClipReplaceApp) clearFields() {
	a.pairsForm.Clear()
	a.statusBar.SetText("Fields cleared")
}

func (a *ClipReplaceApp) invertFields() {
	a.pairsForm.Invert()
	a.statusBar.SetText("Columns inverted")
}

func (a *ClipReplaceApp) saveTable() {
	pairs := a.pairsForm.Pairs()

	save := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()

		path := writer.URI().Path()
		if err := tablefile.Write(writer, pairs); err != nil {
			ferr := &tablefile.FileError{Op: "save", Path: path, Err: err}
			zerolog.Ctx(a.ctx).Error().Err(ferr).Msg("saving table failed")
			dialog.ShowError(ferr, a.window)
			return
		}

		a.rememberTable(path)
		a.statusBar.SetText("Saved " + filepath.Base(path))
		dialog.ShowInformation("Saved", "Replacement pairs saved.", a.window)
	}, a.window)
	save.SetFilter(storage.NewExtensionFileFilter([]string{".csv"}))
	save.SetFileName("replacements.csv")
	save.Show()
}

func (a *ClipReplaceApp) loadTable() {
	open := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		path := reader.URI().Path()
		pairs, err := tablefile.Read(reader, a.pairsForm.Capacity())
		if err != nil {
			ferr := &tablefile.FileError{Op: "load", Path: path, Err: err}
			zerolog.Ctx(a.ctx).Error().Err(ferr).Msg("loading table failed")
			dialog.ShowError(ferr, a.window)
			return
		}

		a.pairsForm.SetPairs(pairs)
		a.rememberTable(path)
		a.statusBar.SetText(fmt.Sprintf("Loaded %d pair(s) from %s", len(pairs), filepath.Base(path)))
	}, a.window)
	open.SetFilter(storage.NewExtensionFileFilter([]string{".csv"}))
	open.Show()
}

func (a *ClipReplaceApp) rememberTable(path string) {
	_, err := a.settings.Update(func(c *config.Config) {
		c.LastTablePath = path
	})
	if err != nil {
		zerolog.Ctx(a.ctx).Warn().Err(err).Msg("failed to save config")
	}
}

func (a *ClipReplaceApp) checkForUpdates() {
	a.updateChecker.CheckForUpdates(a.ctx, true)
}

func (a *ClipReplaceApp) showSettings() {
	settingsDialog := components.NewSettingsDialog(a.settings.Snapshot(), a.window, func(newConfig *config.Config) {
		if err := a.settings.Replace(newConfig); err != nil {
			zerolog.Ctx(a.ctx).Warn().Err(err).Msg("failed to save config")
		}
		a.statusBar.SetText("Settings saved")
	})
	settingsDialog.Show()
}

func (a *ClipReplaceApp) showAbout() {
	content := container.NewVBox(
		widget.NewLabelWithStyle(AppName, fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle(fmt.Sprintf("Version %s", Version), fyne.TextAlignCenter, fyne.TextStyle{}),
		widget.NewLabelWithStyle(fmt.Sprintf("Built: %s", BuildDate), fyne.TextAlignCenter, fyne.TextStyle{Italic: true}),
		widget.NewLabelWithStyle(fmt.Sprintf("Commit: %s", GitCommit), fyne.TextAlignCenter, fyne.TextStyle{Italic: true}),
		widget.NewLabel(""),
		widget.NewLabel("Automatic find and replace for your clipboard"),
	)

	dialog.ShowCustom("About "+AppName, "Close", content, a.window)
}

func (a *ClipReplaceApp) GetWindow() fyne.Window {
	return a.window
}
