package components

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"clipreplace/internal/clipboard"
	"clipreplace/internal/config"
)

type SettingsDialog struct {
	controller *SettingsController
	parent     fyne.Window
}

func NewSettingsDialog(cfg *config.Config, parent fyne.Window, onSave func(*config.Config)) *SettingsDialog {
	return &SettingsDialog{
		controller: NewSettingsController(cfg, onSave),
		parent:     parent,
	}
}

func (sd *SettingsDialog) Show() {
	dialog.ShowCustom("Settings", "Close", sd.createContent(), sd.parent)
}

func (sd *SettingsDialog) createContent() fyne.CanvasObject {
	values := sd.controller.Values()

	intervalEntry := sd.createNumericEntry(values.MonitorInterval)
	maxPairsEntry := sd.createNumericEntry(values.MaxPairs)
	backendSelect := widget.NewSelect([]string{clipboard.BackendSystem, clipboard.BackendAtotto}, nil)
	backendSelect.SetSelected(values.ClipboardBackend)

	recordCheck := widget.NewCheck("Keep a history of replacements", nil)
	recordCheck.SetChecked(values.RecordHistory)
	maxItemsEntry := sd.createNumericEntry(values.MaxHistoryItems)
	maxDaysEntry := sd.createNumericEntry(values.MaxHistoryDays)

	updatesCheck := widget.NewCheck("Check for updates on startup", nil)
	updatesCheck.SetChecked(values.CheckUpdatesOnStartup)

	collect := func() SettingsValues {
		return SettingsValues{
			MonitorInterval:       intervalEntry.Text,
			MaxPairs:              maxPairsEntry.Text,
			ClipboardBackend:      backendSelect.Selected,
			RecordHistory:         recordCheck.Checked,
			MaxHistoryItems:       maxItemsEntry.Text,
			MaxHistoryDays:        maxDaysEntry.Text,
			CheckUpdatesOnStartup: updatesCheck.Checked,
		}
	}

	tabs := container.NewAppTabs(
		container.NewTabItem("Monitoring", &widget.Form{
			Items: []*widget.FormItem{
				widget.NewFormItem("Poll interval (ms)", intervalEntry),
				widget.NewFormItem("Replacement rows", maxPairsEntry),
				widget.NewFormItem("Clipboard backend", backendSelect),
			},
		}),
		container.NewTabItem("History", &widget.Form{
			Items: []*widget.FormItem{
				widget.NewFormItem("", recordCheck),
				widget.NewFormItem("Maximum entries", maxItemsEntry),
				widget.NewFormItem("Delete entries older than (days)", maxDaysEntry),
			},
		}),
		container.NewTabItem("Updates", &widget.Form{
			Items: []*widget.FormItem{
				widget.NewFormItem("", updatesCheck),
			},
		}),
	)

	saveButton := widget.NewButton("Save Settings", func() {
		if err := sd.controller.Save(collect()); err != nil {
			dialog.ShowError(err, sd.parent)
		}
	})
	saveButton.Importance = widget.HighImportance

	resetButton := widget.NewButton("Reset to Defaults", func() {
		dialog.ShowConfirm("Reset Settings",
			"Are you sure you want to reset all settings to their default values?",
			func(confirmed bool) {
				if confirmed {
					sd.controller.Reset()
				}
			}, sd.parent)
	})
	resetButton.Importance = widget.LowImportance

	note := widget.NewLabel("Changes to the interval, backend and rows apply to the next monitoring session. Row count changes need a restart.")
	note.Wrapping = fyne.TextWrapWord

	return container.NewVBox(
		tabs,
		note,
		widget.NewSeparator(),
		container.NewHBox(resetButton, layout.NewSpacer(), saveButton),
	)
}

func (sd *SettingsDialog) createNumericEntry(initialValue string) *widget.Entry {
	entry := widget.NewEntry()
	entry.SetText(initialValue)
	entry.Validator = func(text string) error {
		if _, err := strconv.Atoi(text); err != nil {
			return err
		}
		return nil
	}
	return entry
}
