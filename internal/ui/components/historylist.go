package components

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

type AppInterface interface {
	GetWindow() fyne.Window
}

// HistoryList shows the rewrites the monitor performed.
type HistoryList struct {
	controller  *HistoryController
	app         AppInterface
	container   *fyne.Container
	list        *widget.List
	statusLabel *widget.Label
}

func NewHistoryList(controller *HistoryController, app AppInterface) *HistoryList {
	hl := &HistoryList{
		controller:  controller,
		app:         app,
		statusLabel: widget.NewLabel("Ready"),
	}

	hl.createList()
	return hl
}

func (hl *HistoryList) getWindow() fyne.Window {
	if hl.app != nil {
		return hl.app.GetWindow()
	}
	return nil
}

func (hl *HistoryList) Create() fyne.CanvasObject {
	if hl.container == nil {
		clearButton := widget.NewButtonWithIcon("", theme.DeleteIcon(), hl.ClearAll)
		clearButton.Importance = widget.LowImportance

		header := container.NewBorder(
			nil, nil,
			widget.NewLabelWithStyle("Recent Replacements", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			container.NewHBox(hl.statusLabel, clearButton),
		)

		hl.container = container.NewBorder(
			header,
			nil, nil, nil,
			hl.list,
		)
	}
	return hl.container
}

func (hl *HistoryList) createList() {
	hl.list = widget.NewList(
		hl.controller.Len,
		hl.createItemTemplate,
		hl.updateItem,
	)
	hl.list.OnSelected = func(id widget.ListItemID) {
		hl.list.UnselectAll()
		if record := hl.controller.At(id); record != nil {
			hl.showDetails(record.ID)
		}
	}
}

func (hl *HistoryList) createItemTemplate() fyne.CanvasObject {
	original := widget.NewLabel("")
	original.Truncation = fyne.TextTruncateEllipsis

	result := widget.NewLabel("")
	result.TextStyle = fyne.TextStyle{Bold: true}
	result.Truncation = fyne.TextTruncateEllipsis

	timestamp := widget.NewLabel("")
	timestamp.TextStyle = fyne.TextStyle{Italic: true}

	count := widget.NewLabel("")
	count.TextStyle = fyne.TextStyle{Monospace: true}

	deleteButton := widget.NewButtonWithIcon("", theme.DeleteIcon(), nil)
	deleteButton.Importance = widget.LowImportance

	textContainer := container.NewVBox(
		original,
		result,
		container.NewHBox(timestamp, widget.NewSeparator(), count, layout.NewSpacer()),
	)

	return container.NewBorder(nil, widget.NewSeparator(), nil, deleteButton, textContainer)
}

func (hl *HistoryList) updateItem(id widget.ListItemID, obj fyne.CanvasObject) {
	record := hl.controller.At(id)
	if record == nil {
		return
	}

	border := obj.(*fyne.Container)
	textContainer := border.Objects[0].(*fyne.Container)
	deleteButton := border.Objects[2].(*widget.Button)

	original := textContainer.Objects[0].(*widget.Label)
	result := textContainer.Objects[1].(*widget.Label)
	info := textContainer.Objects[2].(*fyne.Container)
	timestamp := info.Objects[0].(*widget.Label)
	count := info.Objects[2].(*widget.Label)

	original.SetText(previewText(record.Original, 80))
	result.SetText("→ " + previewText(record.Result, 80))
	timestamp.SetText(formatTimeAgo(record.Timestamp, time.Now()))
	count.SetText(fmt.Sprintf("%d match(es)", record.Replacements))

	recordID := record.ID
	deleteButton.OnTapped = func() {
		hl.deleteRecord(recordID)
	}
}

// Search runs query in the background and refreshes the list.
func (hl *HistoryList) Search(query string) {
	fyne.Do(func() {
		hl.statusLabel.SetText("Searching...")
	})

	go func() {
		status, err := hl.controller.Search(context.Background(), query)
		hl.apply(status, err)
	}()
}

func (hl *HistoryList) Refresh() {
	go func() {
		status, err := hl.controller.Refresh(context.Background())
		hl.apply(status, err)
	}()
}

// showDetails opens the full before and after text of one rewrite.
func (hl *HistoryList) showDetails(id int64) {
	window := hl.getWindow()
	if window == nil {
		return
	}

	go func() {
		record, err := hl.controller.Get(context.Background(), id)
		fyne.Do(func() {
			if err != nil {
				dialog.ShowError(err, window)
				return
			}

			before := widget.NewMultiLineEntry()
			before.SetText(record.Original)
			before.Disable()
			after := widget.NewMultiLineEntry()
			after.SetText(record.Result)
			after.Disable()

			content := container.NewGridWithRows(2,
				container.NewBorder(widget.NewLabel("Before"), nil, nil, nil, before),
				container.NewBorder(widget.NewLabel("After"), nil, nil, nil, after),
			)

			d := dialog.NewCustom(
				fmt.Sprintf("%d match(es), %s", record.Replacements, formatTimeAgo(record.Timestamp, time.Now())),
				"Close", content, window)
			d.Resize(fyne.NewSize(520, 400))
			d.Show()
		})
	}()
}

func (hl *HistoryList) apply(status string, err error) {
	fyne.Do(func() {
		hl.statusLabel.SetText(status)
		if err != nil {
			if window := hl.getWindow(); window != nil {
				dialog.ShowError(err, window)
			}
			return
		}
		hl.list.Refresh()
	})
}

func (hl *HistoryList) deleteRecord(id int64) {
	go func() {
		if err := hl.controller.Delete(context.Background(), id); err != nil {
			hl.apply("Delete failed", err)
			return
		}
		hl.Refresh()
	}()
}

// ClearAll asks for confirmation and then drops every record.
func (hl *HistoryList) ClearAll() {
	window := hl.getWindow()
	if window == nil || !hl.controller.Enabled() {
		return
	}

	dialog.ShowConfirm("Clear History",
		"Are you sure you want to clear the replacement history? This action cannot be undone.",
		func(confirmed bool) {
			if !confirmed {
				return
			}
			go func() {
				if err := hl.controller.ClearAll(context.Background()); err != nil {
					hl.apply("Clear failed", err)
					return
				}
				hl.Refresh()
			}()
		}, window)
}

func previewText(s string, max int) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	if s == "" {
		return "(empty)"
	}
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max]) + "..."
	}
	return s
}

func formatTimeAgo(timestamp, now time.Time) string {
	diff := now.Sub(timestamp)

	if diff < time.Minute {
		return "Just now"
	} else if diff < time.Hour {
		minutes := int(diff.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	} else if diff < 24*time.Hour {
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	} else if diff < 7*24*time.Hour {
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "Yesterday"
		}
		return fmt.Sprintf("%d days ago", days)
	}

	return timestamp.Local().Format("Jan 2, 2006")
}
