package app

import (
	"context"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	updateOwner = "clipreplace"
	updateRepo  = "clipreplace"
)

type UpdateChecker struct {
	app    *ClipReplaceApp
	source selfupdate.Source
}

// NewUpdateChecker returns nil when no release source can be built. A nil
// checker ignores update requests.
func NewUpdateChecker(app *ClipReplaceApp) *UpdateChecker {
	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		zerolog.Ctx(app.ctx).Warn().Err(err).Msg("failed to create update source")
		return nil
	}

	return &UpdateChecker{
		app:    app,
		source: source,
	}
}

func (uc *UpdateChecker) CheckForUpdates(ctx context.Context, showNoUpdateDialog bool) {
	if uc == nil {
		return
	}

	go func() {
		hasUpdate, release, err := uc.detectLatest(ctx)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("update check failed")
			if showNoUpdateDialog {
				fyne.Do(func() {
					dialog.ShowError(errors.Errorf("failed to check for updates: %w", err), uc.app.window)
				})
			}
			return
		}

		if hasUpdate {
			fyne.Do(func() {
				uc.showUpdateDialog(release)
			})
		} else if showNoUpdateDialog {
			fyne.Do(func() {
				dialog.ShowInformation("No Updates", "You're running the latest version!", uc.app.window)
			})
		}
	}()
}

func (uc *UpdateChecker) newUpdater() (*selfupdate.Updater, error) {
	return selfupdate.NewUpdater(selfupdate.Config{
		Source: uc.source,
		Validator: &selfupdate.ChecksumValidator{
			UniqueFilename: "checksums.txt",
		},
	})
}

func (uc *UpdateChecker) detectLatest(ctx context.Context) (bool, *selfupdate.Release, error) {
	updater, err := uc.newUpdater()
	if err != nil {
		return false, nil, errors.Errorf("creating updater: %w", err)
	}

	release, found, err := updater.DetectLatest(ctx, selfupdate.NewRepositorySlug(updateOwner, updateRepo))
	if err != nil {
		return false, nil, errors.Errorf("detecting latest release: %w", err)
	}
	if !found {
		return false, nil, errors.New("no releases found")
	}

	return release.GreaterThan(Version), release, nil
}

func (uc *UpdateChecker) showUpdateDialog(release *selfupdate.Release) {
	notes := release.ReleaseNotes
	if notes == "" {
		notes = "_No release notes._"
	}
	body := widget.NewRichTextFromMarkdown(notes)
	body.Wrapping = fyne.TextWrapWord

	content := container.NewBorder(
		widget.NewLabelWithStyle(Version+" → "+release.Version(), fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		nil, nil, nil,
		container.NewVScroll(body),
	)

	confirm := dialog.NewCustomConfirm("Update Available", "Update Now", "Later", content,
		func(update bool) {
			if update {
				uc.performUpdate(release)
			}
		}, uc.app.window)
	confirm.Resize(fyne.NewSize(420, 320))
	confirm.Show()
}

func (uc *UpdateChecker) performUpdate(release *selfupdate.Release) {
	progress := dialog.NewCustomWithoutButtons("Updating", widget.NewProgressBarInfinite(), uc.app.window)
	progress.Show()

	go func() {
		err := uc.doUpdate(uc.app.ctx, release)
		fyne.Do(func() {
			progress.Hide()
			if err != nil {
				dialog.ShowError(errors.Errorf("update failed: %w", err), uc.app.window)
				return
			}
			dialog.ShowInformation("Update Complete",
				AppName+" has been updated.\n\nRestart the application to use the new version.",
				uc.app.window)
		})
	}()
}

func (uc *UpdateChecker) doUpdate(ctx context.Context, release *selfupdate.Release) error {
	exe, err := os.Executable()
	if err != nil {
		return errors.Errorf("locating executable: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return errors.Errorf("resolving executable path: %w", err)
	}

	file, err := os.OpenFile(exe, os.O_WRONLY, 0)
	if err != nil {
		return errors.Errorf("executable is not writable, move the app to a user-writable location: %w", err)
	}
	file.Close()

	updater, err := uc.newUpdater()
	if err != nil {
		return errors.Errorf("creating updater: %w", err)
	}

	return updater.UpdateTo(ctx, release, exe)
}
