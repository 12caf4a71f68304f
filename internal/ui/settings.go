package ui

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/PrintSheet/internal/model"
	"github.com/piwi3910/PrintSheet/internal/project"
)

// showSettingsDialog displays the application preferences editor.
func (a *App) showSettingsDialog() {
	cfg := a.config

	floatEntry := func(val *float64) *widget.Entry {
		e := widget.NewEntry()
		e.SetText(strconv.FormatFloat(*val, 'f', -1, 64))
		e.OnChanged = func(text string) {
			if v, err := strconv.ParseFloat(text, 64); err == nil && v >= 0 {
				*val = v
			}
		}
		return e
	}

	intEntry := func(val *int) *widget.Entry {
		e := widget.NewEntry()
		e.SetText(strconv.Itoa(*val))
		e.OnChanged = func(text string) {
			if v, err := strconv.Atoi(text); err == nil && v > 0 {
				*val = v
			}
		}
		return e
	}

	presetSelect := widget.NewSelect(model.GetPresetNames(), func(selected string) {
		cfg.DefaultPreset = selected
	})
	presetSelect.SetSelected(cfg.DefaultPreset)

	orientSelect := widget.NewSelect([]string{model.Portrait.String(), model.Landscape.String()}, func(selected string) {
		cfg.DefaultOrientation = model.Portrait
		if selected == model.Landscape.String() {
			cfg.DefaultOrientation = model.Landscape
		}
	})
	orientSelect.SetSelected(cfg.DefaultOrientation.String())

	themeSelect := widget.NewSelect([]string{"system", "light", "dark"}, func(selected string) {
		cfg.Theme = selected
	})
	themeSelect.SetSelected(cfg.Theme)

	formItems := []*widget.FormItem{
		widget.NewFormItem("Theme", themeSelect),
		widget.NewFormItem("", widget.NewSeparator()),
		widget.NewFormItem("Default Sheet", presetSelect),
		widget.NewFormItem("Default Orientation", orientSelect),
		widget.NewFormItem("Default Bleed (mm)", floatEntry(&cfg.DefaultBleed)),
		widget.NewFormItem("Default Padding (mm)", floatEntry(&cfg.DefaultPadding)),
		widget.NewFormItem("Default Gutter (mm)", floatEntry(&cfg.DefaultGutter)),
		widget.NewFormItem("Image DPI", floatEntry(&cfg.DefaultDPI)),
		widget.NewFormItem("", widget.NewSeparator()),
		widget.NewFormItem("Undo Steps", intEntry(&cfg.MaxHistory)),
		widget.NewFormItem("History Delay (ms)", intEntry(&cfg.DebounceMillis)),
	}

	d := dialog.NewForm("Preferences", "Save", "Cancel", formItems,
		func(ok bool) {
			if !ok {
				return
			}
			a.config = cfg
			a.applyTheme()
			if err := a.saveConfig(); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save settings: %w", err), a.window)
			} else {
				dialog.ShowInformation("Settings Saved",
					"Preferences have been saved.\nSheet defaults and history settings apply to new windows.", a.window)
			}
		},
		a.window,
	)
	d.Resize(fyne.NewSize(480, 520))
	d.Show()
}

// applyTheme installs the compact theme with the configured variant.
func (a *App) applyTheme() {
	t := NewPrintSheetTheme()
	switch a.config.Theme {
	case "light":
		t.SetVariant(theme.VariantLight)
	case "dark":
		t.SetVariant(theme.VariantDark)
	default:
		t.SetVariant(a.app.Settings().ThemeVariant())
	}
	a.app.Settings().SetTheme(t)
}

// showImportExportDialog displays the backup and restore dialog.
func (a *App) showImportExportDialog() {
	exportBtn := widget.NewButton("Export All Data...", func() {
		d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil || writer == nil {
				return
			}
			path := writer.URI().Path()
			writer.Close()
			if err := project.ExportAllData(path, a.config, model.CustomPresets); err != nil {
				dialog.ShowError(err, a.window)
			} else {
				dialog.ShowInformation("Export Complete",
					fmt.Sprintf("All application data exported to:\n%s", path), a.window)
			}
		}, a.window)
		d.SetFileName("printsheet-backup.json")
		d.Show()
	})

	importBtn := widget.NewButton("Import All Data...", func() {
		dialog.ShowConfirm("Import Data",
			"Importing data will replace your preferences and custom sheet presets.\n\nAre you sure you want to continue?",
			func(ok bool) {
				if !ok {
					return
				}
				d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
					if err != nil || reader == nil {
						return
					}
					path := reader.URI().Path()
					reader.Close()
					a.restoreBackup(path)
				}, a.window)
				d.Show()
			},
			a.window,
		)
	})

	content := container.NewVBox(
		widget.NewLabel("Export preferences and custom sheet presets to a backup file,\nor import from a previously exported backup."),
		widget.NewSeparator(),
		exportBtn,
		widget.NewSeparator(),
		importBtn,
	)

	d := dialog.NewCustom("Backup and Restore", "Close", content, a.window)
	d.Resize(fyne.NewSize(450, 250))
	d.Show()
}

func (a *App) restoreBackup(path string) {
	backup, err := project.ImportAllData(path)
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.config = backup.Config
	if err := a.saveConfig(); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save imported settings: %w", err), a.window)
		return
	}
	if err := project.SaveCustomPresets(a.presetsPath, backup.Presets); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save imported presets: %w", err), a.window)
		return
	}
	model.CustomPresets = backup.Presets
	a.applyTheme()
	a.refresh()
	dialog.ShowInformation("Import Complete",
		fmt.Sprintf("Data imported successfully from backup created at %s.", backup.CreatedAt), a.window)
}
