// Package ui provides the PrintSheet desktop application.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"github.com/piwi3910/PrintSheet/internal/engine"
	"github.com/piwi3910/PrintSheet/internal/export"
	"github.com/piwi3910/PrintSheet/internal/history"
	"github.com/piwi3910/PrintSheet/internal/importer"
	"github.com/piwi3910/PrintSheet/internal/model"
	"github.com/piwi3910/PrintSheet/internal/project"
	"github.com/piwi3910/PrintSheet/internal/ui/widgets"
	"github.com/piwi3910/PrintSheet/internal/workspace"
)

// App holds all application state and UI references.
type App struct {
	app         fyne.App
	window      fyne.Window
	config      model.AppConfig
	configPath  string
	presetsPath string
	logger      *slog.Logger

	ws          *workspace.Workspace
	projectPath string
	busy        bool // A fill is running; the workspace is locked until it ends

	// UI references for dynamic updates
	sheetCanvas   *widgets.SheetCanvas
	presetSelect  *widget.Select
	itemList      *widget.List
	listItems     []*model.Item
	statusLabel   *widget.Label
	undoBtn       *ttwidget.Button
	redoBtn       *ttwidget.Button
	orientBtn     *ttwidget.Button
	selectionBtns []*ttwidget.Button
	guidesCheck   *widget.Check
}

// NewApp loads preferences and custom presets and opens an empty sheet.
func NewApp(application fyne.App, window fyne.Window, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		app:         application,
		window:      window,
		configPath:  project.DefaultConfigPath(),
		presetsPath: project.DefaultPresetsPath(),
		logger:      logger,
	}

	cfg, err := project.LoadAppConfig(a.configPath)
	if err != nil {
		logger.Warn("config unreadable, using defaults", "path", a.configPath, "err", err)
		cfg = model.DefaultAppConfig()
	}
	a.config = cfg
	if err := project.InstallCustomPresets(a.presetsPath); err != nil {
		logger.Warn("custom presets unreadable", "path", a.presetsPath, "err", err)
	}
	a.applyTheme()

	ws, err := workspace.New(a.newSheet(), a.config, logger,
		workspace.WithHistoryOptions(history.WithDispatcher(fyne.Do)))
	if err != nil {
		return nil, err
	}
	ws.OnChange(func() { fyne.Do(a.refresh) })
	a.ws = ws
	return a, nil
}

func (a *App) newSheet() model.SheetSettings {
	sheet := model.DefaultSheet()
	a.config.ApplyToSheet(&sheet)
	return sheet
}

func (a *App) saveConfig() error {
	return project.SaveAppConfig(a.configPath, a.config)
}

// Close commits pending history and stops timers.
func (a *App) Close() {
	a.ws.Close()
}

// SetupMenus creates the native menu bar and keyboard shortcuts.
func (a *App) SetupMenus() {
	a.window.SetMainMenu(a.mainMenu())

	c := a.window.Canvas()
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { a.undo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift},
		func(fyne.Shortcut) { a.redo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyD, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { a.duplicateSelected() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { a.saveProject() })
}

func (a *App) mainMenu() *fyne.MainMenu {
	recent := fyne.NewMenuItem("Open Recent", nil)
	recent.ChildMenu = a.recentMenu()

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Project", a.newProject),
		fyne.NewMenuItem("Open Project...", a.loadProject),
		recent,
		fyne.NewMenuItem("Save Project", a.saveProject),
		fyne.NewMenuItem("Save Project As...", a.saveProjectAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import Items...", a.importItems),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export PDF...", a.exportPDF),
		fyne.NewMenuItem("Export Report...", a.exportReport),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Backup and Restore...", a.showImportExportDialog),
		fyne.NewMenuItem("Preferences...", a.showSettingsDialog),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", a.undo),
		fyne.NewMenuItem("Redo", a.redo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Add Text...", a.showAddTextDialog),
		fyne.NewMenuItem("Add QR Code...", a.showAddQRDialog),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Duplicate", a.duplicateSelected),
		fyne.NewMenuItem("Rotate", a.rotateSelected),
		fyne.NewMenuItem("Scale...", a.showScaleDialog),
		fyne.NewMenuItem("Delete", a.deleteSelected),
		fyne.NewMenuItem("Delete All", a.deleteAll),
	)

	sheetMenu := fyne.NewMenu("Sheet",
		fyne.NewMenuItem("Fill Sheet", a.fillSheet),
		fyne.NewMenuItem("Toggle Orientation", a.toggleOrientation),
		fyne.NewMenuItem("Margins...", a.showMarginsDialog),
		fyne.NewMenuItem("Sheet Presets...", a.showPresetManager),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", a.showAboutDialog),
	)

	return fyne.NewMainMenu(fileMenu, editMenu, sheetMenu, helpMenu)
}

func (a *App) recentMenu() *fyne.Menu {
	var items []*fyne.MenuItem
	for _, p := range a.config.RecentProjects {
		path := p
		items = append(items, fyne.NewMenuItem(filepath.Base(path), func() { a.openProjectFile(path) }))
	}
	if len(items) == 0 {
		none := fyne.NewMenuItem("No recent projects", nil)
		none.Disabled = true
		items = append(items, none)
	}
	return fyne.NewMenu("", items...)
}

func (a *App) showAboutDialog() {
	dialog.ShowInformation(
		"About PrintSheet",
		"PrintSheet - Print Sheet Layout\n\n"+
			"Arrange images, text, symbols and QR codes on a print sheet,\n"+
			"fill it with copies and export a print-ready PDF.\n\n"+
			"Version 1.0.0",
		a.window,
	)
}

// Build constructs the full UI and returns the root container.
func (a *App) Build() fyne.CanvasObject {
	a.sheetCanvas = widgets.NewSheetCanvas(a.ws.Sheet(), 900, 700)
	a.sheetCanvas.OnSelected = func(string) { a.updateSelectionButtons() }
	a.sheetCanvas.OnMoved = func(id string, cx, cy float64) {
		if err := a.ws.MoveItem(id, cx, cy); err != nil {
			dialog.ShowError(err, a.window)
		}
	}

	a.statusLabel = widget.NewLabel("")
	split := container.NewHSplit(
		container.NewScroll(container.NewCenter(a.sheetCanvas)),
		a.buildItemsPanel(),
	)
	split.SetOffset(0.75)

	root := container.NewBorder(a.buildToolbar(), a.statusLabel, nil, nil, split)
	a.refresh()
	return root
}

// ─── Toolbar ───────────────────────────────────────────────

func (a *App) buildToolbar() fyne.CanvasObject {
	a.presetSelect = widget.NewSelect(model.GetPresetNames(), func(name string) {
		if a.busy || name == a.ws.Sheet().Preset {
			return
		}
		sheet := a.ws.Sheet()
		p := model.GetPreset(name)
		sheet.Preset, sheet.Width, sheet.Height = p.Name, p.Width, p.Height
		a.applySheet(sheet)
	})

	a.undoBtn = newIconButtonWithTooltip(theme.ContentUndoIcon(), "Undo", a.undo)
	a.redoBtn = newIconButtonWithTooltip(theme.ContentRedoIcon(), "Redo", a.redo)
	a.orientBtn = newIconButtonWithTooltip(theme.ViewRefreshIcon(), "Toggle portrait / landscape", a.toggleOrientation)

	a.selectionBtns = []*ttwidget.Button{
		newIconButtonWithTooltip(theme.ContentCopyIcon(), "Duplicate selected item", a.duplicateSelected),
		newIconButtonWithTooltip(theme.MediaReplayIcon(), "Rotate selected item", a.rotateSelected),
		newIconButtonWithTooltip(theme.ZoomInIcon(), "Scale selected item", a.showScaleDialog),
		newIconButtonWithTooltip(theme.DeleteIcon(), "Delete selected item", a.deleteSelected),
	}

	a.guidesCheck = widget.NewCheck("Guides in PDF", nil)
	a.guidesCheck.SetChecked(true)

	objs := []fyne.CanvasObject{
		newIconButtonWithTooltip(theme.DocumentCreateIcon(), "New project", a.newProject),
		newIconButtonWithTooltip(theme.FolderOpenIcon(), "Open project", a.loadProject),
		newIconButtonWithTooltip(theme.DocumentSaveIcon(), "Save project", a.saveProject),
		widget.NewSeparator(),
		newIconButtonWithTooltip(theme.ContentAddIcon(), "Import images, symbols or item lists", a.importItems),
		newIconButtonWithTooltip(theme.DocumentIcon(), "Add text", a.showAddTextDialog),
		newIconButtonWithTooltip(theme.GridIcon(), "Add QR code", a.showAddQRDialog),
		widget.NewSeparator(),
		a.undoBtn, a.redoBtn,
		widget.NewSeparator(),
	}
	for _, b := range a.selectionBtns {
		objs = append(objs, b)
	}
	objs = append(objs,
		widget.NewSeparator(),
		widget.NewLabel("Sheet"), a.presetSelect, a.orientBtn,
		newIconButtonWithTooltip(theme.SettingsIcon(), "Sheet margins", a.showMarginsDialog),
		layout.NewSpacer(),
		widget.NewButtonWithIcon("Fill Sheet", theme.ViewFullScreenIcon(), a.fillSheet),
		a.guidesCheck,
		newIconButtonWithTooltip(theme.DownloadIcon(), "Export PDF", a.exportPDF),
	)
	return container.NewHBox(objs...)
}

// ─── Items Panel ───────────────────────────────────────────

func (a *App) buildItemsPanel() fyne.CanvasObject {
	a.itemList = widget.NewList(
		func() int { return len(a.listItems) },
		func() fyne.CanvasObject {
			return container.NewHBox(widget.NewLabel("Kind"), widget.NewLabel("Label"), layout.NewSpacer(), widget.NewLabel("0 x 0"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			box := obj.(*fyne.Container)
			it := a.listItems[id]
			w, h := it.Footprint()
			box.Objects[0].(*widget.Label).SetText(it.Kind.String())
			box.Objects[1].(*widget.Label).SetText(it.Label)
			box.Objects[3].(*widget.Label).SetText(fmt.Sprintf("%.1f x %.1f", w, h))
		},
	)
	a.itemList.OnSelected = func(id widget.ListItemID) {
		if id < len(a.listItems) && a.sheetCanvas.Selected() != a.listItems[id].ID {
			a.sheetCanvas.Select(a.listItems[id].ID)
		}
	}

	return container.NewBorder(
		widget.NewLabelWithStyle("Items", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		nil, nil, nil,
		a.itemList,
	)
}

// refresh redraws everything from the workspace. It must run on the UI thread.
func (a *App) refresh() {
	if a.sheetCanvas == nil || a.busy {
		return
	}
	p := a.ws.Project()
	a.listItems = p.Items
	a.sheetCanvas.SetContent(p.Sheet, p.Items, a.ws.Decorations())
	a.itemList.Refresh()

	a.presetSelect.Options = model.GetPresetNames()
	a.presetSelect.SetSelected(p.Sheet.Preset)

	w, h := p.Sheet.Dimensions()
	a.statusLabel.SetText(fmt.Sprintf("%s | %s %s %.0f x %.0f mm | %d items | %.1f%% coverage",
		p.Name, p.Sheet.Preset, p.Sheet.Orientation, w, h, len(p.Items), p.Coverage()))
	a.window.SetTitle("PrintSheet - " + p.Name)

	setEnabled(a.undoBtn, a.ws.CanUndo())
	setEnabled(a.redoBtn, a.ws.CanRedo())
	a.updateSelectionButtons()
}

func (a *App) updateSelectionButtons() {
	on := a.sheetCanvas.Selected() != "" && !a.busy
	for _, b := range a.selectionBtns {
		setEnabled(b, on)
	}
}

func setEnabled(b *ttwidget.Button, on bool) {
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}

// ─── Actions ───────────────────────────────────────────────

func (a *App) undo() {
	if a.busy || !a.ws.CanUndo() {
		return
	}
	if err := a.ws.Undo(context.Background()); err != nil {
		dialog.ShowError(err, a.window)
	}
}

func (a *App) redo() {
	if a.busy || !a.ws.CanRedo() {
		return
	}
	if err := a.ws.Redo(context.Background()); err != nil {
		dialog.ShowError(err, a.window)
	}
}

func (a *App) fillSheet() {
	if a.busy {
		return
	}
	if len(a.listItems) == 0 {
		dialog.ShowInformation("Nothing to fill", "Add at least one item first.", a.window)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := dialog.NewCustom("Filling Sheet", "Stop",
		container.NewVBox(widget.NewLabel("Placing copies of every item..."), widget.NewProgressBarInfinite()),
		a.window)
	d.SetOnClosed(cancel)
	a.setBusy(true)
	d.Show()

	go func() {
		res, err := a.ws.FillSheet(ctx)
		fyne.Do(func() {
			d.Hide()
			a.setBusy(false)
			a.refresh()
			switch {
			case errors.Is(err, engine.ErrNothingFits):
				dialog.ShowInformation("Nothing Fits", "None of the items fit inside the safe area.", a.window)
			case errors.Is(err, context.Canceled):
				a.statusLabel.SetText(fmt.Sprintf("Fill stopped after %d copies", res.Clones))
			case err != nil:
				dialog.ShowError(err, a.window)
			case res.Warning() != "":
				dialog.ShowInformation("Fill Complete",
					fmt.Sprintf("Added %d copies.\n\n%s.", res.Clones, res.Warning()), a.window)
			}
		})
	}()
}

func (a *App) setBusy(on bool) {
	a.busy = on
	a.updateSelectionButtons()
}

func (a *App) toggleOrientation() {
	if a.busy {
		return
	}
	if moved := a.ws.ToggleOrientation(); moved > 0 {
		a.logger.Info("items reflowed", "moved", moved)
	}
}

func (a *App) applySheet(sheet model.SheetSettings) {
	if _, err := a.ws.SetSheet(sheet); err != nil {
		dialog.ShowError(err, a.window)
	}
}

func (a *App) selected() string {
	if a.busy {
		return ""
	}
	return a.sheetCanvas.Selected()
}

func (a *App) duplicateSelected() {
	id := a.selected()
	if id == "" {
		return
	}
	ok, err := a.ws.Duplicate(context.Background(), id)
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	if !ok {
		dialog.ShowInformation("No Room", "The copy did not fit and was centered on the sheet.", a.window)
	}
}

func (a *App) rotateSelected() {
	if id := a.selected(); id != "" {
		if err := a.ws.RotateItem(id); err != nil {
			dialog.ShowError(err, a.window)
		}
	}
}

func (a *App) deleteSelected() {
	id := a.selected()
	if id == "" {
		return
	}
	if err := a.ws.RemoveItem(id); err != nil {
		dialog.ShowError(err, a.window)
	}
	a.sheetCanvas.Select("")
}

func (a *App) deleteAll() {
	if a.busy || len(a.listItems) == 0 {
		return
	}
	dialog.ShowConfirm("Delete All", "Remove every item from the sheet?", func(ok bool) {
		if ok {
			a.ws.DeleteAll()
		}
	}, a.window)
}

func (a *App) showScaleDialog() {
	id := a.selected()
	if id == "" {
		return
	}
	it, ok := a.ws.Item(id)
	if !ok {
		return
	}
	entry := widget.NewEntry()
	entry.SetText(strconv.FormatFloat(it.Scale*100, 'f', -1, 64))
	dialog.ShowForm("Scale "+it.Label, "Apply", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Scale (%)", entry)},
		func(ok bool) {
			if !ok {
				return
			}
			pct, err := strconv.ParseFloat(strings.TrimSpace(entry.Text), 64)
			if err != nil {
				dialog.ShowError(fmt.Errorf("invalid scale %q", entry.Text), a.window)
				return
			}
			if err := a.ws.ScaleItem(id, pct/100); err != nil {
				dialog.ShowError(err, a.window)
			}
		}, a.window)
}

func (a *App) showAddTextDialog() {
	if a.busy {
		return
	}
	text := widget.NewMultiLineEntry()
	text.SetPlaceHolder("Text to print")
	size := widget.NewEntry()
	size.SetText(strconv.FormatFloat(importer.DefaultOptions().FontSize, 'f', -1, 64))

	dialog.ShowForm("Add Text", "Add", "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Text", text),
			widget.NewFormItem("Font Size (pt)", size),
		},
		func(ok bool) {
			if !ok || strings.TrimSpace(text.Text) == "" {
				return
			}
			pt, err := strconv.ParseFloat(strings.TrimSpace(size.Text), 64)
			if err != nil || pt <= 0 {
				dialog.ShowError(fmt.Errorf("invalid font size %q", size.Text), a.window)
				return
			}
			a.addItem(importer.NewTextItem(text.Text, pt))
		}, a.window)
}

func (a *App) showAddQRDialog() {
	if a.busy {
		return
	}
	payload := widget.NewEntry()
	payload.SetPlaceHolder("https://")
	size := widget.NewEntry()
	size.SetText(strconv.FormatFloat(importer.DefaultOptions().QRSize, 'f', -1, 64))

	dialog.ShowForm("Add QR Code", "Add", "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Content", payload),
			widget.NewFormItem("Size (mm)", size),
		},
		func(ok bool) {
			if !ok {
				return
			}
			mm, err := strconv.ParseFloat(strings.TrimSpace(size.Text), 64)
			if err != nil || mm <= 0 {
				dialog.ShowError(fmt.Errorf("invalid size %q", size.Text), a.window)
				return
			}
			it, err := importer.NewQRItem(strings.TrimSpace(payload.Text), mm)
			if err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			a.addItem(it)
		}, a.window)
}

func (a *App) addItem(it *model.Item) {
	if !a.ws.AddItem(it) {
		dialog.ShowInformation("No Room",
			fmt.Sprintf("%s did not fit and was centered on the sheet.", it.Label), a.window)
	}
	a.sheetCanvas.Select(it.ID)
}

func (a *App) showMarginsDialog() {
	if a.busy {
		return
	}
	sheet := a.ws.Sheet()
	bleed := floatEntry(sheet.Bleed)
	padding := floatEntry(sheet.Padding)
	gutter := floatEntry(sheet.Gutter)

	dialog.ShowForm("Sheet Margins", "Apply", "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Bleed (mm)", bleed),
			widget.NewFormItem("Padding (mm)", padding),
			widget.NewFormItem("Gutter (mm)", gutter),
		},
		func(ok bool) {
			if !ok {
				return
			}
			vals, err := parseNonNegative(bleed.Text, padding.Text, gutter.Text)
			if err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			sheet.Bleed, sheet.Padding, sheet.Gutter = vals[0], vals[1], vals[2]
			a.applySheet(sheet)
		}, a.window)
}

func floatEntry(v float64) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(strconv.FormatFloat(v, 'f', -1, 64))
	return e
}

func parseNonNegative(texts ...string) ([]float64, error) {
	vals := make([]float64, len(texts))
	for i, t := range texts {
		v, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid value %q: must be a number >= 0", t)
		}
		vals[i] = v
	}
	return vals, nil
}

// ─── Project Files ─────────────────────────────────────────

func (a *App) newProject() {
	if a.busy {
		return
	}
	p := model.NewProject()
	p.Sheet = a.newSheet()
	if err := a.ws.LoadProject(context.Background(), p); err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.projectPath = ""
}

func (a *App) saveProject() {
	if a.projectPath == "" {
		a.saveProjectAs()
		return
	}
	a.writeProject(a.projectPath)
}

func (a *App) saveProjectAs() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		a.writeProject(path)
	}, a.window)
	d.SetFileName(a.ws.Name() + project.FileExtension)
	d.Show()
}

func (a *App) writeProject(path string) {
	if a.ws.Name() == model.NewProject().Name {
		a.ws.SetName(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}
	saved, err := project.Save(path, a.ws.Project())
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.projectPath = saved
	a.rememberRecent(saved)
}

func (a *App) loadProject() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		a.openProjectFile(path)
	}, a.window)
	d.Show()
}

func (a *App) openProjectFile(path string) {
	if a.busy {
		return
	}
	p, err := project.Load(path)
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	if err := a.ws.LoadProject(context.Background(), p); err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.projectPath = path
	a.rememberRecent(path)
}

func (a *App) rememberRecent(path string) {
	a.config.AddRecent(path)
	if err := a.saveConfig(); err != nil {
		a.logger.Warn("failed to save config", "err", err)
	}
	a.window.SetMainMenu(a.mainMenu())
}

// ─── Import / Export ───────────────────────────────────────

func (a *App) importItems() {
	if a.busy {
		return
	}
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		opts := importer.DefaultOptions()
		opts.DPI = a.config.DefaultDPI
		a.handleImportResult(importer.ImportFile(path, opts))
	}, a.window)
}

func (a *App) handleImportResult(result importer.ImportResult) {
	if len(result.Errors) > 0 {
		errorMsg := "Errors encountered during import:\n\n" + strings.Join(result.Errors, "\n")
		dialog.ShowError(errors.New(errorMsg), a.window)
	}
	if len(result.Warnings) > 0 {
		a.logger.Info("import warnings", "warnings", result.Warnings)
	}
	if len(result.Items) == 0 {
		return
	}

	placed, failed := a.ws.AddItems(result.Items)
	msg := fmt.Sprintf("Imported %d items.", placed+failed)
	if failed > 0 {
		msg += fmt.Sprintf("\n\n%d did not fit and were centered on the sheet.", failed)
	}
	if len(result.Errors) > 0 {
		msg += fmt.Sprintf("\n\n%d rows had errors and were skipped.", len(result.Errors))
	}
	dialog.ShowInformation("Import Complete", msg, a.window)
}

func (a *App) exportPDF() {
	if len(a.listItems) == 0 {
		dialog.ShowInformation("Nothing to export", "Add at least one item first.", a.window)
		return
	}
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		opts := export.PDFOptions{Guides: a.guidesCheck.Checked}
		warnings, err := export.ExportPDF(path, a.ws.Project(), opts)
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		msg := fmt.Sprintf("PDF saved to %s", path)
		if len(warnings) > 0 {
			msg += "\n\nSome items were drawn as placeholders:\n" + strings.Join(warnings, "\n")
		}
		dialog.ShowInformation("Export Complete", msg, a.window)
	}, a.window)
	d.SetFileName(a.ws.Name() + ".pdf")
	d.Show()
}

func (a *App) exportReport() {
	if len(a.listItems) == 0 {
		dialog.ShowInformation("Nothing to export", "Add at least one item first.", a.window)
		return
	}
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if err := export.ExportReport(path, a.ws.Project()); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		dialog.ShowInformation("Export Complete", fmt.Sprintf("Report saved to %s", path), a.window)
	}, a.window)
	d.SetFileName(a.ws.Name() + ".xlsx")
	d.Show()
}
