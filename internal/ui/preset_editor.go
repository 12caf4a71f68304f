package ui

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/PrintSheet/internal/model"
	"github.com/piwi3910/PrintSheet/internal/project"
)

// showPresetManager lists built-in and custom sheet sizes and lets users
// add, edit and delete the custom ones.
func (a *App) showPresetManager() {
	w := a.app.NewWindow("Sheet Presets")
	w.Resize(fyne.NewSize(600, 420))

	presets := model.AllPresets()
	selectedIdx := -1

	name := widget.NewEntry()
	desc := widget.NewEntry()
	width := widget.NewEntry()
	height := widget.NewEntry()
	form := widget.NewForm(
		widget.NewFormItem("Name", name),
		widget.NewFormItem("Description", desc),
		widget.NewFormItem("Width (mm)", width),
		widget.NewFormItem("Height (mm)", height),
	)

	list := widget.NewList(
		func() int { return len(presets) },
		func() fyne.CanvasObject {
			return container.NewHBox(
				widget.NewIcon(theme.DocumentIcon()),
				widget.NewLabel("Preset Name"),
				layout.NewSpacer(),
				widget.NewLabel("(built-in)"),
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			box := obj.(*fyne.Container)
			p := presets[id]
			box.Objects[1].(*widget.Label).SetText(fmt.Sprintf("%s  %.1f x %.1f", p.Name, p.Width, p.Height))
			if p.IsBuiltIn {
				box.Objects[3].(*widget.Label).SetText("(built-in)")
			} else {
				box.Objects[3].(*widget.Label).SetText("(custom)")
			}
		},
	)

	deleteBtn := widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), nil)
	deleteBtn.Disable()

	reload := func() {
		presets = model.AllPresets()
		selectedIdx = -1
		list.UnselectAll()
		list.Refresh()
		deleteBtn.Disable()
		a.refresh()
	}

	list.OnSelected = func(id widget.ListItemID) {
		selectedIdx = id
		p := presets[id]
		name.SetText(p.Name)
		desc.SetText(p.Description)
		width.SetText(strconv.FormatFloat(p.Width, 'f', -1, 64))
		height.SetText(strconv.FormatFloat(p.Height, 'f', -1, 64))
		if p.IsBuiltIn {
			deleteBtn.Disable()
		} else {
			deleteBtn.Enable()
		}
	}

	saveBtn := widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), func() {
		wv, errW := strconv.ParseFloat(strings.TrimSpace(width.Text), 64)
		hv, errH := strconv.ParseFloat(strings.TrimSpace(height.Text), 64)
		if errW != nil || errH != nil {
			dialog.ShowError(fmt.Errorf("width and height must be numbers"), w)
			return
		}
		p := model.SheetPreset{
			Name:        strings.TrimSpace(name.Text),
			Description: strings.TrimSpace(desc.Text),
			Width:       wv,
			Height:      hv,
		}
		updated, err := project.UpsertPreset(model.CustomPresets, p)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if err := a.storePresets(updated); err != nil {
			dialog.ShowError(err, w)
			return
		}
		reload()
	})

	deleteBtn.OnTapped = func() {
		if selectedIdx < 0 || presets[selectedIdx].IsBuiltIn {
			return
		}
		target := presets[selectedIdx].Name
		dialog.ShowConfirm("Delete Preset", fmt.Sprintf("Delete the sheet preset %q?", target), func(ok bool) {
			if !ok {
				return
			}
			updated, _ := project.RemovePreset(model.CustomPresets, target)
			if err := a.storePresets(updated); err != nil {
				dialog.ShowError(err, w)
				return
			}
			reload()
		}, w)
	}

	newBtn := widget.NewButtonWithIcon("New", theme.ContentAddIcon(), func() {
		list.UnselectAll()
		selectedIdx = -1
		deleteBtn.Disable()
		for _, e := range []*widget.Entry{name, desc, width, height} {
			e.SetText("")
		}
	})

	right := container.NewBorder(nil,
		container.NewHBox(newBtn, layout.NewSpacer(), deleteBtn, saveBtn),
		nil, nil, form)
	split := container.NewHSplit(list, right)
	split.SetOffset(0.45)

	w.SetContent(split)
	w.Show()
}

// storePresets persists custom presets and installs them.
func (a *App) storePresets(presets []model.SheetPreset) error {
	if err := project.SaveCustomPresets(a.presetsPath, presets); err != nil {
		return fmt.Errorf("failed to save presets: %w", err)
	}
	model.CustomPresets = presets
	return nil
}
