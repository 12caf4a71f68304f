package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// PrintSheetTheme wraps the default Fyne theme with compact sizing and a
// fixed light or dark variant.
type PrintSheetTheme struct {
	base    fyne.Theme
	variant fyne.ThemeVariant
}

func NewPrintSheetTheme() *PrintSheetTheme {
	return &PrintSheetTheme{base: theme.DefaultTheme()}
}

// SetVariant updates the theme variant (light/dark).
func (t *PrintSheetTheme) SetVariant(variant fyne.ThemeVariant) {
	t.variant = variant
}

func (t *PrintSheetTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	return t.base.Color(name, t.variant)
}

func (t *PrintSheetTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *PrintSheetTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

// Size tightens padding and text so the sheet gets most of the window.
func (t *PrintSheetTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 12
	case theme.SizeNameCaptionText:
		return 9
	case theme.SizeNameHeadingText:
		return 18
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameInlineIcon:
		return 18
	default:
		return t.base.Size(name)
	}
}
