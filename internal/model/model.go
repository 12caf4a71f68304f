package model

// Orientation of the print sheet.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

func (o Orientation) String() string {
	if o == Landscape {
		return "Landscape"
	}
	return "Portrait"
}

// Toggle returns the other orientation.
func (o Orientation) Toggle() Orientation {
	if o == Landscape {
		return Portrait
	}
	return Landscape
}

// Default layout constants in mm.
const (
	DefaultBleed   = 3.0 // Trim margin reserved around the sheet edge
	DefaultPadding = 2.0 // Extra inset between the bleed line and placed items
	DefaultGutter  = 2.0 // Minimum gap between placed items
)

// SheetSettings describes the print sheet and its placement margins.
type SheetSettings struct {
	Preset      string      `json:"preset"`
	Width       float64     `json:"width"`  // Portrait width in mm
	Height      float64     `json:"height"` // Portrait height in mm
	Orientation Orientation `json:"orientation"`
	Bleed       float64     `json:"bleed"`   // mm
	Padding     float64     `json:"padding"` // mm
	Gutter      float64     `json:"gutter"`  // mm
}

// Dimensions returns the sheet width and height for the current orientation.
func (s SheetSettings) Dimensions() (float64, float64) {
	if s.Orientation == Landscape {
		return s.Height, s.Width
	}
	return s.Width, s.Height
}

// SafeArea returns the printable region inside the bleed and padding.
func (s SheetSettings) SafeArea() Rect {
	w, h := s.Dimensions()
	return SafeArea(w, h, s.Bleed, s.Padding)
}

// SafeArea computes the placement rectangle for a sheet of w x h.
// The result is degenerate when the inset exceeds half a dimension.
func SafeArea(w, h, bleed, padding float64) Rect {
	inset := bleed + padding
	return Rect{
		Left:   inset,
		Top:    inset,
		Right:  w - inset,
		Bottom: h - inset,
	}
}

// SheetPreset is a named paper size in portrait orientation.
type SheetPreset struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Width       float64 `json:"width"`  // mm
	Height      float64 `json:"height"` // mm
	IsBuiltIn   bool    `json:"-"`
}

// Built-in sheet presets
var SheetPresets = []SheetPreset{
	{Name: "A5", Description: "ISO A5", Width: 148, Height: 210, IsBuiltIn: true},
	{Name: "A4", Description: "ISO A4", Width: 210, Height: 297, IsBuiltIn: true},
	{Name: "A3", Description: "ISO A3", Width: 297, Height: 420, IsBuiltIn: true},
	{Name: "SRA3", Description: "Oversized A3 for full-bleed press work", Width: 320, Height: 450, IsBuiltIn: true},
	{Name: "Letter", Description: "US Letter", Width: 215.9, Height: 279.4, IsBuiltIn: true},
	{Name: "Legal", Description: "US Legal", Width: 215.9, Height: 355.6, IsBuiltIn: true},
	{Name: "Tabloid", Description: "US Tabloid / Ledger", Width: 279.4, Height: 431.8, IsBuiltIn: true},
}

// CustomPresets holds user-defined sheet sizes loaded from disk.
var CustomPresets []SheetPreset

// AllPresets returns built-in presets followed by custom ones.
func AllPresets() []SheetPreset {
	all := make([]SheetPreset, 0, len(SheetPresets)+len(CustomPresets))
	all = append(all, SheetPresets...)
	return append(all, CustomPresets...)
}

// GetPreset returns a sheet preset by name, or A4 if not found.
func GetPreset(name string) SheetPreset {
	for _, p := range AllPresets() {
		if p.Name == name {
			return p
		}
	}
	return SheetPresets[1]
}

// GetPresetNames returns a list of all available preset names.
func GetPresetNames() []string {
	var names []string
	for _, p := range AllPresets() {
		names = append(names, p.Name)
	}
	return names
}

// Settings turns the preset into portrait sheet settings with default margins.
func (p SheetPreset) Settings() SheetSettings {
	return SheetSettings{
		Preset:      p.Name,
		Width:       p.Width,
		Height:      p.Height,
		Orientation: Portrait,
		Bleed:       DefaultBleed,
		Padding:     DefaultPadding,
		Gutter:      DefaultGutter,
	}
}

func DefaultSheet() SheetSettings {
	return GetPreset("A4").Settings()
}

// Project ties everything together for save/load.
type Project struct {
	Name  string        `json:"name"`
	Sheet SheetSettings `json:"sheet"`
	Items []*Item       `json:"items"`
}

func NewProject() Project {
	return Project{
		Name:  "Untitled",
		Sheet: DefaultSheet(),
		Items: []*Item{},
	}
}

// Coverage returns the percentage of the safe area covered by items.
func (p Project) Coverage() float64 {
	safe := p.Sheet.SafeArea()
	total := safe.Area()
	if total == 0 {
		return 0
	}
	var used float64
	for _, it := range p.Items {
		w, h := it.Footprint()
		used += w * h
	}
	return (used / total) * 100.0
}
