package model

// Default history behaviour.
const (
	DefaultMaxHistory     = 20
	DefaultDebounceMillis = 150
)

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Defaults applied to new projects
	DefaultPreset      string      `json:"default_preset"`
	DefaultOrientation Orientation `json:"default_orientation"`
	DefaultBleed       float64     `json:"default_bleed"`
	DefaultPadding     float64     `json:"default_padding"`
	DefaultGutter      float64     `json:"default_gutter"`
	DefaultDPI         float64     `json:"default_dpi"` // Used to size imported raster images

	// History
	MaxHistory     int `json:"max_history"`
	DebounceMillis int `json:"debounce_millis"`

	// Application preferences
	RecentProjects []string `json:"recent_projects"`
	Theme          string   `json:"theme"` // "light", "dark", "system"
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching the values from DefaultSheet().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSheet()
	return AppConfig{
		DefaultPreset:      defaults.Preset,
		DefaultOrientation: defaults.Orientation,
		DefaultBleed:       defaults.Bleed,
		DefaultPadding:     defaults.Padding,
		DefaultGutter:      defaults.Gutter,
		DefaultDPI:         300,
		MaxHistory:         DefaultMaxHistory,
		DebounceMillis:     DefaultDebounceMillis,
		RecentProjects:     []string{},
		Theme:              "system",
	}
}

// ApplyToSheet copies the default values from AppConfig into a SheetSettings struct.
// This is used when creating a new project so it inherits the user's saved defaults.
func (c AppConfig) ApplyToSheet(s *SheetSettings) {
	if c.DefaultPreset != "" {
		p := GetPreset(c.DefaultPreset)
		s.Preset = p.Name
		s.Width = p.Width
		s.Height = p.Height
	}
	if c.DefaultOrientation != "" {
		s.Orientation = c.DefaultOrientation
	}
	s.Bleed = c.DefaultBleed
	s.Padding = c.DefaultPadding
	s.Gutter = c.DefaultGutter
}

// AddRecent records a project path at the front of the recent list,
// keeping at most ten unique entries.
func (c *AppConfig) AddRecent(path string) {
	recent := []string{path}
	for _, p := range c.RecentProjects {
		if p != path && len(recent) < 10 {
			recent = append(recent, p)
		}
	}
	c.RecentProjects = recent
}
