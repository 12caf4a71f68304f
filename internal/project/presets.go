package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/PrintSheet/internal/model"
)

// DefaultPresetsPath returns the default file path for custom sheet presets.
func DefaultPresetsPath() string {
	return PresetsPath(DefaultConfigDir())
}

// PresetsPath returns the custom presets file inside dir.
func PresetsPath(dir string) string {
	return filepath.Join(dir, "presets.json")
}

// ValidatePreset checks that a custom preset has a usable name and size and
// does not shadow a built-in one.
func ValidatePreset(p model.SheetPreset) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return errors.New("preset has no name")
	}
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("preset %q must have a positive size", name)
	}
	for _, b := range model.SheetPresets {
		if strings.EqualFold(b.Name, name) {
			return fmt.Errorf("preset %q clashes with a built-in size", name)
		}
	}
	return nil
}

// SaveCustomPresets saves custom presets to a JSON file.
func SaveCustomPresets(path string, presets []model.SheetPreset) error {
	return writeJSON(path, presets)
}

// LoadCustomPresets loads custom presets from a JSON file.
// Returns an empty slice if the file does not exist. Invalid entries are skipped.
func LoadCustomPresets(path string) ([]model.SheetPreset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.SheetPreset{}, nil
		}
		return nil, err
	}

	var raw []model.SheetPreset
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}

	presets := make([]model.SheetPreset, 0, len(raw))
	for _, p := range raw {
		if ValidatePreset(p) != nil {
			continue
		}
		p.IsBuiltIn = false
		presets = append(presets, p)
	}
	return presets, nil
}

// InstallCustomPresets loads presets from path and makes them available
// through model.GetPreset.
func InstallCustomPresets(path string) error {
	presets, err := LoadCustomPresets(path)
	if err != nil {
		return err
	}
	model.CustomPresets = presets
	return nil
}

// UpsertPreset replaces the preset with the same name or appends it.
func UpsertPreset(presets []model.SheetPreset, p model.SheetPreset) ([]model.SheetPreset, error) {
	if err := ValidatePreset(p); err != nil {
		return presets, err
	}
	p.IsBuiltIn = false
	for i := range presets {
		if presets[i].Name == p.Name {
			out := append([]model.SheetPreset(nil), presets...)
			out[i] = p
			return out, nil
		}
	}
	return append(append([]model.SheetPreset(nil), presets...), p), nil
}

// RemovePreset drops the named preset, reporting whether it existed.
func RemovePreset(presets []model.SheetPreset, name string) ([]model.SheetPreset, bool) {
	out := make([]model.SheetPreset, 0, len(presets))
	found := false
	for _, p := range presets {
		if p.Name == name {
			found = true
			continue
		}
		out = append(out, p)
	}
	return out, found
}
