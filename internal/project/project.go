package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/piwi3910/PrintSheet/internal/model"
)

// FileExtension is appended to saved projects.
const FileExtension = ".printsheet"

const fileVersion = 1

type projectFile struct {
	Version int           `json:"version"`
	SavedAt string        `json:"saved_at"`
	Project model.Project `json:"project"`
}

// Save writes the project as JSON, adding the .printsheet extension when
// the path has none.
func Save(path string, p model.Project) (string, error) {
	if filepath.Ext(path) == "" {
		path += FileExtension
	}
	if p.Items == nil {
		p.Items = []*model.Item{}
	}
	f := projectFile{
		Version: fileVersion,
		SavedAt: time.Now().UTC().Format(time.RFC3339),
		Project: p,
	}
	if err := writeJSON(path, f); err != nil {
		return "", fmt.Errorf("failed to save project: %w", err)
	}
	return path, nil
}

// Load reads a project saved by Save. Items without an ID get a fresh one
// and duplicate IDs are reassigned so every item stays addressable.
func Load(path string) (model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Project{}, fmt.Errorf("failed to read project: %w", err)
	}
	var f projectFile
	if err := json.Unmarshal(data, &f); err != nil {
		return model.Project{}, fmt.Errorf("failed to parse project: %w", err)
	}
	if f.Version == 0 {
		return model.Project{}, errors.New("invalid project file: missing version field")
	}
	if f.Version > fileVersion {
		return model.Project{}, fmt.Errorf("project file version %d is newer than supported version %d", f.Version, fileVersion)
	}

	p := f.Project
	if strings.TrimSpace(p.Name) == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if p.Sheet.Width <= 0 || p.Sheet.Height <= 0 {
		p.Sheet = model.GetPreset(p.Sheet.Preset).Settings()
	}
	if p.Sheet.Orientation == "" {
		p.Sheet.Orientation = model.Portrait
	}

	items := make([]*model.Item, 0, len(p.Items))
	seen := make(map[string]bool, len(p.Items))
	for _, it := range p.Items {
		if it == nil {
			continue
		}
		if it.ID == "" || seen[it.ID] {
			it.ID = model.NewID()
		}
		if it.Scale <= 0 {
			it.Scale = 1
		}
		seen[it.ID] = true
		items = append(items, it)
	}
	p.Items = items
	return p, nil
}
