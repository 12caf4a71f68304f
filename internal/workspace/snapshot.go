package workspace

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/piwi3910/PrintSheet/internal/engine"
	"github.com/piwi3910/PrintSheet/internal/model"
	"github.com/piwi3910/PrintSheet/internal/scene"
)

// snapshot is one history entry: the sheet together with the items laid
// out on it, so undoing a reflow also undoes the sheet change behind it.
type snapshot struct {
	Sheet model.SheetSettings `json:"sheet"`
	Items json.RawMessage     `json:"items"`
}

// stateCodec serializes the workspace for history. It takes w.mu itself.
type stateCodec struct {
	w     *Workspace
	items *scene.Codec
}

func newStateCodec(w *Workspace) *stateCodec {
	// The item codec runs under w.mu, which stateCodec already holds.
	return &stateCodec{w: w, items: scene.NewCodec(w.scene, nil)}
}

func (c *stateCodec) Serialize() (string, error) {
	c.w.mu.Lock()
	defer c.w.mu.Unlock()

	items, err := c.items.Serialize()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(snapshot{Sheet: c.w.sheet, Items: json.RawMessage(items)})
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return string(data), nil
}

// Restore puts back the sheet and items exactly as captured. Items are not
// reflowed. A snapshot that fails to decode leaves the workspace untouched.
func (c *stateCodec) Restore(ctx context.Context, data string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var snap snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	sheet := snap.Sheet
	if err := validateSheet(sheet); err != nil {
		return fmt.Errorf("failed to decode sheet: %w", err)
	}
	items, err := scene.Decode(string(snap.Items))
	if err != nil {
		return err
	}

	c.w.mu.Lock()
	defer c.w.mu.Unlock()
	c.w.sheet = sheet
	width, height := sheet.Dimensions()
	c.w.scene.SetSize(width, height)
	c.w.scene.EnsureDecorations(sheet.Bleed, sheet.Padding)
	c.w.engine.SetConfig(engine.ConfigFromSheet(sheet))
	c.w.scene.Replace(items)
	return nil
}
