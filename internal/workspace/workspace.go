// Package workspace wires the scene, layout engine and history together
// into the operations the UI and CLI call.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/piwi3910/PrintSheet/internal/engine"
	"github.com/piwi3910/PrintSheet/internal/history"
	"github.com/piwi3910/PrintSheet/internal/model"
	"github.com/piwi3910/PrintSheet/internal/scene"
)

var (
	// ErrItemNotFound is returned for operations on an unknown item ID.
	ErrItemNotFound = scene.ErrItemNotFound
	// ErrInvalidScale is returned when a scale factor is not positive.
	ErrInvalidScale = errors.New("scale must be greater than zero")
	// ErrInvalidSheet is returned for sheets without a positive size.
	ErrInvalidSheet = errors.New("sheet width and height must be greater than zero")
)

// Option configures a Workspace.
type Option func(*Workspace)

// WithCloneFunc overrides how FillSheet and Duplicate copy items.
func WithCloneFunc(fn engine.CloneFunc[*model.Item]) Option {
	return func(w *Workspace) {
		if fn != nil {
			w.clone = fn
		}
	}
}

// WithHistoryOptions passes extra options to the history manager, for
// example a UI-thread dispatcher.
func WithHistoryOptions(opts ...history.Option) Option {
	return func(w *Workspace) {
		w.histOpts = append(w.histOpts, opts...)
	}
}

// Workspace is one open project.
//
// mu guards the sheet settings and every item field. Snapshots of the sheet
// and items are taken under mu as well, so a capture never sees a
// half-applied operation.
type Workspace struct {
	mu     sync.Mutex
	name   string
	sheet  model.SheetSettings
	scene  *scene.Scene
	engine *engine.LayoutEngine[*model.Item]
	hist   *history.Manager

	clone    engine.CloneFunc[*model.Item]
	histOpts []history.Option
	logger   *slog.Logger

	lmu       sync.Mutex
	listeners []func()
}

// New creates an empty workspace on sheet. History depth and debounce come
// from cfg.
func New(sheet model.SheetSettings, cfg model.AppConfig, logger *slog.Logger, opts ...Option) (*Workspace, error) {
	if err := validateSheet(sheet); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	w := &Workspace{
		name:   "Untitled",
		sheet:  sheet,
		clone:  scene.CloneAsync,
		logger: logger,
	}
	for _, opt := range opts {
		opt(w)
	}

	width, height := sheet.Dimensions()
	w.scene = scene.New(width, height)
	w.scene.EnsureDecorations(sheet.Bleed, sheet.Padding)
	w.engine = engine.NewLayoutEngine[*model.Item](w.scene, engine.ConfigFromSheet(sheet), logger)

	histOpts := []history.Option{
		history.WithMaxDepth(cfg.MaxHistory),
		history.WithDelay(time.Duration(cfg.DebounceMillis) * time.Millisecond),
		history.WithLogger(logger),
	}
	w.hist = history.New(newStateCodec(w), append(histOpts, w.histOpts...)...)
	w.scene.OnChange(w.hist.NotifyChange)

	if err := w.hist.Init(); err != nil {
		return nil, fmt.Errorf("failed to seed history: %w", err)
	}
	return w, nil
}

func validateSheet(s model.SheetSettings) error {
	if s.Width <= 0 || s.Height <= 0 {
		return ErrInvalidSheet
	}
	return nil
}

// OnChange registers fn to run after every workspace operation. It is
// called without any workspace lock held.
func (w *Workspace) OnChange(fn func()) {
	w.lmu.Lock()
	w.listeners = append(w.listeners, fn)
	w.lmu.Unlock()
}

func (w *Workspace) emit() {
	w.lmu.Lock()
	fns := slices.Clone(w.listeners)
	w.lmu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// AddItem places item in the first free slot. It returns false when the
// item did not fit and was centered on the sheet instead.
func (w *Workspace) AddItem(item *model.Item) bool {
	w.mu.Lock()
	ok := w.engine.PlaceNew(item)
	w.mu.Unlock()

	w.emit()
	return ok
}

// AddItems places items in order as a single undo step.
func (w *Workspace) AddItems(items []*model.Item) (placed, failed int) {
	_ = w.hist.Batch(func() error {
		w.mu.Lock()
		defer w.mu.Unlock()
		for _, it := range items {
			if w.engine.PlaceNew(it) {
				placed++
			} else {
				failed++
			}
		}
		return nil
	})

	w.emit()
	return placed, failed
}

// Duplicate clones the item with the given ID into the first free slot.
func (w *Workspace) Duplicate(ctx context.Context, id string) (bool, error) {
	w.mu.Lock()
	src, ok := w.scene.ItemByID(id)
	if !ok {
		w.mu.Unlock()
		return false, ErrItemNotFound
	}
	cp, err := w.clone(ctx, src)
	if err != nil {
		w.mu.Unlock()
		return false, fmt.Errorf("failed to duplicate %s: %w", id, err)
	}
	placed := w.engine.PlaceNew(cp)
	w.mu.Unlock()

	w.emit()
	return placed, nil
}

// RemoveItem deletes the item with the given ID.
func (w *Workspace) RemoveItem(id string) error {
	w.mu.Lock()
	it, ok := w.scene.ItemByID(id)
	if ok {
		w.scene.Remove(it)
	}
	w.mu.Unlock()

	if !ok {
		return ErrItemNotFound
	}
	w.emit()
	return nil
}

// MoveItem centers the item at (cx, cy). The position is not checked
// against other items.
func (w *Workspace) MoveItem(id string, cx, cy float64) error {
	return w.update(id, func(it *model.Item) { it.SetPosition(cx, cy) })
}

// ScaleItem sets the item's uniform scale about its center.
func (w *Workspace) ScaleItem(id string, scale float64) error {
	if scale <= 0 {
		return ErrInvalidScale
	}
	return w.update(id, func(it *model.Item) { it.Scale = scale })
}

// RotateItem turns the item a quarter turn about its center.
func (w *Workspace) RotateItem(id string) error {
	return w.update(id, func(it *model.Item) { it.Rotated = !it.Rotated })
}

func (w *Workspace) update(id string, fn func(*model.Item)) error {
	w.mu.Lock()
	err := w.scene.Update(id, fn)
	w.mu.Unlock()
	if err != nil {
		return err
	}
	w.emit()
	return nil
}

// DeleteAll clears the sheet as a single undo step.
func (w *Workspace) DeleteAll() {
	_ = w.hist.Batch(func() error {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.scene.Clear()
		return nil
	})
	w.emit()
}

// FillSheet re-arranges the items and tiles copies of them until the sheet
// is full. The whole operation is one undo step, including when ctx is
// cancelled part way.
func (w *Workspace) FillSheet(ctx context.Context) (engine.FillResult[*model.Item], error) {
	var res engine.FillResult[*model.Item]
	err := w.hist.Batch(func() error {
		w.mu.Lock()
		defer w.mu.Unlock()
		var err error
		res, err = w.engine.FillSheet(ctx, w.clone)
		return err
	})

	w.emit()
	return res, err
}

// SetOrientation rotates the sheet and reflows items that no longer fit
// inside the safe area. It returns how many items moved.
func (w *Workspace) SetOrientation(o model.Orientation) int {
	w.mu.Lock()
	same := w.sheet.Orientation == o
	w.mu.Unlock()
	if same {
		return 0
	}

	var moved int
	_ = w.hist.Batch(func() error {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.sheet.Orientation = o
		moved = w.applySheetLocked()
		return nil
	})

	w.logger.Info("orientation changed", "orientation", o, "moved", moved)
	w.emit()
	return moved
}

// ToggleOrientation switches between portrait and landscape.
func (w *Workspace) ToggleOrientation() int {
	return w.SetOrientation(w.Sheet().Orientation.Toggle())
}

// SetSheet replaces the sheet size and margins and reflows displaced items.
func (w *Workspace) SetSheet(sheet model.SheetSettings) (int, error) {
	if err := validateSheet(sheet); err != nil {
		return 0, err
	}

	var moved int
	_ = w.hist.Batch(func() error {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.sheet = sheet
		moved = w.applySheetLocked()
		return nil
	})

	w.emit()
	return moved, nil
}

// applySheetLocked pushes w.sheet into the scene and engine and reflows.
func (w *Workspace) applySheetLocked() int {
	width, height := w.sheet.Dimensions()
	w.scene.SetSize(width, height)
	w.scene.EnsureDecorations(w.sheet.Bleed, w.sheet.Padding)
	w.engine.SetConfig(engine.ConfigFromSheet(w.sheet))
	return w.engine.Reflow()
}

// Undo restores the previous sheet and item set.
func (w *Workspace) Undo(ctx context.Context) error {
	if err := w.hist.Undo(ctx); err != nil {
		return err
	}
	w.emit()
	return nil
}

// Redo re-applies the last undone sheet and item set.
func (w *Workspace) Redo(ctx context.Context) error {
	if err := w.hist.Redo(ctx); err != nil {
		return err
	}
	w.emit()
	return nil
}

func (w *Workspace) CanUndo() bool { return w.hist.CanUndo() }
func (w *Workspace) CanRedo() bool { return w.hist.CanRedo() }

// Flush commits any pending debounced change to history.
func (w *Workspace) Flush() error {
	return w.hist.Flush()
}

// Project returns a detached copy of the workspace for saving or export.
func (w *Workspace) Project() model.Project {
	w.mu.Lock()
	defer w.mu.Unlock()
	return model.Project{
		Name:  w.name,
		Sheet: w.sheet,
		Items: copyItems(w.scene.Items()),
	}
}

// LoadProject replaces the sheet and items with p and starts a fresh
// history.
func (w *Workspace) LoadProject(ctx context.Context, p model.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateSheet(p.Sheet); err != nil {
		return err
	}

	w.mu.Lock()
	w.name = p.Name
	w.sheet = p.Sheet
	width, height := p.Sheet.Dimensions()
	w.scene.SetSize(width, height)
	w.scene.EnsureDecorations(p.Sheet.Bleed, p.Sheet.Padding)
	w.engine.SetConfig(engine.ConfigFromSheet(p.Sheet))
	w.scene.Replace(copyItems(p.Items))
	w.mu.Unlock()

	if err := w.hist.Init(); err != nil {
		return fmt.Errorf("failed to reset history: %w", err)
	}
	w.logger.Info("project loaded", "name", p.Name, "items", len(p.Items))
	w.emit()
	return nil
}

// Items returns copies of the items on the sheet in placement order.
func (w *Workspace) Items() []*model.Item {
	w.mu.Lock()
	defer w.mu.Unlock()
	return copyItems(w.scene.Items())
}

// Item returns a copy of the item with the given ID.
func (w *Workspace) Item(id string) (*model.Item, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	it, ok := w.scene.ItemByID(id)
	if !ok {
		return nil, false
	}
	return copyItem(it), true
}

// Decorations returns the sheet guides.
func (w *Workspace) Decorations() []scene.Decoration {
	return w.scene.Decorations()
}

func (w *Workspace) SafeArea() model.Rect {
	return w.engine.SafeArea()
}

func (w *Workspace) Sheet() model.SheetSettings {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sheet
}

func (w *Workspace) Name() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.name
}

func (w *Workspace) SetName(name string) {
	w.mu.Lock()
	w.name = name
	w.mu.Unlock()
	w.emit()
}

// Close stops the history timer.
func (w *Workspace) Close() {
	w.hist.Close()
}

// copyItem duplicates it keeping its ID.
func copyItem(it *model.Item) *model.Item {
	cp := *it
	if it.Outline != nil {
		cp.Outline = slices.Clone(it.Outline)
	}
	return &cp
}

func copyItems(items []*model.Item) []*model.Item {
	out := make([]*model.Item, len(items))
	for i, it := range items {
		out[i] = copyItem(it)
	}
	return out
}
