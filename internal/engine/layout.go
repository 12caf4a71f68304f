package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/piwi3910/PrintSheet/internal/model"
)

var (
	// ErrNothingToFill is returned by FillSheet when the surface is empty.
	ErrNothingToFill = errors.New("nothing to fill: the sheet has no items")
	// ErrNothingFits is returned by FillSheet when no item fits even once.
	ErrNothingFits = errors.New("no item fits inside the safe area")
)

// Placeable is an Item that can also be compared for identity, which the
// engine needs to tell an item apart from its neighbours.
type Placeable interface {
	comparable
	Item
}

// Surface is the live design surface the engine arranges items on.
// Items must not include bleed or guide decorations.
type Surface[T Placeable] interface {
	Items() []T
	Add(item T)
	Remove(item T)
	Has(item T) bool
	Size() (width, height float64)
}

// CloneFunc produces a copy of anchor. It may block (decoding, I/O) and
// is always called without the engine lock held.
type CloneFunc[T Placeable] func(ctx context.Context, anchor T) (T, error)

// Config holds the margins the engine places against.
type Config struct {
	Bleed   float64 // mm trimmed off every edge
	Padding float64 // mm kept clear inside the bleed
	Gutter  float64 // mm kept clear between items
}

// ConfigFromSheet extracts the engine config from sheet settings.
func ConfigFromSheet(s model.SheetSettings) Config {
	return Config{Bleed: s.Bleed, Padding: s.Padding, Gutter: s.Gutter}
}

// LayoutEngine places, tiles and reflows items on a Surface.
// All surface mutations made by the engine happen under one mutex, so two
// placements never compute against the same snapshot of items.
type LayoutEngine[T Placeable] struct {
	mu      sync.Mutex
	surface Surface[T]
	cfg     Config
	logger  *slog.Logger
}

func NewLayoutEngine[T Placeable](surface Surface[T], cfg Config, logger *slog.Logger) *LayoutEngine[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &LayoutEngine[T]{
		surface: surface,
		cfg:     cfg,
		logger:  logger,
	}
}

// SetConfig replaces the margins used for subsequent placements.
func (e *LayoutEngine[T]) SetConfig(cfg Config) {
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
}

// Config returns the current margins.
func (e *LayoutEngine[T]) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// SafeArea returns the placement rectangle for the surface's current size.
func (e *LayoutEngine[T]) SafeArea() model.Rect {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.safeAreaLocked()
}

func (e *LayoutEngine[T]) safeAreaLocked() model.Rect {
	w, h := e.surface.Size()
	return model.SafeArea(w, h, e.cfg.Bleed, e.cfg.Padding)
}

// othersLocked returns every surface item except item, as engine Items.
func (e *LayoutEngine[T]) othersLocked(item T) []Item {
	all := e.surface.Items()
	others := make([]Item, 0, len(all))
	for _, o := range all {
		if o != item {
			others = append(others, o)
		}
	}
	return others
}

// placeLocked adds item to the surface and places it against everything
// already there.
func (e *LayoutEngine[T]) placeLocked(item T, safe model.Rect) bool {
	e.surface.Add(item)
	return Place(item, safe, e.othersLocked(item), e.cfg.Gutter)
}

// PlaceNew adds a new item to the surface in the first free slot.
// It returns false when the item had to be centered over other items.
func (e *LayoutEngine[T]) PlaceNew(item T) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	ok := e.placeLocked(item, e.safeAreaLocked())
	if !ok {
		e.logger.Warn("no free slot, item centered on the sheet", "item", item)
	}
	return ok
}

// FillResult summarises a FillSheet run.
type FillResult[T Placeable] struct {
	Placed []T // Originals that found a slot
	Failed []T // Originals left at the centered fallback
	Clones int // Clones that were kept
	Rounds int // Clone rounds run, including the final empty one
}

// Warning returns a user-facing summary of originals that did not fit,
// or an empty string when all of them did.
func (r FillResult[T]) Warning() string {
	switch len(r.Failed) {
	case 0:
		return ""
	case 1:
		return "1 item could not be placed"
	default:
		return fmt.Sprintf("%d items could not be placed", len(r.Failed))
	}
}

// FillSheet re-arranges the current items and then tiles clones of every
// item that fitted until a whole round places nothing new.
//
// Only the originals act as clone anchors, so each round adds at most one
// copy per original. Every kept clone consumes free area, which guarantees
// the loop ends. A clone whose anchor has left the surface by the time the
// clone resolves is dropped. Cancelling ctx stops the loop; clones placed so
// far stay on the surface.
func (e *LayoutEngine[T]) FillSheet(ctx context.Context, clone CloneFunc[T]) (FillResult[T], error) {
	var res FillResult[T]

	e.mu.Lock()
	originals := e.surface.Items()
	if len(originals) == 0 {
		e.mu.Unlock()
		return res, ErrNothingToFill
	}

	safe := e.safeAreaLocked()
	for _, it := range originals {
		e.surface.Remove(it)
	}
	for _, it := range originals {
		if e.placeLocked(it, safe) {
			res.Placed = append(res.Placed, it)
		} else {
			res.Failed = append(res.Failed, it)
		}
	}
	e.mu.Unlock()

	if len(res.Placed) == 0 {
		return res, ErrNothingFits
	}
	if len(res.Failed) > 0 {
		e.logger.Warn("fill: originals left at fallback position", "count", len(res.Failed))
	}

	for {
		res.Rounds++
		added := 0
		for _, anchor := range res.Placed {
			if err := ctx.Err(); err != nil {
				return res, err
			}

			cl, err := clone(ctx, anchor)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return res, ctxErr
				}
				e.logger.Warn("fill: clone failed, skipping", "anchor", anchor, "error", err)
				continue
			}

			if e.commitClone(anchor, cl) {
				added++
				res.Clones++
			}
		}
		if added == 0 {
			break
		}
	}

	e.logger.Info("fill complete", "originals", len(res.Placed), "clones", res.Clones, "rounds", res.Rounds)
	return res, nil
}

// commitClone places a resolved clone, or discards it if there is no room
// or its anchor is gone. It runs as one critical section.
func (e *LayoutEngine[T]) commitClone(anchor, cl T) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.surface.Has(anchor) {
		e.logger.Debug("fill: anchor removed while cloning, dropping clone", "anchor", anchor)
		return false
	}

	if e.placeLocked(cl, e.safeAreaLocked()) {
		return true
	}
	e.surface.Remove(cl)
	return false
}

// Reflow re-places every item that is no longer fully inside the safe area,
// typically after an orientation or sheet size change, and returns how many
// items were moved.
//
// Displaced items are placed one at a time against the items that stayed
// plus those already re-placed. Items that cannot fit stay at the centered
// fallback. An item too large for the safe area that already sits at its
// center is left alone, so a second Reflow without a size change is a no-op.
func (e *LayoutEngine[T]) Reflow() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	safe := e.safeAreaLocked()
	var out []T
	for _, it := range e.surface.Items() {
		box := it.BoundingBox()
		if safe.Contains(box) || parkedAtCenter(box, safe) {
			continue
		}
		out = append(out, it)
	}
	if len(out) == 0 {
		return 0
	}

	for _, it := range out {
		e.surface.Remove(it)
	}
	for _, it := range out {
		if !e.placeLocked(it, safe) {
			e.logger.Warn("reflow: item does not fit, centered on the sheet", "item", it)
		}
	}

	e.logger.Info("reflow complete", "moved", len(out))
	return len(out)
}

// parkedAtCenter reports whether box is an oversized item that already sits
// at the fallback position for safe.
func parkedAtCenter(box, safe model.Rect) bool {
	if fitsAtAll(box, safe) && !safe.Empty() {
		return false
	}
	bx, by := box.Center()
	sx, sy := safe.Center()
	return math.Abs(bx-sx) <= fitTolerance && math.Abs(by-sy) <= fitTolerance
}
