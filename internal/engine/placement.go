package engine

import (
	"sort"

	"github.com/piwi3910/PrintSheet/internal/model"
)

// fitTolerance lets an item that matches a free rect exactly still fit
// despite floating point noise.
const fitTolerance = 0.001

// Item is anything the engine can position on the sheet.
type Item interface {
	// BoundingBox returns the current sheet-space box of the item.
	BoundingBox() model.Rect
	// SetPosition moves the item's geometric center to (cx, cy).
	SetPosition(cx, cy float64)
}

// Place finds a free slot for item inside safe that keeps at least gutter
// between it and every box in others, and moves the item there.
//
// Free rects are tried in reading order (top, then left) and the item is
// pushed flush into the top-left corner of the first one it fits. When no
// rect is large enough the item is centered on the safe area, accepting an
// overlap, and Place returns false.
func Place(item Item, safe model.Rect, others []Item, gutter float64) bool {
	box := item.BoundingBox()
	w, h := box.Width(), box.Height()

	cx, cy := safe.Center()
	if safe.Empty() || w <= 0 || h <= 0 {
		item.SetPosition(cx, cy)
		return false
	}

	occupied := make([]model.Rect, 0, len(others))
	for _, o := range others {
		occupied = append(occupied, o.BoundingBox())
	}

	slot, ok := findSlot(ComputeFreeSpace(safe, occupied, gutter), w, h)
	if !ok {
		item.SetPosition(cx, cy)
		return false
	}

	item.SetPosition(slot.Left+w/2, slot.Top+h/2)
	return true
}

// findSlot returns the first free rect in (top, left) order that can hold
// a w x h footprint.
func findSlot(free []model.Rect, w, h float64) (model.Rect, bool) {
	sort.SliceStable(free, func(i, j int) bool {
		if free[i].Top != free[j].Top {
			return free[i].Top < free[j].Top
		}
		return free[i].Left < free[j].Left
	})

	for _, r := range free {
		if w <= r.Width()+fitTolerance && h <= r.Height()+fitTolerance {
			return r, true
		}
	}
	return model.Rect{}, false
}

// fitsAtAll reports whether a box of the given size could ever fit in safe.
func fitsAtAll(box, safe model.Rect) bool {
	return box.Width() <= safe.Width()+fitTolerance && box.Height() <= safe.Height()+fitTolerance
}
