package engine

import "github.com/piwi3910/PrintSheet/internal/model"

// ComputeFreeSpace returns the unoccupied rectangles of safe once every
// occupied box, grown by gutter on all sides, has been cut out.
//
// The list is rebuilt from scratch on every call. That costs
// O(boxes x free rects) per placement, which stays small for a single
// print sheet; an incremental structure would only pay off for scenes
// far larger than a sheet normally holds.
func ComputeFreeSpace(safe model.Rect, occupied []model.Rect, gutter float64) []model.Rect {
	if safe.Empty() {
		return nil
	}

	free := []model.Rect{safe}
	for _, box := range occupied {
		blocker, ok := Clamp(box.Expand(gutter), safe)
		if !ok {
			continue
		}

		next := make([]model.Rect, 0, len(free)+3)
		for _, r := range free {
			next = append(next, Subtract(r, blocker)...)
		}
		free = next
		if len(free) == 0 {
			break
		}
	}

	return Prune(free)
}
