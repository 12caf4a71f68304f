package engine

import (
	"math"

	"github.com/piwi3910/PrintSheet/internal/model"
)

// minSliver is the smallest width or height (mm) a free rect may have.
// Anything thinner cannot hold a useful item and only bloats the list.
const minSliver = 1.0

// Intersect returns the overlap of a and b, or false if it is empty.
func Intersect(a, b model.Rect) (model.Rect, bool) {
	r := model.Rect{
		Left:   math.Max(a.Left, b.Left),
		Top:    math.Max(a.Top, b.Top),
		Right:  math.Min(a.Right, b.Right),
		Bottom: math.Min(a.Bottom, b.Bottom),
	}
	if r.Empty() {
		return model.Rect{}, false
	}
	return r, true
}

// Clamp restricts rect to bounds, returning false if nothing is left.
func Clamp(rect, bounds model.Rect) (model.Rect, bool) {
	return Intersect(rect, bounds)
}

// Subtract removes blocker from free and returns the maximal remainders
// (left, right, top and bottom strips, each spanning the full extent of
// free along its axis). The strips may overlap each other. If the two do
// not share positive area, free is returned unchanged.
func Subtract(free, blocker model.Rect) []model.Rect {
	cut, ok := Intersect(free, blocker)
	if !ok {
		return []model.Rect{free}
	}

	result := make([]model.Rect, 0, 4)

	// Left strip (full height of free)
	if cut.Left > free.Left {
		result = appendIfUsable(result, model.Rect{
			Left: free.Left, Top: free.Top,
			Right: cut.Left, Bottom: free.Bottom,
		})
	}
	// Right strip (full height of free)
	if cut.Right < free.Right {
		result = appendIfUsable(result, model.Rect{
			Left: cut.Right, Top: free.Top,
			Right: free.Right, Bottom: free.Bottom,
		})
	}
	// Top strip (full width of free)
	if cut.Top > free.Top {
		result = appendIfUsable(result, model.Rect{
			Left: free.Left, Top: free.Top,
			Right: free.Right, Bottom: cut.Top,
		})
	}
	// Bottom strip (full width of free)
	if cut.Bottom < free.Bottom {
		result = appendIfUsable(result, model.Rect{
			Left: free.Left, Top: cut.Bottom,
			Right: free.Right, Bottom: free.Bottom,
		})
	}

	return result
}

func appendIfUsable(rects []model.Rect, r model.Rect) []model.Rect {
	if r.Width() <= minSliver || r.Height() <= minSliver {
		return rects
	}
	return append(rects, r)
}

// Prune removes any rect that is fully contained within another.
// Of two identical rects only the first survives.
func Prune(rects []model.Rect) []model.Rect {
	if len(rects) <= 1 {
		return rects
	}
	kept := make([]model.Rect, 0, len(rects))
	for i, a := range rects {
		contained := false
		for j, b := range rects {
			if i == j || !b.Contains(a) {
				continue
			}
			// Equal rects contain each other; keep the earlier one.
			if a.Contains(b) && j > i {
				continue
			}
			contained = true
			break
		}
		if !contained {
			kept = append(kept, a)
		}
	}
	return kept
}
