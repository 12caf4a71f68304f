package model

// Rect is an axis-aligned rectangle in sheet-local millimetres.
// Y grows downward, so Top < Bottom for any non-degenerate rect.
type Rect struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// NewRect builds a rect from its top-left corner and size.
func NewRect(x, y, w, h float64) Rect {
	return Rect{Left: x, Top: y, Right: x + w, Bottom: y + h}
}

// RectAround builds a rect of the given size centered on (cx, cy).
func RectAround(cx, cy, w, h float64) Rect {
	return Rect{
		Left:   cx - w/2,
		Top:    cy - h/2,
		Right:  cx + w/2,
		Bottom: cy + h/2,
	}
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Area returns zero for degenerate rects.
func (r Rect) Area() float64 {
	if r.Empty() {
		return 0
	}
	return r.Width() * r.Height()
}

// Center returns the centroid.
func (r Rect) Center() (float64, float64) {
	return (r.Left + r.Right) / 2, (r.Top + r.Bottom) / 2
}

// Empty reports whether the rect has zero or negative width or height.
func (r Rect) Empty() bool {
	return r.Right <= r.Left || r.Bottom <= r.Top
}

// Expand grows the rect by d on every side. A negative d shrinks it.
func (r Rect) Expand(d float64) Rect {
	return Rect{
		Left:   r.Left - d,
		Top:    r.Top - d,
		Right:  r.Right + d,
		Bottom: r.Bottom + d,
	}
}

// Translate returns the rect shifted by dx, dy.
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// Contains reports whether inner lies fully inside r (edges may touch).
func (r Rect) Contains(inner Rect) bool {
	return r.Left <= inner.Left+epsilon && r.Top <= inner.Top+epsilon &&
		r.Right >= inner.Right-epsilon && r.Bottom >= inner.Bottom-epsilon
}

// Overlaps reports whether the two rects share positive area.
// Rects that only touch along an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.Left < o.Right-epsilon && r.Right > o.Left+epsilon &&
		r.Top < o.Bottom-epsilon && r.Bottom > o.Top+epsilon
}

// epsilon absorbs floating point noise in containment checks.
const epsilon = 0.001
