package importer

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/piwi3910/PrintSheet/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

const (
	dxfJoinTolerance = 0.01 // mm between endpoints that count as joined
	dxfMinExtent     = 0.01 // mm, smaller shapes are skipped
	arcSteps         = 32
	circleSteps      = 64
)

// edge is a loose LINE or ARC piece waiting to be chained into a closed shape.
type edge struct {
	a, b model.Point2D
}

// ImportDXF imports every closed shape in a DXF drawing as a symbol item.
// LWPOLYLINEs and CIRCLEs are taken as-is; LINEs and ARCs are chained
// end to end. Drawing units are taken as mm and the Y axis is flipped so
// the symbol reads the right way up on the sheet.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var shapes []model.Outline
	var loose []edge
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			if o := polylineOutline(e); len(o) >= 3 {
				shapes = append(shapes, o)
			} else {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
			}
		case *entity.Circle:
			shapes = append(shapes, arcPoints(e.Center[0], e.Center[1], e.Radius, 0, 2*math.Pi, circleSteps, false))
		case *entity.Arc:
			start := e.Angle[0] * math.Pi / 180
			end := e.Angle[1] * math.Pi / 180
			if end <= start {
				end += 2 * math.Pi
			}
			pts := arcPoints(e.Circle.Center[0], e.Circle.Center[1], e.Circle.Radius, start, end, arcSteps, true)
			for i := 1; i < len(pts); i++ {
				loose = append(loose, edge{pts[i-1], pts[i]})
			}
		case *entity.Line:
			loose = append(loose, edge{
				a: model.Point2D{X: e.Start[0], Y: e.Start[1]},
				b: model.Point2D{X: e.End[0], Y: e.End[1]},
			})
		}
	}
	shapes = append(shapes, chainEdges(loose)...)

	if len(shapes) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for i, shape := range shapes {
		outline := toSheetSpace(shape)
		_, max := outline.BoundingBox()
		if max.X < dxfMinExtent || max.Y < dxfMinExtent {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f mm)", max.X, max.Y))
			continue
		}

		label := base
		if len(shapes) > 1 {
			label = fmt.Sprintf("%s #%d", base, i+1)
		}
		it := model.NewItem(model.KindSymbol, label, max.X, max.Y)
		it.Source = path
		it.Outline = outline
		result.Items = append(result.Items, it)
	}

	return result
}

// polylineOutline expands an LWPOLYLINE, turning bulged segments into arcs.
func polylineOutline(lw *entity.LwPolyline) model.Outline {
	n := len(lw.Vertices)
	var out model.Outline
	for i, v := range lw.Vertices {
		p := model.Point2D{X: v[0], Y: v[1]}
		var bulge float64
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) < 1e-9 {
			out = append(out, p)
			continue
		}
		next := lw.Vertices[(i+1)%n]
		arc := bulgeArc(p, model.Point2D{X: next[0], Y: next[1]}, bulge)
		// The arc's last point is the next vertex, which adds itself.
		out = append(out, arc[:len(arc)-1]...)
	}
	return out
}

// bulgeArc interpolates the arc between p and q. A DXF bulge is the tangent
// of a quarter of the included angle; positive bulges turn anticlockwise.
func bulgeArc(p, q model.Point2D, bulge float64) model.Outline {
	dx, dy := q.X-p.X, q.Y-p.Y
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 {
		return model.Outline{p, q}
	}

	sagitta := math.Abs(bulge) * chord / 2
	radius := (chord*chord/(4*sagitta) + sagitta) / 2

	// Center sits on the chord's perpendicular bisector.
	nx, ny := -dy/chord, dx/chord
	if bulge > 0 {
		nx, ny = -nx, -ny
	}
	off := radius - sagitta
	cx := (p.X+q.X)/2 + nx*off
	cy := (p.Y+q.Y)/2 + ny*off

	start := math.Atan2(p.Y-cy, p.X-cx)
	end := math.Atan2(q.Y-cy, q.X-cx)
	if bulge < 0 && end > start {
		end -= 2 * math.Pi
	}
	if bulge > 0 && end < start {
		end += 2 * math.Pi
	}
	return arcPoints(cx, cy, radius, start, end, arcSteps, true)
}

// arcPoints samples a circular arc from start to end radians. With
// inclusive set the end point is emitted too, otherwise the arc is treated
// as a closed loop.
func arcPoints(cx, cy, r, start, end float64, steps int, inclusive bool) model.Outline {
	n := steps
	if inclusive {
		n++
	}
	out := make(model.Outline, n)
	for i := range out {
		a := start + (end-start)*float64(i)/float64(steps)
		out[i] = model.Point2D{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}
	return out
}

// chainEdges links loose edges whose endpoints meet into outlines, largest
// first. Open chains of at least three points are kept as implicitly closed.
func chainEdges(edges []edge) []model.Outline {
	used := make([]bool, len(edges))
	var shapes []model.Outline

	for seed := range edges {
		if used[seed] {
			continue
		}
		used[seed] = true
		chain := model.Outline{edges[seed].a, edges[seed].b}

		for grown := true; grown; {
			grown = false
			tail := chain[len(chain)-1]
			for i, e := range edges {
				if used[i] {
					continue
				}
				switch {
				case near(tail, e.a):
					chain = append(chain, e.b)
				case near(tail, e.b):
					chain = append(chain, e.a)
				default:
					continue
				}
				used[i] = true
				grown = true
				break
			}
		}

		if len(chain) >= 3 && near(chain[0], chain[len(chain)-1]) {
			chain = chain[:len(chain)-1]
		}
		if len(chain) >= 3 {
			shapes = append(shapes, chain)
		}
	}

	sort.SliceStable(shapes, func(i, j int) bool {
		return polygonArea(shapes[i]) > polygonArea(shapes[j])
	})
	return shapes
}

func near(a, b model.Point2D) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= dxfJoinTolerance
}

// polygonArea is the unsigned shoelace area.
func polygonArea(o model.Outline) float64 {
	if len(o) < 3 {
		return 0
	}
	var sum float64
	for i, p := range o {
		q := o[(i+1)%len(o)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(sum) / 2
}

// toSheetSpace flips the Y axis (DXF grows upward, the sheet downward) and
// moves the shape so its bounding box starts at the origin.
func toSheetSpace(o model.Outline) model.Outline {
	flipped := make(model.Outline, len(o))
	for i, p := range o {
		flipped[i] = model.Point2D{X: p.X, Y: -p.Y}
	}
	min, _ := flipped.BoundingBox()
	return flipped.Translate(-min.X, -min.Y)
}
