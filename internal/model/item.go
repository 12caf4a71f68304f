package model

import (
	"fmt"

	"github.com/google/uuid"
)

// ItemKind identifies what an item draws on the sheet.
type ItemKind string

const (
	KindImage  ItemKind = "image"  // Raster image loaded from Source
	KindText   ItemKind = "text"   // Text block, Source holds the text
	KindSymbol ItemKind = "symbol" // Vector symbol, Outline holds the shape
	KindQRCode ItemKind = "qrcode" // QR code encoding Source
)

func (k ItemKind) String() string {
	switch k {
	case KindImage:
		return "Image"
	case KindText:
		return "Text"
	case KindSymbol:
		return "Symbol"
	case KindQRCode:
		return "QR Code"
	default:
		return "Unknown"
	}
}

// ParseItemKind converts a user-supplied name to an ItemKind.
// It returns false for names it does not recognise.
func ParseItemKind(s string) (ItemKind, bool) {
	switch s {
	case "image", "img", "picture", "photo":
		return KindImage, true
	case "text", "label", "caption":
		return KindText, true
	case "symbol", "icon", "vector", "svg", "dxf":
		return KindSymbol, true
	case "qrcode", "qr", "qr code":
		return KindQRCode, true
	default:
		return "", false
	}
}

// Point2D represents a 2D coordinate in mm.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Outline represents a closed polygon as a sequence of 2D points.
// The outline is implicitly closed: the last point connects back to the first.
type Outline []Point2D

// BoundingBox returns the min and max corners of the outline.
func (o Outline) BoundingBox() (min, max Point2D) {
	if len(o) == 0 {
		return Point2D{}, Point2D{}
	}
	min = Point2D{X: o[0].X, Y: o[0].Y}
	max = Point2D{X: o[0].X, Y: o[0].Y}
	for _, p := range o[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// Translate shifts all points by dx, dy.
func (o Outline) Translate(dx, dy float64) Outline {
	result := make(Outline, len(o))
	for i, p := range o {
		result[i] = Point2D{X: p.X + dx, Y: p.Y + dy}
	}
	return result
}

// Item is a placeable element on the print sheet.
type Item struct {
	ID       string   `json:"id"`
	Kind     ItemKind `json:"kind"`
	Label    string   `json:"label"`
	Source   string   `json:"source"`             // Image path, text content, symbol name or QR payload
	Width    float64  `json:"width"`              // Natural width in mm
	Height   float64  `json:"height"`             // Natural height in mm
	Scale    float64  `json:"scale"`              // Uniform scale factor, 1 = natural size
	Rotated  bool     `json:"rotated"`            // Turned 90 degrees, swaps the footprint
	CenterX  float64  `json:"cx"`                 // Geometric center, mm from the sheet's left edge
	CenterY  float64  `json:"cy"`                 // Geometric center, mm from the sheet's top edge
	FontSize float64  `json:"font_size,omitempty"` // Points, text items only
	Outline  Outline  `json:"outline,omitempty"`   // Normalized shape, symbol items only
}

func NewItem(kind ItemKind, label string, w, h float64) *Item {
	return &Item{
		ID:     NewID(),
		Kind:   kind,
		Label:  label,
		Width:  w,
		Height: h,
		Scale:  1,
	}
}

// NewID returns a fresh random item ID.
func NewID() string {
	return uuid.NewString()
}

// Footprint returns the scaled width and height as placed on the sheet.
func (it *Item) Footprint() (float64, float64) {
	scale := it.Scale
	if scale <= 0 {
		scale = 1
	}
	w, h := it.Width*scale, it.Height*scale
	if it.Rotated {
		return h, w
	}
	return w, h
}

// BoundingBox returns the sheet-space box the item occupies.
func (it *Item) BoundingBox() Rect {
	w, h := it.Footprint()
	return RectAround(it.CenterX, it.CenterY, w, h)
}

// SetPosition moves the item so its geometric center is at (cx, cy).
func (it *Item) SetPosition(cx, cy float64) {
	it.CenterX = cx
	it.CenterY = cy
}

// Clone returns a deep copy with a fresh ID.
func (it *Item) Clone() *Item {
	cp := *it
	cp.ID = NewID()
	if it.Outline != nil {
		cp.Outline = make(Outline, len(it.Outline))
		copy(cp.Outline, it.Outline)
	}
	return &cp
}

func (it *Item) String() string {
	return fmt.Sprintf("%s %s %q", it.Kind, it.ID, it.Label)
}
