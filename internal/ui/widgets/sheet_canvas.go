package widgets

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/PrintSheet/internal/importer"
	"github.com/piwi3910/PrintSheet/internal/model"
	"github.com/piwi3910/PrintSheet/internal/scene"
)

// Item colors cycle through these for visual distinction.
var itemColors = []color.NRGBA{
	{R: 76, G: 175, B: 80, A: 90},  // green
	{R: 33, G: 150, B: 243, A: 90}, // blue
	{R: 255, G: 152, B: 0, A: 90},  // orange
	{R: 156, G: 39, B: 176, A: 90}, // purple
	{R: 0, G: 188, B: 212, A: 90},  // cyan
	{R: 244, G: 67, B: 54, A: 90},  // red
}

var (
	paperColor    = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	edgeColor     = color.NRGBA{R: 100, G: 100, B: 100, A: 255}
	bleedColor    = color.NRGBA{R: 220, G: 0, B: 0, A: 255}
	safeColor     = color.NRGBA{R: 0, G: 120, B: 220, A: 255}
	selectColor   = color.NRGBA{R: 255, G: 140, B: 0, A: 255}
	outlineColor  = color.NRGBA{R: 30, G: 30, B: 30, A: 255}
	overflowColor = color.NRGBA{R: 244, G: 67, B: 54, A: 160}
)

// SheetCanvas renders the print sheet, its guides and every item. Tapping
// selects an item and dragging moves it.
type SheetCanvas struct {
	widget.BaseWidget

	sheet       model.SheetSettings
	items       []*model.Item
	decorations []scene.Decoration
	selected    string
	maxWidth    float32
	maxHeight   float32

	dragID     string
	dragDX     float64
	dragDY     float64
	qrCache    map[string]image.Image
	OnSelected func(id string)                 // Empty id clears the selection
	OnMoved    func(id string, cx, cy float64) // Called once when a drag ends
}

func NewSheetCanvas(sheet model.SheetSettings, maxW, maxH float32) *SheetCanvas {
	sc := &SheetCanvas{
		sheet:     sheet,
		maxWidth:  maxW,
		maxHeight: maxH,
		qrCache:   map[string]image.Image{},
	}
	sc.ExtendBaseWidget(sc)
	return sc
}

// SetContent replaces what the canvas shows. Items are drawn as given and
// must not be mutated afterwards.
func (sc *SheetCanvas) SetContent(sheet model.SheetSettings, items []*model.Item, decorations []scene.Decoration) {
	sc.sheet = sheet
	sc.items = items
	sc.decorations = decorations
	if sc.selected != "" && sc.find(sc.selected) == nil {
		sc.selected = ""
	}
	sc.Refresh()
}

// Selected returns the ID of the selected item, or "".
func (sc *SheetCanvas) Selected() string {
	return sc.selected
}

// Select highlights the item with the given ID.
func (sc *SheetCanvas) Select(id string) {
	sc.selected = id
	sc.Refresh()
	if sc.OnSelected != nil {
		sc.OnSelected(id)
	}
}

func (sc *SheetCanvas) find(id string) *model.Item {
	for _, it := range sc.items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// scale returns screen units per mm.
func (sc *SheetCanvas) scale() float32 {
	w, h := sc.sheet.Dimensions()
	if w <= 0 || h <= 0 {
		return 1
	}
	s := sc.maxWidth / float32(w)
	if sy := sc.maxHeight / float32(h); sy < s {
		s = sy
	}
	return s
}

// itemAt returns the topmost item under a point in mm.
func (sc *SheetCanvas) itemAt(x, y float64) *model.Item {
	for i := len(sc.items) - 1; i >= 0; i-- {
		b := sc.items[i].BoundingBox()
		if x >= b.Left && x <= b.Right && y >= b.Top && y <= b.Bottom {
			return sc.items[i]
		}
	}
	return nil
}

func (sc *SheetCanvas) Tapped(ev *fyne.PointEvent) {
	s := float64(sc.scale())
	id := ""
	if it := sc.itemAt(float64(ev.Position.X)/s, float64(ev.Position.Y)/s); it != nil {
		id = it.ID
	}
	sc.Select(id)
}

func (sc *SheetCanvas) Dragged(ev *fyne.DragEvent) {
	s := float64(sc.scale())
	if sc.dragID == "" {
		start := ev.Position.Subtract(ev.Dragged)
		it := sc.itemAt(float64(start.X)/s, float64(start.Y)/s)
		if it == nil {
			return
		}
		sc.dragID = it.ID
		sc.dragDX, sc.dragDY = 0, 0
		sc.selected = it.ID
	}
	sc.dragDX += float64(ev.Dragged.DX) / s
	sc.dragDY += float64(ev.Dragged.DY) / s
	sc.Refresh()
}

func (sc *SheetCanvas) DragEnd() {
	id, dx, dy := sc.dragID, sc.dragDX, sc.dragDY
	sc.dragID = ""
	sc.dragDX, sc.dragDY = 0, 0
	it := sc.find(id)
	if it == nil {
		return
	}
	if sc.OnMoved != nil && (dx != 0 || dy != 0) {
		sc.OnMoved(id, it.CenterX+dx, it.CenterY+dy)
	}
}

func (sc *SheetCanvas) qrImage(payload string) image.Image {
	if img, ok := sc.qrCache[payload]; ok {
		return img
	}
	q, err := qrcode.New(payload, importer.QRLevel)
	if err != nil {
		return nil
	}
	q.DisableBorder = true
	img := q.Image(256)
	sc.qrCache[payload] = img
	return img
}

func (sc *SheetCanvas) CreateRenderer() fyne.WidgetRenderer {
	return newSheetCanvasRenderer(sc)
}

type sheetCanvasRenderer struct {
	sc      *SheetCanvas
	objects []fyne.CanvasObject
}

func newSheetCanvasRenderer(sc *SheetCanvas) *sheetCanvasRenderer {
	r := &sheetCanvasRenderer{sc: sc}
	r.rebuild()
	return r
}

func (r *sheetCanvasRenderer) rebuild() {
	r.objects = nil
	sc := r.sc
	scale := sc.scale()
	w, h := sc.sheet.Dimensions()
	canvasW, canvasH := float32(w)*scale, float32(h)*scale

	bg := canvas.NewRectangle(paperColor)
	bg.StrokeColor = edgeColor
	bg.StrokeWidth = 2
	bg.Resize(fyne.NewSize(canvasW, canvasH))
	r.objects = append(r.objects, bg)

	for _, d := range sc.decorations {
		col := safeColor
		if d.Kind == scene.BleedGuide {
			col = bleedColor
		}
		r.strokeRect(d.Rect, scale, col, 1)
	}

	safe := sc.sheet.SafeArea()
	for i, it := range sc.items {
		box := it.BoundingBox()
		if it.ID == sc.dragID {
			box = box.Translate(sc.dragDX, sc.dragDY)
		}
		fill := itemColors[i%len(itemColors)]
		if !safe.Contains(box) {
			fill = overflowColor
		}
		tint := canvas.NewRectangle(fill)
		r.place(tint, box, scale)
		r.objects = append(r.objects, tint)

		r.drawContent(it, box, scale)

		if it.ID == sc.selected {
			r.strokeRect(box, scale, selectColor, 2)
		} else {
			r.strokeRect(box, scale, outlineColor, 1)
		}
	}
}

func (r *sheetCanvasRenderer) drawContent(it *model.Item, box model.Rect, scale float32) {
	pw, ph := float32(box.Width())*scale, float32(box.Height())*scale
	switch it.Kind {
	case model.KindImage:
		img := canvas.NewImageFromFile(it.Source)
		img.FillMode = canvas.ImageFillStretch
		r.place(img, box, scale)
		r.objects = append(r.objects, img)
	case model.KindQRCode:
		if q := r.sc.qrImage(it.Source); q != nil {
			img := canvas.NewImageFromImage(q)
			img.FillMode = canvas.ImageFillContain
			r.place(img, box, scale)
			r.objects = append(r.objects, img)
		}
	case model.KindText:
		r.drawText(it, box, scale)
	case model.KindSymbol:
		r.drawOutline(it, box, scale)
	}

	if pw > 40 && ph > 14 && it.Kind != model.KindText {
		label := canvas.NewText(fmt.Sprintf("%s %.0fx%.0f", it.Label, box.Width(), box.Height()), outlineColor)
		label.TextSize = 9
		label.Move(fyne.NewPos(float32(box.Left)*scale+2, float32(box.Top)*scale+1))
		r.objects = append(r.objects, label)
	}
}

func (r *sheetCanvasRenderer) drawText(it *model.Item, box model.Rect, scale float32) {
	size := it.FontSize
	if size <= 0 {
		size = importer.DefaultOptions().FontSize
	}
	if it.Scale > 0 {
		size *= it.Scale
	}
	lineH := float32(importer.LineHeight(size)) * scale
	lines := strings.Split(it.Source, "\n")
	top := float32(box.Top)*scale + (float32(box.Height())*scale-lineH*float32(len(lines)))/2
	for i, line := range lines {
		t := canvas.NewText(line, color.Black)
		t.TextSize = float32(size*25.4/72) * scale
		t.Alignment = fyne.TextAlignCenter
		t.Resize(fyne.NewSize(float32(box.Width())*scale, lineH))
		t.Move(fyne.NewPos(float32(box.Left)*scale, top+float32(i)*lineH))
		r.objects = append(r.objects, t)
	}
}

// drawOutline draws the symbol polygon. Rotated symbols are turned a
// quarter clockwise inside their footprint.
func (r *sheetCanvasRenderer) drawOutline(it *model.Item, box model.Rect, scale float32) {
	n := len(it.Outline)
	if n < 2 {
		return
	}
	s := it.Scale
	if s <= 0 {
		s = 1
	}
	pt := func(p model.Point2D) fyne.Position {
		x, y := p.X*s, p.Y*s
		if it.Rotated {
			x, y = it.Height*s-y, x
		}
		return fyne.NewPos(float32(box.Left+x)*scale, float32(box.Top+y)*scale)
	}
	for i := 0; i < n; i++ {
		line := canvas.NewLine(outlineColor)
		line.StrokeWidth = 1.5
		line.Position1 = pt(it.Outline[i])
		line.Position2 = pt(it.Outline[(i+1)%n])
		r.objects = append(r.objects, line)
	}
}

func (r *sheetCanvasRenderer) place(obj fyne.CanvasObject, box model.Rect, scale float32) {
	obj.Resize(fyne.NewSize(float32(box.Width())*scale, float32(box.Height())*scale))
	obj.Move(fyne.NewPos(float32(box.Left)*scale, float32(box.Top)*scale))
}

func (r *sheetCanvasRenderer) strokeRect(box model.Rect, scale float32, col color.Color, width float32) {
	rect := canvas.NewRectangle(color.Transparent)
	rect.StrokeColor = col
	rect.StrokeWidth = width
	r.place(rect, box, scale)
	r.objects = append(r.objects, rect)
}

func (r *sheetCanvasRenderer) Layout(size fyne.Size)        {}
func (r *sheetCanvasRenderer) Refresh()                     { r.rebuild() }
func (r *sheetCanvasRenderer) Destroy()                     {}
func (r *sheetCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *sheetCanvasRenderer) MinSize() fyne.Size {
	w, h := r.sc.sheet.Dimensions()
	s := r.sc.scale()
	return fyne.NewSize(float32(w)*s, float32(h)*s)
}
