package widgets

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/PrintSheet/internal/model"
	"github.com/piwi3910/PrintSheet/internal/scene"
)

// newTestCanvas draws an A4 portrait sheet at 2 screen units per mm.
func newTestCanvas(t *testing.T, items ...*model.Item) *SheetCanvas {
	t.Helper()
	test.NewTempApp(t)
	sheet := model.GetPreset("A4").Settings()
	sc := NewSheetCanvas(sheet, 420, 594)
	sc.SetContent(sheet, items, nil)
	return sc
}

func boxAt(cx, cy float64) *model.Item {
	it := model.NewItem(model.KindSymbol, "box", 20, 20)
	it.Outline = model.Outline{{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 20}, {X: 0, Y: 20}}
	it.SetPosition(cx, cy)
	return it
}

func TestSheetCanvas_MinSizeFollowsScale(t *testing.T) {
	sc := newTestCanvas(t)
	assert.Equal(t, fyne.NewSize(420, 594), sc.MinSize())
}

func TestSheetCanvas_TapSelectsTopmostItem(t *testing.T) {
	under := boxAt(50, 50)
	over := boxAt(55, 55)
	sc := newTestCanvas(t, under, over)

	var got string
	sc.OnSelected = func(id string) { got = id }

	sc.Tapped(&fyne.PointEvent{Position: fyne.NewPos(110, 110)})
	assert.Equal(t, over.ID, got)
	assert.Equal(t, over.ID, sc.Selected())

	sc.Tapped(&fyne.PointEvent{Position: fyne.NewPos(400, 580)})
	assert.Empty(t, got)
	assert.Empty(t, sc.Selected())
}

func TestSheetCanvas_DragReportsNewCenter(t *testing.T) {
	it := boxAt(50, 50)
	sc := newTestCanvas(t, it)

	var movedID string
	var cx, cy float64
	sc.OnMoved = func(id string, x, y float64) { movedID, cx, cy = id, x, y }

	sc.Dragged(&fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(110, 100)},
		Dragged:    fyne.NewDelta(10, 0),
	})
	sc.Dragged(&fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(110, 120)},
		Dragged:    fyne.NewDelta(0, 20),
	})
	sc.DragEnd()

	require.Equal(t, it.ID, movedID)
	assert.InDelta(t, 55, cx, 1e-9)
	assert.InDelta(t, 60, cy, 1e-9)
}

func TestSheetCanvas_DragOnEmptyPaperDoesNothing(t *testing.T) {
	sc := newTestCanvas(t, boxAt(50, 50))
	called := false
	sc.OnMoved = func(string, float64, float64) { called = true }

	sc.Dragged(&fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(300, 300)},
		Dragged:    fyne.NewDelta(5, 5),
	})
	sc.DragEnd()
	assert.False(t, called)
}

func TestSheetCanvas_SelectionClearedWhenItemGoes(t *testing.T) {
	it := boxAt(50, 50)
	sc := newTestCanvas(t, it)
	sc.Select(it.ID)

	sheet := model.GetPreset("A4").Settings()
	sc.SetContent(sheet, nil, []scene.Decoration{{Kind: scene.SafeGuide, Rect: sheet.SafeArea()}})
	assert.Empty(t, sc.Selected())
}

func TestSheetCanvas_RendersEveryKind(t *testing.T) {
	text := model.NewItem(model.KindText, "t", 30, 10)
	text.Source = "Hello\nWorld"
	text.SetPosition(100, 100)
	qr := model.NewItem(model.KindQRCode, "q", 25, 25)
	qr.Source = "https://example.com"
	qr.SetPosition(150, 150)
	img := model.NewItem(model.KindImage, "i", 30, 20)
	img.Source = "/nonexistent.png"
	img.SetPosition(100, 200)
	sym := boxAt(50, 50)
	sym.Rotated = true

	sc := newTestCanvas(t, text, qr, img, sym)
	r := test.TempWidgetRenderer(t, sc)
	// paper, 4 tints, 4 frames, 2 text lines, qr, image, 4 outline edges and
	// size labels on the qr and image; the 40 unit symbol is too small for one.
	assert.Len(t, r.Objects(), 1+4+4+2+1+1+4+2)
	assert.NotNil(t, sc.qrImage("https://example.com"))
}
