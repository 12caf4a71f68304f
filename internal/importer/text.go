package importer

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/PrintSheet/internal/model"
)

// TextFont is the core PDF font text items are measured and drawn with.
const TextFont = "Helvetica"

const (
	pointMM    = 25.4 / 72
	lineFactor = 1.2
	maxLabel   = 24
)

// measurer reuses one fpdf document for string metrics. fpdf is not safe
// for concurrent use.
var measurer struct {
	sync.Mutex
	pdf *fpdf.Fpdf
	tr  func(string) string
}

// MeasureText returns the size in mm of text set in TextFont at fontSize
// points. Each newline starts a new line.
func MeasureText(text string, fontSize float64) (float64, float64) {
	measurer.Lock()
	defer measurer.Unlock()
	if measurer.pdf == nil {
		measurer.pdf = fpdf.New("P", "mm", "A4", "")
		measurer.tr = measurer.pdf.UnicodeTranslatorFromDescriptor("")
	}
	measurer.pdf.SetFont(TextFont, "", fontSize)

	lines := strings.Split(text, "\n")
	var width float64
	for _, line := range lines {
		if w := measurer.pdf.GetStringWidth(measurer.tr(line)); w > width {
			width = w
		}
	}
	return width, float64(len(lines)) * LineHeight(fontSize)
}

// LineHeight is the baseline-to-baseline distance in mm.
func LineHeight(fontSize float64) float64 {
	return fontSize * pointMM * lineFactor
}

// NewTextItem builds a text item sized to fit text.
func NewTextItem(text string, fontSize float64) *model.Item {
	if fontSize <= 0 {
		fontSize = DefaultOptions().FontSize
	}
	w, h := MeasureText(text, fontSize)
	it := model.NewItem(model.KindText, textLabel(text), w, h)
	it.Source = text
	it.FontSize = fontSize
	return it
}

// textLabel is the first line, shortened for lists.
func textLabel(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	if utf8.RuneCountInString(line) <= maxLabel {
		return line
	}
	r := []rune(line)
	return string(r[:maxLabel-1]) + "…"
}
