// Package export writes a finished sheet to print-ready and report formats.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/PrintSheet/internal/importer"
	"github.com/piwi3910/PrintSheet/internal/model"
)

// ErrNothingToExport is returned when the project has no items.
var ErrNothingToExport = errors.New("nothing to export: the sheet has no items")

// qrPixels is the raster size QR codes are embedded at.
const qrPixels = 512

// PDFOptions control what ExportPDF draws besides the items.
type PDFOptions struct {
	Guides  bool // Bleed and safe-area outlines
	Frames  bool // Thin box around every item
	Summary bool // Second page listing every item
}

// ExportPDF writes the sheet as a single page of exactly the sheet's size
// in mm. Items whose content cannot be read are drawn as crossed boxes and
// reported in the returned warnings.
func ExportPDF(path string, p model.Project, opts PDFOptions) ([]string, error) {
	if len(p.Items) == 0 {
		return nil, ErrNothingToExport
	}

	w, h := p.Sheet.Dimensions()
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(p.Name, true)
	pdf.AddPage()

	r := &renderer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	for i, it := range p.Items {
		r.drawItem(it, i)
		if opts.Frames {
			box := it.BoundingBox()
			pdf.SetDrawColor(160, 160, 160)
			pdf.SetLineWidth(0.1)
			pdf.Rect(box.Left, box.Top, box.Width(), box.Height(), "D")
		}
	}

	if opts.Guides {
		drawGuides(pdf, p.Sheet)
	}
	if opts.Summary {
		renderSummaryPage(pdf, r.tr, p)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return r.warnings, fmt.Errorf("failed to write PDF: %w", err)
	}
	return r.warnings, nil
}

type renderer struct {
	pdf      *fpdf.Fpdf
	tr       func(string) string
	warnings []string
}

func (r *renderer) warn(it *model.Item, format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf("%s: %s", it.Label, fmt.Sprintf(format, args...)))
}

// drawItem renders one item. Content is laid out at its natural
// orientation inside a rotation transform when the item is turned.
func (r *renderer) drawItem(it *model.Item, idx int) {
	scale := it.Scale
	if scale <= 0 {
		scale = 1
	}
	w, h := it.Width*scale, it.Height*scale
	x, y := it.CenterX-w/2, it.CenterY-h/2

	if it.Rotated {
		r.pdf.TransformBegin()
		r.pdf.TransformRotate(-90, it.CenterX, it.CenterY)
		defer r.pdf.TransformEnd()
	}

	switch it.Kind {
	case model.KindImage:
		r.drawImage(it, x, y, w, h, idx)
	case model.KindText:
		r.drawText(it, x, y, w, h, scale)
	case model.KindSymbol:
		r.drawSymbol(it, x, y, w, h, scale)
	case model.KindQRCode:
		r.drawQR(it, x, y, w, h, idx)
	default:
		r.warn(it, "unknown kind %q", string(it.Kind))
		drawPlaceholder(r.pdf, x, y, w, h)
	}
}

// drawImage embeds JPEG, PNG and GIF files directly and re-encodes other
// raster formats as PNG.
func (r *renderer) drawImage(it *model.Item, x, y, w, h float64, idx int) {
	ext := strings.ToLower(filepath.Ext(it.Source))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif":
		if _, err := os.Stat(it.Source); err != nil {
			r.warn(it, "image not found")
			drawPlaceholder(r.pdf, x, y, w, h)
			return
		}
		r.pdf.ImageOptions(it.Source, x, y, w, h, false, fpdf.ImageOptions{}, 0, "")
		return
	}

	data, err := reencodePNG(it.Source)
	if err != nil {
		r.warn(it, "%v", err)
		drawPlaceholder(r.pdf, x, y, w, h)
		return
	}
	name := fmt.Sprintf("img_%d_%s", idx, it.ID)
	opt := fpdf.ImageOptions{ImageType: "PNG"}
	r.pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(data))
	r.pdf.ImageOptions(name, x, y, w, h, false, opt, 0, "")
}

func reencodePNG(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("image not found: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("cannot decode image: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("cannot encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// drawText sets each line centered in the item box.
func (r *renderer) drawText(it *model.Item, x, y, w, h, scale float64) {
	size := it.FontSize
	if size <= 0 {
		size = importer.DefaultOptions().FontSize
	}
	size *= scale

	lines := strings.Split(it.Source, "\n")
	lineH := importer.LineHeight(size)
	top := y + (h-lineH*float64(len(lines)))/2

	r.pdf.SetFont(importer.TextFont, "", size)
	r.pdf.SetTextColor(0, 0, 0)
	for i, line := range lines {
		r.pdf.SetXY(x, top+float64(i)*lineH)
		r.pdf.CellFormat(w, lineH, r.tr(line), "", 0, "C", false, 0, "")
	}
}

// drawSymbol draws SVG sources through fpdf's basic SVG support and
// everything else as the item's outline polygon.
func (r *renderer) drawSymbol(it *model.Item, x, y, w, h, scale float64) {
	if strings.EqualFold(filepath.Ext(it.Source), ".svg") {
		if sig, err := fpdf.SVGBasicFileParse(it.Source); err == nil && sig.Wd > 0 {
			r.pdf.SetDrawColor(0, 0, 0)
			r.pdf.SetLineWidth(0.2)
			r.pdf.SetXY(x, y)
			r.pdf.SVGBasicWrite(&sig, w/sig.Wd)
			return
		}
	}

	if len(it.Outline) < 3 {
		r.warn(it, "symbol has no outline")
		drawPlaceholder(r.pdf, x, y, w, h)
		return
	}

	pts := make([]fpdf.PointType, len(it.Outline))
	for i, p := range it.Outline {
		pts[i] = fpdf.PointType{X: x + p.X*scale, Y: y + p.Y*scale}
	}
	r.pdf.SetDrawColor(0, 0, 0)
	r.pdf.SetFillColor(40, 40, 40)
	r.pdf.SetLineWidth(0.2)
	r.pdf.Polygon(pts, "FD")
}

func (r *renderer) drawQR(it *model.Item, x, y, w, h float64, idx int) {
	data, err := importer.QRPNG(it.Source, qrPixels)
	if err != nil {
		r.warn(it, "%v", err)
		drawPlaceholder(r.pdf, x, y, w, h)
		return
	}
	name := fmt.Sprintf("qr_%d_%s", idx, it.ID)
	opt := fpdf.ImageOptions{ImageType: "PNG"}
	r.pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(data))
	r.pdf.ImageOptions(name, x, y, w, h, false, opt, 0, "")
}

// drawPlaceholder marks content that could not be rendered.
func drawPlaceholder(pdf *fpdf.Fpdf, x, y, w, h float64) {
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.3)
	pdf.Rect(x, y, w, h, "D")
	pdf.Line(x, y, x+w, y+h)
	pdf.Line(x+w, y, x, y+h)
}

// drawGuides outlines the trim line and the safe area.
func drawGuides(pdf *fpdf.Fpdf, s model.SheetSettings) {
	w, h := s.Dimensions()
	trim := model.SafeArea(w, h, s.Bleed, 0)
	safe := s.SafeArea()

	pdf.SetLineWidth(0.2)
	pdf.SetDashPattern([]float64{2, 1}, 0)
	pdf.SetDrawColor(220, 0, 0)
	pdf.Rect(trim.Left, trim.Top, trim.Width(), trim.Height(), "D")
	pdf.SetDrawColor(0, 120, 220)
	pdf.Rect(safe.Left, safe.Top, safe.Width(), safe.Height(), "D")
	pdf.SetDashPattern(nil, 0)
}

// renderSummaryPage adds a proof page listing the sheet settings and items.
func renderSummaryPage(pdf *fpdf.Fpdf, tr func(string) string, p model.Project) {
	const margin = 10.0
	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()
	usable := pageW - 2*margin

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(margin, margin)
	pdf.CellFormat(usable, 8, tr(p.Name), "", 1, "L", false, 0, "")

	w, h := p.Sheet.Dimensions()
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetX(margin)
	info := fmt.Sprintf("%s %s, %.0f x %.0f mm | Bleed %.1f | Padding %.1f | Gutter %.1f | Coverage %.1f%%",
		p.Sheet.Preset, p.Sheet.Orientation, w, h, p.Sheet.Bleed, p.Sheet.Padding, p.Sheet.Gutter, p.Coverage())
	pdf.CellFormat(usable, 6, tr(info), "", 1, "L", false, 0, "")

	widths := []float64{0.08, 0.14, 0.38, 0.2, 0.2}
	headers := []string{"#", "Kind", "Label", "Size (mm)", "Center (mm)"}

	y := pdf.GetY() + 3
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	x := margin
	for i, head := range headers {
		pdf.SetXY(x, y)
		pdf.CellFormat(usable*widths[i], 5, head, "1", 0, "C", true, 0, "")
		x += usable * widths[i]
	}
	y += 5

	pdf.SetFont("Helvetica", "", 8)
	for n, it := range p.Items {
		if y+5 > pageH-margin {
			pdf.AddPage()
			y = margin
		}
		fw, fh := it.Footprint()
		row := []string{
			fmt.Sprintf("%d", n+1),
			it.Kind.String(),
			it.Label,
			fmt.Sprintf("%.1f x %.1f", fw, fh),
			fmt.Sprintf("%.1f, %.1f", it.CenterX, it.CenterY),
		}
		x = margin
		for i, cell := range row {
			pdf.SetXY(x, y)
			pdf.CellFormat(usable*widths[i], 5, tr(cell), "1", 0, "C", false, 0, "")
			x += usable * widths[i]
		}
		y += 5
	}
}
