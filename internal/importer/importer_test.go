package importer

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/PrintSheet/internal/model"
	"github.com/xuri/excelize/v2"
	"github.com/yofu/dxf"
	"golang.org/x/image/bmp"
)

func near2(a, b float64) bool { return math.Abs(a-b) < 0.01 }

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "Label,Width,Height,Qty\nLogo,60,30,2\nBadge,40,40,1\n", ','},
		{"semicolon", "Label;Width;Height;Qty\nLogo;60;30;2\nBadge;40;40;1\n", ';'},
		{"tab", "Label\tWidth\tHeight\tQty\nLogo\t60\t30\t2\nBadge\t40\t40\t1\n", '\t'},
		{"pipe", "Label|Width|Height|Qty\nLogo|60|30|2\nBadge|40|40|1\n", '|'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectCSVDelimiter([]byte(tt.data)); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	m, isHeader := DetectColumns([]string{"Kind", "Label", "Content", "Width", "Height", "Qty", "Font Size"})
	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{Kind: 0, Label: 1, Source: 2, Width: 3, Height: 4, Quantity: 5, FontSize: 6}
	if m != want {
		t.Errorf("expected %+v, got %+v", want, m)
	}
}

func TestDetectColumns_AliasesAndCase(t *testing.T) {
	m, isHeader := DetectColumns([]string{"COPIES", "Type", "file", "W", "h", "Name"})
	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	if m.Quantity != 0 || m.Kind != 1 || m.Source != 2 || m.Width != 3 || m.Height != 4 || m.Label != 5 {
		t.Errorf("unexpected mapping %+v", m)
	}
	if m.FontSize != -1 {
		t.Errorf("expected no font size column, got %d", m.FontSize)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	m, isHeader := DetectColumns([]string{"Logo", "60", "30", "2"})
	if isHeader {
		t.Error("expected no header")
	}
	if m.Label != 0 || m.Width != 1 || m.Height != 2 || m.Quantity != 3 {
		t.Errorf("expected positional mapping, got %+v", m)
	}
}

// ─── List Import Tests ─────────────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	csv := "Kind,Label,Content,Width,Height,Qty\n" +
		"text,Title,Hello world,80,15,2\n" +
		"qr,Site,https://example.com,30,30,1\n" +
		"symbol,Star,star.svg,20,20,3\n"

	result := ImportCSVFromReader(strings.NewReader(csv), ',', DefaultOptions())

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Items) != 6 {
		t.Fatalf("expected 6 items, got %d", len(result.Items))
	}

	first := result.Items[0]
	if first.Kind != model.KindText || first.Source != "Hello world" || first.Width != 80 {
		t.Errorf("unexpected first item %+v", first)
	}
	if first.FontSize != 12 {
		t.Errorf("expected default font size 12, got %f", first.FontSize)
	}
	if result.Items[0].ID == result.Items[1].ID {
		t.Error("copies must have distinct IDs")
	}
	if result.Items[2].Kind != model.KindQRCode {
		t.Errorf("expected QR item, got %s", result.Items[2].Kind)
	}
	if result.Items[5].Kind != model.KindSymbol || result.Items[5].Source != "star.svg" {
		t.Errorf("unexpected symbol item %+v", result.Items[5])
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Logo,60,30,2\nBadge,40,40,1\n"), ',', DefaultOptions())

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(result.Items))
	}
	if result.Items[0].Kind != model.KindText || result.Items[0].Source != "Logo" {
		t.Errorf("expected text item with label as content, got %+v", result.Items[0])
	}
}

func TestImportCSVFromReader_NaturalSizes(t *testing.T) {
	csv := "Kind,Label,Content,Font Size\n" +
		"text,Greeting,Hi there,18\n" +
		"qr,Link,https://example.com,\n"

	result := ImportCSVFromReader(strings.NewReader(csv), ',', DefaultOptions())

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}

	text := result.Items[0]
	if text.Width <= 0 {
		t.Errorf("expected measured width, got %f", text.Width)
	}
	if !near2(text.Height, LineHeight(18)) {
		t.Errorf("expected one line of 18pt, got %f", text.Height)
	}

	qr := result.Items[1]
	if qr.Width != 25 || qr.Height != 25 {
		t.Errorf("expected default 25mm QR, got %f x %f", qr.Width, qr.Height)
	}
}

func TestImportCSVFromReader_RowErrors(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"unknown kind", "hologram,X,,10,10,1"},
		{"invalid width", "text,X,x,abc,10,1"},
		{"negative height", "text,X,x,10,-5,1"},
		{"zero quantity", "text,X,x,10,10,0"},
		{"missing height", "text,X,x,10,,1"},
		{"symbol without size", "symbol,X,star.svg,,,1"},
		{"image without file", "image,X,,,,1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			csv := "Kind,Label,Content,Width,Height,Qty\n" + tt.row + "\n"
			result := ImportCSVFromReader(strings.NewReader(csv), ',', DefaultOptions())
			if len(result.Errors) != 1 {
				t.Errorf("expected one error, got %v", result.Errors)
			}
			if len(result.Items) != 0 {
				t.Errorf("expected no items, got %d", len(result.Items))
			}
		})
	}
}

func TestImportCSVFromReader_MixedValidAndInvalid(t *testing.T) {
	csv := "Label,Width,Height,Qty\nGood,10,10,1\nBad,abc,10,1\n\nAlso good,20,20,1\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ',', DefaultOptions())

	if len(result.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(result.Items))
	}
	if len(result.Errors) != 1 || !strings.HasPrefix(result.Errors[0], "Line 3") {
		t.Errorf("expected one error on line 3, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_OnlyHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Label,Width,Height\n"), ',', DefaultOptions())
	if len(result.Items) != 0 || len(result.Errors) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestImportCSVFromReader_MissingLabelAndSource(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Width,Height\n10,10\n"), ',', DefaultOptions())
	if len(result.Errors) == 0 {
		t.Error("expected error for header without label or content")
	}
}

func TestImportCSV_File(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "photo.png"), 600, 300)
	path := filepath.Join(dir, "items.csv")
	data := "Kind;Label;File;Qty\nimage;Photo;photo.png;2\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result := ImportCSV(path, Options{})

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	it := result.Items[0]
	if !near2(it.Width, 50.8) || !near2(it.Height, 25.4) {
		t.Errorf("expected 50.8 x 25.4 mm at 300 DPI, got %f x %f", it.Width, it.Height)
	}
	if it.Label != "Photo" {
		t.Errorf("expected label 'Photo', got %q", it.Label)
	}

	foundDelim := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "semicolon") {
			foundDelim = true
		}
	}
	if !foundDelim {
		t.Errorf("expected semicolon warning, got %v", result.Warnings)
	}
}

func TestImportCSV_FileNotFound(t *testing.T) {
	result := ImportCSV("/nonexistent/path/file.csv", DefaultOptions())
	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if result := ImportCSV(path, DefaultOptions()); len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("failed to create cell reference: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("failed to set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Type", "Name", "Content", "Width", "Height", "Copies"},
		{"qrcode", "Ticket", "TICKET-0001", 30, 30, 4},
		{"text", "Caption", "Summer sale", 60, 12, 1},
	})

	result := ImportExcel(path, DefaultOptions())

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(result.Items))
	}
	if result.Items[0].Source != "TICKET-0001" || result.Items[0].Width != 30 {
		t.Errorf("unexpected first item %+v", result.Items[0])
	}
	if result.Items[4].Label != "Caption" {
		t.Errorf("expected 'Caption', got %q", result.Items[4].Label)
	}
}

func TestImportExcel_InvalidData(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Label", "Width", "Height", "Quantity"},
		{"Logo", "abc", 30, 2},
	})
	result := ImportExcel(path, DefaultOptions())
	if len(result.Errors) == 0 || !strings.HasPrefix(result.Errors[0], "Row 2") {
		t.Errorf("expected error on row 2, got %v", result.Errors)
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	if result := ImportExcel("/nonexistent/file.xlsx", DefaultOptions()); len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

// ─── Image, SVG and DXF Tests ──────────────────────────────

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.Black)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
}

func TestImportImage_PNGAndBMP(t *testing.T) {
	dir := t.TempDir()
	pngPath := filepath.Join(dir, "logo.png")
	writePNG(t, pngPath, 300, 150)

	it, err := ImportImage(pngPath, 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !near2(it.Width, 50.8) || !near2(it.Height, 25.4) {
		t.Errorf("expected 50.8 x 25.4 mm at 150 DPI, got %f x %f", it.Width, it.Height)
	}
	if it.Kind != model.KindImage || it.Label != "logo" || it.Source != pngPath {
		t.Errorf("unexpected item %+v", it)
	}

	bmpPath := filepath.Join(dir, "scan.bmp")
	f, err := os.Create(bmpPath)
	if err != nil {
		t.Fatalf("failed to create bmp: %v", err)
	}
	if err := bmp.Encode(f, image.NewGray(image.Rect(0, 0, 600, 600))); err != nil {
		t.Fatalf("failed to encode bmp: %v", err)
	}
	f.Close()

	it, err = ImportImage(bmpPath, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !near2(it.Width, 50.8) {
		t.Errorf("expected 50.8 mm at default 300 DPI, got %f", it.Width)
	}
}

func TestImportImage_NotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.png")
	if err := os.WriteFile(path, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportImage(path, 300); err == nil {
		t.Error("expected error for invalid image data")
	}
}

func TestImportSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "badge.svg")
	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 96 48"><rect width="96" height="48"/></svg>`
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		t.Fatal(err)
	}

	it, err := ImportSVG(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !near2(it.Width, 25.4) || !near2(it.Height, 12.7) {
		t.Errorf("expected 25.4 x 12.7 mm, got %f x %f", it.Width, it.Height)
	}
	if it.Kind != model.KindSymbol || it.Label != "badge" {
		t.Errorf("unexpected item %+v", it)
	}
}

func TestImportDXF_LinesAndCircle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shapes.dxf")
	d := dxf.NewDrawing()
	corners := [][2]float64{{0, 0}, {30, 0}, {30, 10}, {0, 10}}
	for i, c := range corners {
		n := corners[(i+1)%len(corners)]
		if _, err := d.Line(c[0], c[1], 0, n[0], n[1], 0); err != nil {
			t.Fatalf("failed to add line: %v", err)
		}
	}
	if _, err := d.Circle(100, 100, 0, 10); err != nil {
		t.Fatalf("failed to add circle: %v", err)
	}
	if err := d.SaveAs(path); err != nil {
		t.Fatalf("failed to save DXF: %v", err)
	}

	result := ImportDXF(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 symbols, got %d", len(result.Items))
	}

	var sawRect, sawCircle bool
	for _, it := range result.Items {
		if it.Kind != model.KindSymbol {
			t.Errorf("expected symbol, got %s", it.Kind)
		}
		min, _ := it.Outline.BoundingBox()
		if !near2(min.X, 0) || !near2(min.Y, 0) {
			t.Errorf("outline not normalized: min %+v", min)
		}
		switch {
		case near2(it.Width, 30) && near2(it.Height, 10):
			sawRect = true
		case near2(it.Width, 20) && near2(it.Height, 20):
			sawCircle = true
		}
	}
	if !sawRect || !sawCircle {
		t.Errorf("expected a 30x10 rectangle and a 20mm circle, got %v", result.Items)
	}
}

func TestImportDXF_FileNotFound(t *testing.T) {
	if result := ImportDXF("/nonexistent/file.dxf"); len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

// ─── Text and QR Tests ─────────────────────────────────────

func TestNewTextItem_MultiLine(t *testing.T) {
	one := NewTextItem("Hello", 12)
	two := NewTextItem("Hello\nHello", 12)

	if !near2(two.Width, one.Width) {
		t.Errorf("expected equal widths, got %f and %f", one.Width, two.Width)
	}
	if !near2(two.Height, 2*one.Height) {
		t.Errorf("expected double height, got %f vs %f", two.Height, one.Height)
	}
	if two.Label != "Hello" || two.Source != "Hello\nHello" {
		t.Errorf("unexpected label/source %q / %q", two.Label, two.Source)
	}

	wide, _ := MeasureText("WWWWWWWW", 12)
	narrow, _ := MeasureText("iiiiiiii", 12)
	if wide <= narrow {
		t.Errorf("expected proportional metrics, got W=%f i=%f", wide, narrow)
	}
}

func TestTextLabel_Truncates(t *testing.T) {
	got := textLabel(strings.Repeat("a", 40))
	if len([]rune(got)) != maxLabel {
		t.Errorf("expected %d runes, got %d", maxLabel, len([]rune(got)))
	}
}

func TestNewQRItem(t *testing.T) {
	it, err := NewQRItem("https://example.com", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.Width != it.Height {
		t.Errorf("expected square, got %f x %f", it.Width, it.Height)
	}
	if it.Width <= 5 {
		t.Errorf("expected size raised above 5mm, got %f", it.Width)
	}

	if _, err := NewQRItem("", 25); err == nil {
		t.Error("expected error for empty payload")
	}

	data, err := QRPNG("hello", 64)
	if err != nil || len(data) == 0 {
		t.Errorf("expected PNG bytes, got %d (%v)", len(data), err)
	}
}

func TestImportFile_Dispatch(t *testing.T) {
	dir := t.TempDir()
	pngPath := filepath.Join(dir, "a.png")
	writePNG(t, pngPath, 30, 30)

	if result := ImportFile(pngPath, Options{}); len(result.Items) != 1 {
		t.Errorf("expected one image item, got %+v", result)
	}
	if result := ImportFile(filepath.Join(dir, "notes.docx"), Options{}); len(result.Errors) == 0 {
		t.Error("expected unsupported type error")
	}
}
