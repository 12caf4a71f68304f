// Package importer turns files into sheet items: CSV and Excel item lists,
// DXF and SVG symbols, raster images, text and QR codes.
//
// List imports support automatic delimiter detection, flexible column
// mapping, and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/PrintSheet/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Items    []*model.Item
	Errors   []string
	Warnings []string
}

// Options control how items are sized when a file does not say.
type Options struct {
	DPI      float64 // Raster resolution used to convert pixels to mm
	FontSize float64 // Points, for text items
	QRSize   float64 // mm, for QR items
	BaseDir  string  // Resolves relative image paths in item lists
}

// DefaultOptions returns 300 DPI, 12pt text and 25mm QR codes.
func DefaultOptions() Options {
	return Options{
		DPI:      300,
		FontSize: 12,
		QRSize:   25,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.DPI <= 0 {
		o.DPI = d.DPI
	}
	if o.FontSize <= 0 {
		o.FontSize = d.FontSize
	}
	if o.QRSize <= 0 {
		o.QRSize = d.QRSize
	}
	return o
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Kind     int
	Label    int
	Source   int
	Width    int
	Height   int
	Quantity int
	FontSize int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"kind":     {"kind", "type", "item type"},
	"label":    {"label", "name", "title", "description", "desc", "item"},
	"source":   {"source", "content", "text", "file", "path", "image", "data", "url"},
	"width":    {"width", "w", "x"},
	"height":   {"height", "h", "y"},
	"quantity": {"quantity", "qty", "count", "num", "amount", "copies"},
	"fontsize": {"font size", "fontsize", "size", "pt"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	best, bestScore := ',', 0
	for _, delim := range []rune{',', ';', '\t', '|'} {
		records, err := newCSVReader(bytes.NewReader(data), delim).ReadAll()
		if err != nil || len(records) == 0 || len(records[0]) < 2 {
			continue
		}
		cols := len(records[0])
		score := 0
		for _, row := range records {
			if len(row) == cols {
				score++
			}
		}
		if weighted := score*10 + cols; weighted > bestScore {
			best, bestScore = delim, weighted
		}
	}
	return best
}

func newCSVReader(r io.Reader, delim rune) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader
}

// DetectColumns examines a header row and returns a ColumnMapping.
// It returns false and the positional mapping (label, width, height,
// quantity, kind, source) when the row is not a recognised header.
func DetectColumns(row []string) (ColumnMapping, bool) {
	m := ColumnMapping{-1, -1, -1, -1, -1, -1, -1}
	slots := map[string]*int{
		"kind":     &m.Kind,
		"label":    &m.Label,
		"source":   &m.Source,
		"width":    &m.Width,
		"height":   &m.Height,
		"quantity": &m.Quantity,
		"fontsize": &m.FontSize,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias && *slots[role] == -1 {
					*slots[role] = i
					isHeader = true
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Label: 0, Width: 1, Height: 2, Quantity: 3, Kind: 4, Source: 5, FontSize: -1}, false
	}
	return m, true
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parsePositive(s, what, rowLabel string) (float64, string) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, what, s)
	}
	if v <= 0 {
		return 0, fmt.Sprintf("%s: %s must be positive", rowLabel, strings.ToUpper(what[:1])+what[1:])
	}
	return v, ""
}

// rowParser turns list rows into items.
type rowParser struct {
	mapping ColumnMapping
	opts    Options
}

// parse extracts the items for one row, one per copy.
// It returns the items, any error message, and any warning message.
func (p rowParser) parse(row []string, rowLabel string, itemCount int) ([]*model.Item, string, string) {
	var warning string

	kind := model.KindText
	if s := getCell(row, p.mapping.Kind); s != "" {
		k, ok := model.ParseItemKind(strings.ToLower(s))
		if !ok {
			return nil, fmt.Sprintf("%s: Unknown item kind '%s'", rowLabel, s), ""
		}
		kind = k
	}

	label := getCell(row, p.mapping.Label)
	source := getCell(row, p.mapping.Source)
	if source == "" && (kind == model.KindText || kind == model.KindQRCode) {
		source = label
	}
	if label == "" {
		label = fmt.Sprintf("Item %d", itemCount+1)
	}

	qty := 1
	if s := getCell(row, p.mapping.Quantity); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, s), ""
		}
		if n <= 0 {
			return nil, fmt.Sprintf("%s: Quantity must be positive", rowLabel), ""
		}
		qty = n
	}

	fontSize := p.opts.FontSize
	if s := getCell(row, p.mapping.FontSize); s != "" {
		v, msg := parsePositive(s, "font size", rowLabel)
		if msg != "" {
			return nil, msg, ""
		}
		fontSize = v
	}

	widthStr, heightStr := getCell(row, p.mapping.Width), getCell(row, p.mapping.Height)
	var tmpl *model.Item
	switch {
	case widthStr != "" || heightStr != "":
		if widthStr == "" {
			return nil, fmt.Sprintf("%s: Missing width value", rowLabel), ""
		}
		if heightStr == "" {
			return nil, fmt.Sprintf("%s: Missing height value", rowLabel), ""
		}
		w, msg := parsePositive(widthStr, "width", rowLabel)
		if msg != "" {
			return nil, msg, ""
		}
		h, msg := parsePositive(heightStr, "height", rowLabel)
		if msg != "" {
			return nil, msg, ""
		}
		tmpl = model.NewItem(kind, label, w, h)
		tmpl.Source = source
		if kind == model.KindText {
			tmpl.FontSize = fontSize
		}
	default:
		var err error
		tmpl, err = p.natural(kind, label, source, fontSize)
		if err != nil {
			return nil, fmt.Sprintf("%s: %v", rowLabel, err), ""
		}
		if kind == model.KindImage {
			warning = fmt.Sprintf("%s: Sized '%s' from its pixels at %.0f DPI", rowLabel, label, p.opts.DPI)
		}
	}

	items := make([]*model.Item, 0, qty)
	items = append(items, tmpl)
	for i := 1; i < qty; i++ {
		items = append(items, tmpl.Clone())
	}
	return items, "", warning
}

// natural builds an item sized from its own content.
func (p rowParser) natural(kind model.ItemKind, label, source string, fontSize float64) (*model.Item, error) {
	switch kind {
	case model.KindText:
		if source == "" {
			return nil, fmt.Errorf("text item has no content")
		}
		it := NewTextItem(source, fontSize)
		it.Label = label
		return it, nil
	case model.KindQRCode:
		it, err := NewQRItem(source, p.opts.QRSize)
		if err != nil {
			return nil, err
		}
		it.Label = label
		return it, nil
	case model.KindImage:
		if source == "" {
			return nil, fmt.Errorf("image item has no file")
		}
		path := source
		if !filepath.IsAbs(path) && p.opts.BaseDir != "" {
			path = filepath.Join(p.opts.BaseDir, path)
		}
		it, err := ImportImage(path, p.opts.DPI)
		if err != nil {
			return nil, err
		}
		it.Label = label
		return it, nil
	default:
		return nil, fmt.Errorf("%s items need a width and height", kind)
	}
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports items from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Relative image paths resolve against the file's directory.
func ImportCSV(path string, opts Options) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}
	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, err := newCSVReader(bytes.NewReader(data), delimiter).ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if opts.BaseDir == "" {
		opts.BaseDir = filepath.Dir(path)
	}
	return importFromRows(records, "Line", warnings, opts)
}

// ImportCSVFromReader imports items from a CSV reader with a known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune, opts Options) ImportResult {
	records, err := newCSVReader(reader, delimiter).ReadAll()
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	return importFromRows(records, "Line", nil, opts)
}

// ImportExcel imports items from the first sheet of an Excel workbook.
func ImportExcel(path string, opts Options) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if opts.BaseDir == "" {
		opts.BaseDir = filepath.Dir(path)
	}
	return importFromRows(rows, "Row", nil, opts)
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string, opts Options) ImportResult {
	result := ImportResult{Warnings: initialWarnings}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")
		if mapping.Label == -1 && mapping.Source == -1 {
			result.Errors = append(result.Errors, "Required columns not found in header: Label or Source")
			return result
		}
	} else if len(rows[0]) >= 2 {
		// A non-numeric width column means an unrecognised header.
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][1]), 64); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	parser := rowParser{mapping: mapping, opts: opts.withDefaults()}
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		items, errMsg, warning := parser.parse(row, rowLabel, len(result.Items))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		result.Items = append(result.Items, items...)
	}

	return result
}

// ImportFile picks an importer from the file extension.
func ImportFile(path string, opts Options) ImportResult {
	opts = opts.withDefaults()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt", ".tsv":
		return ImportCSV(path, opts)
	case ".xlsx", ".xlsm", ".xls":
		return ImportExcel(path, opts)
	case ".dxf":
		return ImportDXF(path)
	case ".svg":
		return single(ImportSVG(path))
	default:
		if IsImageFile(path) {
			return single(ImportImage(path, opts.DPI))
		}
		return ImportResult{Errors: []string{fmt.Sprintf("Unsupported file type '%s'", ext)}}
	}
}

func single(it *model.Item, err error) ImportResult {
	if err != nil {
		return ImportResult{Errors: []string{err.Error()}}
	}
	return ImportResult{Items: []*model.Item{it}}
}
