package export

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/PrintSheet/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	itemsSheet   = "Items"
	summarySheet = "Summary"
)

var itemHeaders = []interface{}{
	"ID", "Kind", "Label", "Source", "Width (mm)", "Height (mm)", "Scale", "Rotated",
	"Left (mm)", "Top (mm)", "Right (mm)", "Bottom (mm)", "Inside Safe Area",
}

// ExportReport writes an XLSX workbook with one row per item and a
// summary sheet of the sheet settings, counts per kind and coverage.
func ExportReport(path string, p model.Project) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), itemsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := writeItems(f, p, bold); err != nil {
		return err
	}
	if err := writeSummary(f, p, bold); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

func writeItems(f *excelize.File, p model.Project, headerStyle int) error {
	if err := f.SetSheetRow(itemsSheet, "A1", &itemHeaders); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(itemHeaders), 1)
	if err := f.SetCellStyle(itemsSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	safe := p.Sheet.SafeArea()
	for i, it := range p.Items {
		box := it.BoundingBox()
		fw, fh := it.Footprint()
		row := []interface{}{
			it.ID, it.Kind.String(), it.Label, it.Source,
			round2(fw), round2(fh), it.Scale, it.Rotated,
			round2(box.Left), round2(box.Top), round2(box.Right), round2(box.Bottom),
			safe.Contains(box),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(itemsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write item %s: %w", it.ID, err)
		}
	}

	if err := f.SetColWidth(itemsSheet, "A", "M", 14); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	return f.SetPanes(itemsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeSummary(f *excelize.File, p model.Project, labelStyle int) error {
	w, h := p.Sheet.Dimensions()
	rows := [][]interface{}{
		{"Project", p.Name},
		{"Preset", p.Sheet.Preset},
		{"Orientation", p.Sheet.Orientation.String()},
		{"Width (mm)", w},
		{"Height (mm)", h},
		{"Bleed (mm)", p.Sheet.Bleed},
		{"Padding (mm)", p.Sheet.Padding},
		{"Gutter (mm)", p.Sheet.Gutter},
		{"Items", len(p.Items)},
		{"Coverage (%)", round2(p.Coverage())},
	}

	counts := map[model.ItemKind]int{}
	for _, it := range p.Items {
		counts[it.Kind]++
	}
	kinds := make([]model.ItemKind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, k := range kinds {
		rows = append(rows, []interface{}{k.String(), counts[k]})
	}

	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
		if err := f.SetCellStyle(summarySheet, cell, cell, labelStyle); err != nil {
			return fmt.Errorf("failed to style summary: %w", err)
		}
	}
	return f.SetColWidth(summarySheet, "A", "B", 18)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
