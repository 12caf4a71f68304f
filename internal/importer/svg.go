package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/piwi3910/PrintSheet/internal/model"
	"github.com/srwiley/oksvg"
)

// svgUnitMM is one CSS pixel, the SVG user unit, in mm.
const svgUnitMM = 25.4 / 96

// ImportSVG builds a symbol item sized from the SVG view box.
func ImportSVG(path string) (*model.Item, error) {
	icon, err := oksvg.ReadIcon(path, oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("cannot read SVG %s: %w", filepath.Base(path), err)
	}

	vb := icon.ViewBox
	if vb.W <= 0 || vb.H <= 0 {
		return nil, fmt.Errorf("SVG %s has no view box size", filepath.Base(path))
	}

	w, h := vb.W*svgUnitMM, vb.H*svgUnitMM
	label := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	it := model.NewItem(model.KindSymbol, label, w, h)
	it.Source = path
	it.Outline = model.Outline{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
	return it, nil
}
