package importer

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/piwi3910/PrintSheet/internal/model"
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// IsImageFile reports whether path has a raster image extension.
func IsImageFile(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// ImportImage builds an image item sized from the file's pixel dimensions
// printed at dpi. Only the header is decoded.
func ImportImage(path string, dpi float64) (*model.Item, error) {
	if dpi <= 0 {
		dpi = DefaultOptions().DPI
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("cannot read image %s: %w", filepath.Base(path), err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("image %s has no pixels", filepath.Base(path))
	}

	w := PixelsToMM(cfg.Width, dpi)
	h := PixelsToMM(cfg.Height, dpi)
	label := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	it := model.NewItem(model.KindImage, label, w, h)
	it.Source = path
	return it, nil
}

// PixelsToMM converts a pixel count at dpi to millimetres.
func PixelsToMM(px int, dpi float64) float64 {
	return float64(px) / dpi * 25.4
}
